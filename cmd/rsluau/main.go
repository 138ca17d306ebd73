package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"rsluau/lang"
	"rsluau/lsp"
	"rsluau/translator"
)

// defaultConfigName is picked up from the input file's directory when no
// -config flag is given.
const defaultConfigName = "rsluau.json"

var logger = log.New(os.Stderr, "rsluau: ", 0)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "translate":
		runTranslate(os.Args[2:])
	case "run":
		runRun(os.Args[2:])
	case "tokens":
		runTokens(os.Args[2:])
	case "lsp":
		runLSP(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		usage()
		os.Exit(1)
	}
}

// options collects what the subcommands accept. Config flags are pointers
// so that only flags actually given override the config file.
type options struct {
	inputs     []string
	outPath    string
	configPath string
	luau       *bool
	mainExport *bool
	roblox     *bool
	fold       *bool
}

func parseOptions(args []string) options {
	var opts options
	on, off := true, false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			usage()
			os.Exit(0)
		case arg == "-o" || arg == "-config":
			if i+1 >= len(args) {
				fatalf("%s flag requires a path", arg)
			}
			if arg == "-o" {
				opts.outPath = args[i+1]
			} else {
				opts.configPath = args[i+1]
			}
			i++
		case strings.HasPrefix(arg, "-o="):
			opts.outPath = strings.TrimPrefix(arg, "-o=")
		case strings.HasPrefix(arg, "-config="):
			opts.configPath = strings.TrimPrefix(arg, "-config=")
		case arg == "-luau-bindings":
			opts.luau = &on
		case arg == "-no-luau-bindings":
			opts.luau = &off
		case arg == "-main":
			opts.mainExport = &on
		case arg == "-roblox":
			opts.roblox = &on
		case arg == "-fold":
			opts.fold = &on
		case arg != "-" && strings.HasPrefix(arg, "-"):
			fatalf("unknown flag %s", arg)
		default:
			opts.inputs = append(opts.inputs, arg)
		}
	}
	return opts
}

// config layers the JSON config file and the command-line flags over
// translator.DefaultConfig.
func (o options) config(inPath string) (translator.Config, error) {
	cfg := translator.DefaultConfig()
	path := o.configPath
	if path == "" && inPath != "" && inPath != "-" {
		path = filepath.Join(filepath.Dir(inPath), defaultConfigName)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}
	if o.luau != nil {
		cfg.UseLuauBindings = *o.luau
	}
	if o.mainExport != nil {
		cfg.UseMainFuncExport = *o.mainExport
	}
	if o.roblox != nil {
		cfg.UseRobloxBindings = *o.roblox
	}
	if o.fold != nil {
		cfg.FoldConstants = *o.fold
	}
	return cfg, nil
}

func runTranslate(args []string) {
	opts := parseOptions(args)
	if len(opts.inputs) < 1 {
		fatalf("translate requires a .rs input file (or - for stdin)")
	}
	inPath := opts.inputs[0]
	cfg, err := opts.config(inPath)
	if err != nil {
		fatalf("%v", err)
	}

	outPath := opts.outPath
	if outPath == "" && inPath != "-" {
		outPath = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".luau"
	}
	code, err := compileFile(inPath, cfg)
	if err != nil {
		fatalf("failed to translate %s: %v", inPath, err)
	}
	if outPath == "" {
		fmt.Print(code)
		return
	}
	if err := writeOutput(outPath, code); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("wrote %s\n", outPath)
}

func runRun(args []string) {
	opts := parseOptions(args)
	if len(opts.inputs) < 1 {
		fatalf("run requires a .rs input file")
	}
	inPath := opts.inputs[0]
	cfg, err := opts.config(inPath)
	if err != nil {
		fatalf("%v", err)
	}
	cfg.UseMainFuncExport = true

	interpreter, err := exec.LookPath("luau")
	if err != nil {
		fatalf("run needs the luau interpreter on PATH: %v", err)
	}
	code, err := compileFile(inPath, cfg)
	if err != nil {
		fatalf("failed to translate %s: %v", inPath, err)
	}
	tmpDir, err := os.MkdirTemp("", "rsluau-run-*")
	if err != nil {
		fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)
	outPath := filepath.Join(tmpDir, "main.luau")
	if err := writeOutput(outPath, code); err != nil {
		fatalf("%v", err)
	}

	cmd := exec.Command(interpreter, outPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmpDir)
		os.Exit(1)
	}
}

func runTokens(args []string) {
	opts := parseOptions(args)
	if len(opts.inputs) < 1 {
		fatalf("tokens requires a .rs input file (or - for stdin)")
	}
	source, err := readSource(opts.inputs[0])
	if err != nil {
		fatalf("%v", err)
	}
	tokens, diags := lang.Tokenize(source)
	for _, tok := range tokens {
		fmt.Printf("%d:%d\t%s\t%q\n", tok.Pos.Line, tok.Pos.Column, tok.Type, tok.Literal)
	}
	reportDiagnostics(opts.inputs[0], diags)
}

func runLSP(args []string) {
	opts := parseOptions(args)
	cfg, err := opts.config("")
	if err != nil {
		fatalf("%v", err)
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, cfg)
	if err := server.Run(); err != nil {
		fatalf("lsp server error: %v", err)
	}
}

func compileFile(inPath string, cfg translator.Config) (string, error) {
	source, err := readSource(inPath)
	if err != nil {
		return "", err
	}
	res, err := translator.Compile(source, cfg)
	reportDiagnostics(inPath, res.Diagnostics)
	if err != nil {
		return "", err
	}
	return res.Luau, nil
}

func readSource(inPath string) (string, error) {
	var data []byte
	var err error
	if inPath == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(inPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}

func writeOutput(outPath, code string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(code), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func reportDiagnostics(inPath string, diags []lang.Diagnostic) {
	for _, d := range diags {
		logger.Printf("%s: warning: %s", inPath, d)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  rsluau translate <file.rs|-> [-o out.luau] [-config rsluau.json] [-luau-bindings|-no-luau-bindings] [-main] [-roblox] [-fold]")
	fmt.Println("  rsluau run <file.rs> [-config rsluau.json]")
	fmt.Println("  rsluau tokens <file.rs|->")
	fmt.Println("  rsluau lsp [-config rsluau.json] (Language Server)")
}

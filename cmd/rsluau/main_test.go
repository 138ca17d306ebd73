package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"rsluau/translator"
)

func TestParseOptions(t *testing.T) {
	opts := parseOptions([]string{"in.rs", "-o", "out.luau", "-config=cfg.json", "-main", "-no-luau-bindings"})
	if !reflect.DeepEqual(opts.inputs, []string{"in.rs"}) {
		t.Errorf("inputs: got %v", opts.inputs)
	}
	if opts.outPath != "out.luau" || opts.configPath != "cfg.json" {
		t.Errorf("paths: got %q, %q", opts.outPath, opts.configPath)
	}
	if opts.mainExport == nil || !*opts.mainExport {
		t.Error("-main not recorded")
	}
	if opts.luau == nil || *opts.luau {
		t.Error("-no-luau-bindings not recorded")
	}
	if opts.roblox != nil || opts.fold != nil {
		t.Error("flags that were not given must stay unset")
	}

	stdin := parseOptions([]string{"-", "-o=x.luau"})
	if !reflect.DeepEqual(stdin.inputs, []string{"-"}) || stdin.outPath != "x.luau" {
		t.Errorf("stdin options: %+v", stdin)
	}
}

func TestConfigLayering(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "main.rs")
	cfgFile := `{"useLuauBindings": false, "useMainFuncExport": true, "foldConstants": true}`
	if err := os.WriteFile(filepath.Join(dir, defaultConfigName), []byte(cfgFile), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := parseOptions([]string{in}).config(in)
	if err != nil {
		t.Fatal(err)
	}
	want := translator.Config{UseMainFuncExport: true, FoldConstants: true}
	if got != want {
		t.Errorf("config file beside input: got %+v, want %+v", got, want)
	}

	got, err = parseOptions([]string{in, "-luau-bindings", "-roblox"}).config(in)
	if err != nil {
		t.Fatal(err)
	}
	want = translator.Config{UseLuauBindings: true, UseMainFuncExport: true, FoldConstants: true, UseRobloxBindings: true}
	if got != want {
		t.Errorf("flags over config file: got %+v, want %+v", got, want)
	}

	got, err = parseOptions(nil).config(filepath.Join(t.TempDir(), "other.rs"))
	if err != nil {
		t.Fatal(err)
	}
	if got != translator.DefaultConfig() {
		t.Errorf("no config file: got %+v", got)
	}
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := parseOptions([]string{"-config", bad}).config(""); err == nil {
		t.Error("expected an error for malformed config")
	}
	if _, err := parseOptions([]string{"-config", filepath.Join(dir, "missing.json")}).config(""); err == nil {
		t.Error("expected an error for a missing explicit config")
	}
}

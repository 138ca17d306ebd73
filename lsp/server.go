package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rsluau/bindings"
	"rsluau/translator"
)

type rpcMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Result  interface{}      `json:"result,omitempty"`
	Error   *rpcError        `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type InitializeParams struct {
	RootURI string `json:"rootUri"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
}

type ServerCapabilities struct {
	TextDocumentSync       int                   `json:"textDocumentSync"`
	CompletionProvider     CompletionOptions     `json:"completionProvider"`
	ExecuteCommandProvider ExecuteCommandOptions `json:"executeCommandProvider"`
}

type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

type ExecuteCommandOptions struct {
	Commands []string `json:"commands"`
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type DidSaveTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Text         string                 `json:"text,omitempty"`
}

type CompletionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type ExecuteCommandParams struct {
	Command   string        `json:"command"`
	Arguments []interface{} `json:"arguments"`
}

// TranslateCommand is the workspace command that writes the .luau file
// next to a source document.
const TranslateCommand = "rsluau.translate"

// Server implements the subset of LSP that rsluau needs for .rs files:
// document sync, diagnostics, completion and the translate command.
type Server struct {
	reader    *bufio.Reader
	out       io.Writer
	workspace *Workspace
	config    translator.Config
	bindings  *bindings.Table
}

func NewServer(in io.Reader, out io.Writer, cfg translator.Config) *Server {
	return &Server{
		reader:    bufio.NewReader(in),
		out:       out,
		workspace: NewWorkspace(),
		config:    cfg,
		bindings:  bindings.Default(),
	}
}

// Run serves requests until the client sends exit or closes the stream.
func (s *Server) Run() error {
	for {
		msg, err := s.readMessage()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			log.Printf("dropping malformed message: %v", err)
			continue
		}
		if err != nil {
			return err
		}
		if msg.Method == "" {
			continue
		}
		switch msg.Method {
		case "initialize":
			s.handleInitialize(msg)
		case "initialized":
		case "shutdown":
			s.sendResponse(msg.ID, nil, nil)
		case "exit":
			return nil
		case "textDocument/didOpen":
			s.handleDidOpen(msg)
		case "textDocument/didChange":
			s.handleDidChange(msg)
		case "textDocument/didSave":
			s.handleDidSave(msg)
		case "textDocument/didClose":
			s.handleDidClose(msg)
		case "textDocument/completion":
			s.handleCompletion(msg)
		case "workspace/executeCommand":
			s.handleExecuteCommand(msg)
		default:
			s.sendResponse(msg.ID, nil, &rpcError{Code: -32601, Message: "method not found"})
		}
	}
}

func (s *Server) readMessage() (rpcMessage, error) {
	headers := map[string]string{}
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return rpcMessage{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if name, value, ok := strings.Cut(line, ":"); ok {
			headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}

	lengthStr, ok := headers["Content-Length"]
	if !ok {
		return rpcMessage{}, fmt.Errorf("missing Content-Length header")
	}
	length, err := strconv.Atoi(lengthStr)
	if err != nil {
		return rpcMessage{}, fmt.Errorf("invalid Content-Length %q: %w", lengthStr, err)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return rpcMessage{}, err
	}
	var msg rpcMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return rpcMessage{}, err
	}
	return msg, nil
}

func (s *Server) sendResponse(id *json.RawMessage, result interface{}, errObj *rpcError) {
	if id == nil {
		return
	}
	s.writeMessage(rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
		Error:   errObj,
	})
}

func (s *Server) sendNotification(method string, params interface{}) {
	s.writeMessage(rpcMessage{
		JSONRPC: "2.0",
		Method:  method,
		Params:  marshalRaw(params),
	})
}

func (s *Server) writeMessage(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to encode message: %v", err)
		return
	}
	if _, err := fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n%s", len(data), data); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (s *Server) handleInitialize(msg rpcMessage) {
	caps := ServerCapabilities{
		TextDocumentSync: 2, // incremental
		CompletionProvider: CompletionOptions{
			TriggerCharacters: []string{"!"},
		},
		ExecuteCommandProvider: ExecuteCommandOptions{
			Commands: []string{TranslateCommand},
		},
	}
	s.sendResponse(msg.ID, InitializeResult{Capabilities: caps}, nil)
}

func (s *Server) handleDidOpen(msg rpcMessage) {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		log.Printf("bad didOpen params: %v", err)
		return
	}
	s.workspace.Open(Document{
		URI:     params.TextDocument.URI,
		Text:    params.TextDocument.Text,
		Version: params.TextDocument.Version,
	})
	s.publishDiagnostics(params.TextDocument.URI, params.TextDocument.Text)
}

func (s *Server) handleDidChange(msg rpcMessage) {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		log.Printf("bad didChange params: %v", err)
		return
	}
	text := s.workspace.Update(params.TextDocument.URI, params.TextDocument.Version, params.ContentChanges)
	s.publishDiagnostics(params.TextDocument.URI, text)
}

func (s *Server) handleDidSave(msg rpcMessage) {
	var params DidSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		log.Printf("bad didSave params: %v", err)
		return
	}
	text := params.Text
	if text == "" {
		if doc, ok := s.workspace.Get(params.TextDocument.URI); ok {
			text = doc.Text
		}
	}
	s.publishDiagnostics(params.TextDocument.URI, text)
}

func (s *Server) handleDidClose(msg rpcMessage) {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		log.Printf("bad didClose params: %v", err)
		return
	}
	s.workspace.Close(params.TextDocument.URI)
	s.sendNotification("textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []Diagnostic{},
	})
}

func (s *Server) handleCompletion(msg rpcMessage) {
	var params CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &rpcError{Code: -32602, Message: "invalid completion params"})
		return
	}
	s.sendResponse(msg.ID, CompletionList{
		IsIncomplete: false,
		Items:        defaultCompletions(s.bindings),
	}, nil)
}

func (s *Server) handleExecuteCommand(msg rpcMessage) {
	var params ExecuteCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &rpcError{Code: -32602, Message: "invalid executeCommand params"})
		return
	}
	if params.Command != TranslateCommand {
		s.sendResponse(msg.ID, nil, &rpcError{Code: -32601, Message: "unsupported command"})
		return
	}
	if len(params.Arguments) == 0 {
		s.sendResponse(msg.ID, nil, &rpcError{Code: -32602, Message: "expected file URI argument"})
		return
	}
	uri, ok := params.Arguments[0].(string)
	if !ok {
		s.sendResponse(msg.ID, nil, &rpcError{Code: -32602, Message: "argument must be a URI string"})
		return
	}
	outPath, err := s.translateFile(uri)
	if err != nil {
		s.sendResponse(msg.ID, nil, &rpcError{Code: -32603, Message: err.Error()})
		return
	}
	s.sendResponse(msg.ID, map[string]string{"status": "ok", "output": outPath}, nil)
}

func (s *Server) publishDiagnostics(uri string, text string) {
	res, err := translator.Compile(text, s.config)
	s.sendNotification("textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnosticsFrom(text, res.Diagnostics, err),
	})
}

// translateFile compiles the open document (or the file on disk) and writes
// the result beside it with a .luau extension.
func (s *Server) translateFile(uri string) (string, error) {
	path := uriToPath(uri)
	if path == "" {
		return "", fmt.Errorf("could not resolve path for URI %s", uri)
	}
	var text string
	if doc, ok := s.workspace.Get(uri); ok {
		text = doc.Text
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		text = string(data)
	}

	res, err := translator.Compile(text, s.config)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".luau"
	if err := os.WriteFile(outPath, []byte(res.Luau), 0644); err != nil {
		return "", err
	}
	return outPath, nil
}

func uriToPath(uri string) string {
	rest, ok := strings.CutPrefix(uri, "file://")
	if !ok {
		return uri
	}
	if unescaped, err := url.PathUnescape(rest); err == nil {
		return unescaped
	}
	return rest
}

func marshalRaw(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

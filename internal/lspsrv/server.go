// Package lspsrv exposes internal/frontend's Compile entry point as a
// minimal language server: a "textDocument/didSave" to diagnostics
// loop for editor integration on ".tanto" kernel sources. Tanto kernel
// sources lower straight to C++ with no Go sibling to proxy gopls
// requests onto, so the surface here is deliberately narrow: build
// diagnostics on save, nothing more.
package lspsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/tenstorrent/ronin-sub003/internal/frontend"
)

// Logger is the minimal logging surface lspsrv needs, matching the
// structured-logging style of *log.Logger used elsewhere in tantoc's
// ambient stack.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Server implements the language server for Tanto kernel sources: it
// compiles each saved document and publishes the resulting diagnostics.
type Server struct {
	logger Logger

	connMu sync.RWMutex
	conn   jsonrpc2.Conn
	ctx    context.Context
}

// NewServer creates a new language server instance.
func NewServer(logger Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{logger: logger}
}

// SetConn stores the active client connection (thread-safe), used when
// publishing diagnostics outside the request/reply cycle.
func (s *Server) SetConn(conn jsonrpc2.Conn, ctx context.Context) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.conn = conn
	s.ctx = ctx
}

func (s *Server) getConn() (jsonrpc2.Conn, context.Context) {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.conn, s.ctx
}

// Handler returns a jsonrpc2 handler for this server.
func (s *Server) Handler() jsonrpc2.Handler {
	return jsonrpc2.ReplyHandler(s.handleRequest)
}

func (s *Server) handleRequest(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized", "shutdown":
		return reply(ctx, nil, nil)
	case "exit":
		return reply(ctx, nil, nil)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didSave":
		return s.handleDidSave(ctx, reply, req)
	case "textDocument/didChange", "textDocument/didClose":
		return reply(ctx, nil, nil)
	default:
		s.logger.Printf("lspsrv: unhandled method %s", req.Method())
		return reply(ctx, nil, fmt.Errorf("method not implemented: %s", req.Method()))
	}
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, fmt.Errorf("invalid initialize params: %w", err))
	}

	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindNone,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "tantoc-lsp",
			Version: "0.1.0",
		},
	}
	return reply(ctx, result, nil)
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	s.publishDiagnostics(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	if params.Text != "" {
		s.publishDiagnostics(ctx, params.TextDocument.URI, params.Text)
	}
	return reply(ctx, nil, nil)
}

// publishDiagnostics compiles source under the mode inferred from uri's
// filename and pushes the resulting errors (or clears them, on
// success) to the client.
func (s *Server) publishDiagnostics(ctx context.Context, uri protocol.DocumentURI, source string) {
	mode := modeForFilename(uri.Filename())
	_, errs, ok := frontend.Compile(mode, nil, nil, source)

	var diagnostics []protocol.Diagnostic
	if !ok {
		for _, e := range errs {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range: protocol.Range{
					Start: protocol.Position{Line: 0, Character: 0},
					End:   protocol.Position{Line: 0, Character: 0},
				},
				Severity: protocol.DiagnosticSeverityError,
				Source:   "tantoc",
				Message:  e,
			})
		}
	}

	conn, connCtx := s.getConn()
	if conn == nil {
		s.logger.Printf("lspsrv: no client connection, dropping %d diagnostics for %s", len(diagnostics), uri)
		return
	}
	if connCtx != nil {
		ctx = connCtx
	}
	params := protocol.PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics}
	if err := conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		s.logger.Printf("lspsrv: failed to publish diagnostics: %v", err)
	}
}

// modeForFilename infers the compile mode from a kernel source's file
// name suffix: "_read.tanto" and "_write.tanto" select the dataflow
// pipelines, everything else (including plain ".tanto") defaults to
// the compute pipeline, mirroring how tantoc's build command infers the
// mode from the same file-name suffixes (modeForPath in cmd/tantoc).
func modeForFilename(name string) frontend.Mode {
	switch {
	case strings.HasSuffix(name, "_read.tanto"):
		return frontend.ModeRead
	case strings.HasSuffix(name, "_write.tanto"):
		return frontend.ModeWrite
	default:
		return frontend.ModeCompute
	}
}

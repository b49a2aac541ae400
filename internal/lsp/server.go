package lsp

import (
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
)

const Name = "fave-lsp"

// Server publishes compile diagnostics for open source documents.
type Server struct {
	store   *Store
	log     commonlog.Logger
	version string

	handler protocol.Handler
}

func NewServer(version string) *Server {
	s := &Server{
		store:   NewStore(),
		log:     commonlog.GetLogger("fave.lsp"),
		version: version,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,
	}
	return s
}

func (s *Server) Handler() *protocol.Handler { return &s.handler }

func (s *Server) Store() *Store { return s.store }

// Run serves on stdio until the client disconnects.
func (s *Server) Run(debug bool) error {
	return glspserver.NewServer(&s.handler, Name, debug).RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Infof("initializing, root %q", workspaceRoot(params))

	capabilities := s.handler.CreateServerCapabilities()

	full := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &full,
		Save:      protocol.SaveOptions{IncludeText: &protocol.False},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &s.version,
		},
	}, nil
}

// workspaceRoot prefers rootUri over the deprecated rootPath.
func workspaceRoot(params *protocol.InitializeParams) string {
	if params.RootURI != nil {
		return UriToPath(*params.RootURI)
	}
	if params.RootPath != nil {
		return *params.RootPath
	}
	return ""
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// --- Document synchronization ---

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.store.Set(uri, params.TextDocument.Text, params.TextDocument.Version)
	s.publishDiagnostics(ctx, uri)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if len(params.ContentChanges) == 0 {
		return nil
	}

	// With full sync the last change carries the whole text.
	text, ok := extractFullText(params.ContentChanges[len(params.ContentChanges)-1])
	if !ok {
		return nil
	}

	s.store.Set(uri, text, params.TextDocument.Version)
	s.publishDiagnostics(ctx, uri)
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if params.Text != nil {
		version := int32(0)
		if doc, ok := s.store.Get(uri); ok {
			version = doc.Version
		}
		s.store.Set(uri, *params.Text, version)
	}
	s.publishDiagnostics(ctx, uri)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	s.store.Delete(uri)
	notifyDiagnostics(ctx, uri, []protocol.Diagnostic{})
	return nil
}

func (s *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	doc, ok := s.store.Get(uri)
	if !ok || !IsSource(uri) {
		notifyDiagnostics(ctx, uri, []protocol.Diagnostic{})
		return
	}

	ds := Analyze(doc.Text)
	s.store.SetDiagnostics(uri, ds)
	s.log.Debugf("%s: %d diagnostics", uri, len(ds))

	notifyDiagnostics(ctx, uri, ToLspDiagnostics(doc.Text, ds))
}

func notifyDiagnostics(ctx *glsp.Context, uri string, ds []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: ds,
	})
}

func extractFullText(change any) (string, bool) {
	switch typed := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return typed.Text, true
	case protocol.TextDocumentContentChangeEvent:
		return typed.Text, true
	default:
		return "", false
	}
}

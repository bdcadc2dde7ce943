// Package web serves the parser over a WebSocket JSON-RPC endpoint.
//
// Each text message is one request:
//
//	{"id": 1, "method": "parse", "params": {"source": "#pragma acc loop", "dialect": "openacc-2.0"}}
//
// Methods are parse, tokens, print and dialects.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gopkg.in/yaml.v3"

	"github.com/odvcencio/accparse/ast"
	"github.com/odvcencio/accparse/grammars"
	"github.com/odvcencio/accparse/parser"
)

//go:embed static/*
var staticFS embed.FS

// JSON-RPC error codes.
const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeParseFailed    = -32000
)

// Server is the HTTP + WebSocket front end.
type Server struct {
	logger       *slog.Logger
	dialect      string
	readLimit    int64
	writeTimeout time.Duration
	upgrader     websocket.Upgrader

	mu      sync.Mutex
	parsers map[string]*parser.Parser
	clients []*wsClient
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDialect sets the dialect used by requests that name none.
func WithDialect(name string) Option {
	return func(s *Server) { s.dialect = name }
}

// WithReadLimit caps the size of one request message.
func WithReadLimit(n int64) Option {
	return func(s *Server) { s.readLimit = n }
}

// WithWriteTimeout bounds each response write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) { s.writeTimeout = d }
}

type wsClient struct {
	conn    *websocket.Conn
	session string
	mu      sync.Mutex
}

type rpcRequest struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     any       `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// errorData locates a parse failure for the client.
type errorData struct {
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Expected []string `json:"expected,omitempty"`
}

type sourceParams struct {
	Source  string `json:"source"`
	Dialect string `json:"dialect,omitempty"`
	Format  string `json:"format,omitempty"`
}

// NewServer creates a server. Parsers are built per dialect on first use.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		dialect:      grammars.Default,
		readLimit:    1 << 20,
		writeTimeout: 10 * time.Second,
		parsers:      map[string]*parser.Parser{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/ws" {
		s.handleWebSocket(w, r)
		return
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		http.Error(w, "static files unavailable", http.StatusInternalServerError)
		return
	}
	http.FileServer(http.FS(sub)).ServeHTTP(w, r)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err, "remote", r.RemoteAddr)
		return
	}
	if s.readLimit > 0 {
		conn.SetReadLimit(s.readLimit)
	}
	client := &wsClient{conn: conn, session: uuid.NewString()}
	log := s.logger.With("session", client.session)
	log.Info("client connected", "remote", r.RemoteAddr)

	s.mu.Lock()
	s.clients = append(s.clients, client)
	s.mu.Unlock()

	defer func() {
		conn.Close()
		s.mu.Lock()
		for i, c := range s.clients {
			if c == client {
				s.clients = append(s.clients[:i], s.clients[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		log.Info("client disconnected")
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("read", "err", err)
			}
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Debug("malformed request", "err", err)
			continue
		}
		start := time.Now()
		resp := s.handleRPC(req)
		if resp.Error != nil {
			log.Debug("rpc failed", "method", req.Method, "code", resp.Error.Code, "err", resp.Error.Message)
		} else {
			log.Debug("rpc", "method", req.Method, "elapsed", time.Since(start))
		}
		if err := client.write(resp, s.writeTimeout); err != nil {
			log.Warn("write", "err", err)
			return
		}
	}
}

func (c *wsClient) write(v any, timeout time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) handleRPC(req rpcRequest) rpcResponse {
	switch req.Method {
	case "parse":
		return s.rpcParse(req)
	case "tokens":
		return s.rpcTokens(req)
	case "print":
		return s.rpcPrint(req)
	case "dialects":
		return s.rpcDialects(req)
	default:
		return rpcResponse{
			ID:    req.ID,
			Error: &rpcError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", req.Method)},
		}
	}
}

// parserFor returns the shared parser of a dialect.
func (s *Server) parserFor(dialect string) (*parser.Parser, error) {
	if dialect == "" {
		dialect = s.dialect
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.parsers[dialect]; ok {
		return p, nil
	}
	p, err := parser.New(parser.WithDialect(dialect), parser.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.parsers[dialect] = p
	return p, nil
}

func invalidParams(req rpcRequest, err error) rpcResponse {
	return rpcResponse{ID: req.ID, Error: &rpcError{Code: CodeInvalidParams, Message: err.Error()}}
}

func (s *Server) decodeSource(req rpcRequest) (sourceParams, *parser.Parser, *rpcResponse) {
	var p sourceParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		resp := invalidParams(req, err)
		return p, nil, &resp
	}
	pr, err := s.parserFor(p.Dialect)
	if err != nil {
		resp := invalidParams(req, err)
		return p, nil, &resp
	}
	return p, pr, nil
}

// parseFailure maps a parser error onto the RPC error object.
func parseFailure(req rpcRequest, err error) rpcResponse {
	e := &rpcError{Code: CodeParseFailed, Message: err.Error()}
	var synErr *parser.SyntaxError
	var lexErr *parser.LexicalError
	switch {
	case errors.As(err, &synErr):
		d := errorData{Line: synErr.Pos.Line, Column: synErr.Pos.Column}
		for _, k := range synErr.Expected {
			d.Expected = append(d.Expected, k.String())
		}
		e.Data = d
	case errors.As(err, &lexErr):
		e.Data = errorData{Line: lexErr.Pos.Line, Column: lexErr.Pos.Column}
	}
	return rpcResponse{ID: req.ID, Error: e}
}

func (s *Server) rpcParse(req rpcRequest) rpcResponse {
	p, pr, bad := s.decodeSource(req)
	if bad != nil {
		return *bad
	}
	root, err := pr.ParseString(p.Source)
	if err != nil {
		return parseFailure(req, err)
	}
	outline := ast.NewOutline(root)
	result := map[string]any{
		"dialect": pr.Dialect(),
		"kind":    ast.KindOf(root).String(),
		"errors":  len(ast.FindAll(root, ast.IsError)),
	}
	switch p.Format {
	case "", "json":
		result["outline"] = outline
	case "yaml":
		data, err := yaml.Marshal(outline)
		if err != nil {
			return rpcResponse{ID: req.ID, Error: &rpcError{Code: CodeParseFailed, Message: err.Error()}}
		}
		result["outline"] = string(data)
	default:
		return invalidParams(req, fmt.Errorf("unknown format %q", p.Format))
	}
	return rpcResponse{ID: req.ID, Result: result}
}

type tokenResult struct {
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (s *Server) rpcTokens(req rpcRequest) rpcResponse {
	p, pr, bad := s.decodeSource(req)
	if bad != nil {
		return *bad
	}
	toks, err := pr.Tokenize(strings.NewReader(p.Source))
	if err != nil {
		return parseFailure(req, err)
	}
	out := make([]tokenResult, 0, len(toks))
	for _, t := range toks {
		out = append(out, tokenResult{Kind: t.Kind.String(), Text: t.Text, Line: t.Pos.Line, Column: t.Pos.Column})
	}
	return rpcResponse{ID: req.ID, Result: map[string]any{"tokens": out}}
}

func (s *Server) rpcPrint(req rpcRequest) rpcResponse {
	p, pr, bad := s.decodeSource(req)
	if bad != nil {
		return *bad
	}
	root, err := pr.ParseString(p.Source)
	if err != nil {
		return parseFailure(req, err)
	}
	text := ast.String(root)
	return rpcResponse{ID: req.ID, Result: map[string]any{"text": text, "exact": text == p.Source}}
}

type dialectResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

func (s *Server) rpcDialects(req rpcRequest) rpcResponse {
	var out []dialectResult
	for _, e := range grammars.All() {
		out = append(out, dialectResult{Name: e.Name, Description: e.Description, Default: e.Name == s.dialect})
	}
	return rpcResponse{ID: req.ID, Result: map[string]any{"dialects": out}}
}

// Clients returns the number of open connections.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close tells every client the server is going away and closes the
// connections.
func (s *Server) Close() {
	s.mu.Lock()
	clients := append([]*wsClient(nil), s.clients...)
	s.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
	}
}

package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	pqltrace "github.com/macropower/pql/pkg/trace"

	"github.com/macropower/pql/pkg/lint"
	"github.com/macropower/pql/pkg/session"
	"github.com/macropower/pql/pkg/version"
)

// QueryParams defines parameters for the query tool.
type QueryParams struct {
	Query  string `json:"query"`
	Filter string `json:"filter,omitempty"`
	Trace  bool   `json:"trace,omitempty"`
}

// QueryResult contains the outcome of a query.
type QueryResult struct {
	Query       string   `json:"query"`
	Message     string   `json:"message"`
	Trace       []string `json:"trace,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Value       bool     `json:"value"`
}

// ListClausesResult contains the knowledge base in storage order.
type ListClausesResult struct {
	Message string   `json:"message"`
	Facts   []string `json:"facts"`
	Rules   []string `json:"rules"`
}

// ConsultParams defines parameters for the consult tool.
type ConsultParams struct {
	Clauses string `json:"clauses"`
	Append  bool   `json:"append,omitempty"`
}

// ConsultResult summarizes the knowledge base after a consult.
type ConsultResult struct {
	Message string       `json:"message"`
	Issues  []lint.Issue `json:"issues,omitempty"`
	Added   int          `json:"added"`
	Facts   int          `json:"facts"`
	Rules   int          `json:"rules"`
}

// ClearResult confirms that the knowledge base was emptied.
type ClearResult struct {
	Message string `json:"message"`
}

// Option configures a [Server].
type Option func(s *Server)

// WithAddress serves streamable HTTP on addr instead of stdio.
func WithAddress(addr string) Option {
	return func(s *Server) {
		s.address = addr
	}
}

// WithGatherer serves the metrics in g at /metrics in HTTP mode.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithTracer sets the tracer used for tool call spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = t
	}
}

// WithRPCLog writes every JSON-RPC message to w in stdio mode.
func WithRPCLog(w io.Writer) Option {
	return func(s *Server) {
		s.rpcLog = w
	}
}

// Server implements the MCP server for pql.
type Server struct {
	sess     *session.Session
	server   *mcp.Server
	gatherer prometheus.Gatherer
	tracer   trace.Tracer
	rpcLog   io.Writer
	address  string
}

// NewServer creates an MCP server backed by sess.
func NewServer(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		sess:     sess,
		tracer:   otel.Tracer("mcp"),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}

	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s.server = mcp.NewServer(impl, &mcp.ServerOptions{
		Instructions: instructions,
	})

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Evaluate a query against the knowledge base and return true or false. Queries match clause text exactly.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: `The query, e.g. "ancestor(tom, ann)". A leading "?-" and trailing "." are ignored.`,
				},
				"trace": {
					Type:        "boolean",
					Description: "Include the evaluation trace in the result.",
				},
				"filter": {
					Type:        "string",
					Description: `CEL expression selecting trace events, e.g. kind in ["fail", "backtrack"]. Variables: kind, message, depth.`,
				},
			},
			Required: []string{"query"},
		},
	}, WithTracing(s.tracer, s.handleQuery))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_clauses",
		Description: "List the facts and rules in the knowledge base exactly as stored.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, WithTracing(s.tracer, s.handleListClauses))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "consult",
		Description: "Load clauses into the knowledge base, one clause per line. Replaces the knowledge base unless append is set. Returns advisory lint issues.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"clauses": {
					Type:        "string",
					Description: "Clauses separated by newlines, e.g. \"parent(tom, bob).\\nancestor(X, Y) :- parent(X, Y).\"",
				},
				"append": {
					Type:        "boolean",
					Description: "Keep the existing clauses and add these after them.",
				},
			},
			Required: []string{"clauses"},
		},
	}, WithTracing(s.tracer, s.handleConsult))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear",
		Description: "Remove every clause from the knowledge base.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, WithTracing(s.tracer, s.handleClear))
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	params QueryParams,
) (*mcp.CallToolResult, QueryResult, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, QueryResult{}, errors.New("query must not be empty")
	}

	filter, err := pqltrace.NewFilter(params.Filter)
	if err != nil {
		return nil, QueryResult{}, err
	}

	res := s.sess.Query(ctx, params.Query)

	result := QueryResult{
		Query:       res.Query,
		Value:       res.Value,
		Suggestions: res.Suggestions,
		Message:     fmt.Sprintf("%s is %t.", res.Query, res.Value),
	}

	if len(res.Suggestions) > 0 {
		result.Message += " Similar clauses: " + strings.Join(res.Suggestions, "; ")
	}

	if params.Trace {
		events := filter.Apply(res.Events)

		lines := make([]string, 0, len(events))
		for _, e := range events {
			lines = append(lines, e.Indented())
		}

		result.Trace = truncateLines(lines, maxTraceLines)
	}

	return nil, result, nil
}

func (s *Server) handleListClauses(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListClausesResult, error) {
	k := s.sess.KnowledgeBase()

	result := ListClausesResult{
		Facts: append([]string{}, k.Facts()...),
		Rules: append([]string{}, k.Rules()...),
	}

	if k.Empty() {
		result.Message = "The knowledge base is empty."
	} else {
		result.Message = fmt.Sprintf("Found %s.",
			joinNonEmpty(countOf(len(result.Facts), "fact"), countOf(len(result.Rules), "rule")))
	}

	return nil, result, nil
}

func (s *Server) handleConsult(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	params ConsultParams,
) (*mcp.CallToolResult, ConsultResult, error) {
	var added int
	if params.Append {
		added = s.sess.Add(params.Clauses)
	} else {
		added = s.sess.Consult(params.Clauses)
	}

	k := s.sess.KnowledgeBase()

	result := ConsultResult{
		Added:  added,
		Facts:  len(k.Facts()),
		Rules:  len(k.Rules()),
		Issues: lint.Check(k),
	}

	result.Message = fmt.Sprintf("Added %s. The knowledge base has %s and %s.",
		plural(result.Added, "clause"), plural(result.Facts, "fact"), plural(result.Rules, "rule"))

	if len(result.Issues) > 0 {
		result.Message += fmt.Sprintf(" Found %s; clauses are accepted as written.", plural(len(result.Issues), "lint issue"))
	}

	slog.DebugContext(ctx, "consulted clauses",
		slog.Int("added", result.Added),
		slog.Int("issues", len(result.Issues)),
	)

	return nil, result, nil
}

func (s *Server) handleClear(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ClearResult, error) {
	s.sess.Clear()

	return nil, ClearResult{Message: "Knowledge base cleared."}, nil
}

// Server returns the underlying MCP server.
func (s *Server) Server() *mcp.Server {
	return s.server
}

// Handler returns the HTTP handler serving MCP at / and metrics at /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil))

	return mux
}

// Serve runs the server until ctx is done or the transport closes.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),

		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("MCP server failed: %w", err)
		}

		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		return nil
	}
}

func (s *Server) serveStdio(ctx context.Context) error {
	var t mcp.Transport = &mcp.StdioTransport{}
	if s.rpcLog != nil {
		t = &mcp.LoggingTransport{Transport: t, Writer: s.rpcLog}
	}

	err := s.server.Run(ctx, t)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

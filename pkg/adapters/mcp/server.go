package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/pushdown"
	"github.com/aretw0/pushdown/internal/logging"
	"github.com/aretw0/pushdown/internal/presentation/graph"
	"github.com/aretw0/pushdown/pkg/adapters/file"
	"github.com/aretw0/pushdown/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Automata is the catalogue the tools read (registry.Registry).
type Automata interface {
	Names(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (*pushdown.Automaton, error)
}

// ListResponse is the result of list_automata.
type ListResponse struct {
	Automata []AutomatonInfo `json:"automata" jsonschema_description:"Available automata"`
}

// AutomatonInfo summarises one automaton.
type AutomatonInfo struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	AcceptanceMode string `json:"acceptance_mode"`
	Transitions    int    `json:"transitions"`
}

// ValidateResponse is the result of validate_automaton.
type ValidateResponse struct {
	Valid  bool     `json:"valid" jsonschema_description:"Whether the definition builds a deterministic automaton"`
	Errors []string `json:"errors,omitempty" jsonschema_description:"Every problem found, one per entry"`
	// Unreachable lists states no transition leads to. It is a warning only.
	Unreachable []string `json:"unreachable,omitempty"`
}

// AcceptsResponse is the result of accepts.
type AcceptsResponse struct {
	Accepted bool   `json:"accepted" jsonschema_description:"Whether the input is accepted"`
	Reason   string `json:"reason,omitempty" jsonschema_description:"Why the input was rejected"`
}

// TraceResponse is the result of run_trace.
type TraceResponse struct {
	Accepted       bool                   `json:"accepted"`
	Reason         string                 `json:"reason,omitempty"`
	Configurations []domain.Configuration `json:"configurations" jsonschema_description:"Every configuration of the run, initial first"`
}

// RunArgs are the arguments of accepts and run_trace.
type RunArgs struct {
	Automaton string `json:"automaton"`
	Input     string `json:"input"`
}

// ValidateArgs are the arguments of validate_automaton.
type ValidateArgs struct {
	Definition string `json:"definition"`
	Format     string `json:"format,omitempty"`
}

// Server exposes a catalogue of automata as an MCP Server.
type Server struct {
	automata  Automata
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(automata Automata, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		automata: automata,
		logger:   logger,
		mcpServer: server.NewMCPServer("pushdown-mcp", strings.TrimSpace(pushdown.Version),
			server.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: list_automata
	s.mcpServer.AddTool(mcp.NewTool("list_automata",
		mcp.WithDescription("List the available pushdown automata."),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	// TOOL: validate_automaton
	s.mcpServer.AddTool(mcp.NewTool("validate_automaton",
		mcp.WithDescription("Check a YAML or JSON automaton definition for unknown symbols, states and nondeterminism."),
		mcp.WithString("definition", mcp.Required(), mcp.Description("The definition document")),
		mcp.WithString("format", mcp.Description("yaml (default) or json"), mcp.Enum("yaml", "json")),
		mcp.WithOutputSchema[ValidateResponse](),
	), mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: accepts
	s.mcpServer.AddTool(mcp.NewTool("accepts",
		mcp.WithDescription("Decide whether an automaton accepts an input string."),
		mcp.WithString("automaton", mcp.Required(), mcp.Description("Automaton name")),
		mcp.WithString("input", mcp.Description("Input string; one symbol per character")),
		mcp.WithOutputSchema[AcceptsResponse](),
	), mcp.NewStructuredToolHandler(s.handleAccepts))

	// TOOL: run_trace
	s.mcpServer.AddTool(mcp.NewTool("run_trace",
		mcp.WithDescription("Run an input and return every configuration the automaton passes through."),
		mcp.WithString("automaton", mcp.Required(), mcp.Description("Automaton name")),
		mcp.WithString("input", mcp.Description("Input string; one symbol per character")),
		mcp.WithOutputSchema[TraceResponse](),
	), mcp.NewStructuredToolHandler(s.handleTrace))

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the Mermaid state diagram of an automaton."),
		mcp.WithString("automaton", mcp.Required(), mcp.Description("Automaton name")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := request.GetString("automaton", "")
		a, err := s.automata.Get(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get_graph failed: %v", err)), nil
		}
		return mcp.NewToolResultText(graph.GenerateMermaid(a.Definition(), nil)), nil
	})
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args struct{}) (ListResponse, error) {
	names, err := s.automata.Names(ctx)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list failed: %w", err)
	}
	resp := ListResponse{Automata: []AutomatonInfo{}}
	for _, name := range names {
		a, err := s.automata.Get(ctx, name)
		if err != nil {
			// A broken file must not hide the rest of the catalogue.
			s.logger.Warn("MCP list: skipping automaton", "automaton", name, "err", err)
			continue
		}
		def := a.Definition()
		resp.Automata = append(resp.Automata, AutomatonInfo{
			Name:           name,
			Description:    def.Description,
			AcceptanceMode: string(a.AcceptanceMode()),
			Transitions:    len(a.Transitions()),
		})
	}
	return resp, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ValidateArgs) (ValidateResponse, error) {
	format := file.FormatYAML
	if strings.EqualFold(args.Format, string(file.FormatJSON)) {
		format = file.FormatJSON
	}

	def, err := file.Decode([]byte(args.Definition), format)
	if err != nil {
		return ValidateResponse{Errors: []string{err.Error()}}, nil
	}
	a, err := pushdown.New(def)
	if err != nil {
		return ValidateResponse{Errors: splitErrors(err)}, nil
	}

	resp := ValidateResponse{Valid: true}
	for _, st := range a.Unreachable() {
		resp.Unreachable = append(resp.Unreachable, string(st))
	}
	return resp, nil
}

func (s *Server) handleAccepts(ctx context.Context, request mcp.CallToolRequest, args RunArgs) (AcceptsResponse, error) {
	res, err := s.run(ctx, args)
	if err != nil {
		return AcceptsResponse{}, err
	}
	return AcceptsResponse{Accepted: res.Accepted, Reason: res.Reason()}, nil
}

func (s *Server) handleTrace(ctx context.Context, request mcp.CallToolRequest, args RunArgs) (TraceResponse, error) {
	res, err := s.run(ctx, args)
	if err != nil {
		return TraceResponse{}, err
	}
	return TraceResponse{
		Accepted:       res.Accepted,
		Reason:         res.Reason(),
		Configurations: res.Configurations,
	}, nil
}

// run fails only when the input or automaton is refused, or the run could not finish;
// a rejection is a normal result.
func (s *Server) run(ctx context.Context, args RunArgs) (pushdown.Result, error) {
	if err := pushdown.CheckInput(args.Input); err != nil {
		return pushdown.Result{}, err
	}
	a, err := s.automata.Get(ctx, args.Automaton)
	if err != nil {
		return pushdown.Result{}, err
	}
	res := a.Run(ctx, args.Input)
	if res.Err != nil && !errors.Is(res.Err, domain.ErrRejected) {
		s.logger.Warn("MCP run failed", "automaton", args.Automaton, "err", res.Err)
		return pushdown.Result{}, fmt.Errorf("run failed: %w", res.Err)
	}
	return res, nil
}

// splitErrors flattens joined errors into one message each.
func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	return []string{err.Error()}
}

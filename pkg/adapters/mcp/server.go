package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/aretw0/concierge/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// SessionsURI lists every known thread.
const SessionsURI = "concierge://sessions"

// SendMessageArgs are the arguments of the send_message tool.
type SendMessageArgs struct {
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
	Language string `json:"language,omitempty"`
	Currency string `json:"currency,omitempty"`
	Token    string `json:"token,omitempty"`
}

// GetSessionArgs are the arguments of the get_session tool.
type GetSessionArgs struct {
	ThreadID string `json:"thread_id"`
}

// TurnResponse is the structured result of send_message.
type TurnResponse struct {
	ThreadID    string               `json:"thread_id" jsonschema_description:"The conversation thread"`
	ActiveAgent domain.AgentID       `json:"active_agent" jsonschema_description:"The agent now holding the conversation"`
	Status      domain.SessionStatus `json:"status" jsonschema_description:"idle or awaiting_approval"`
	Events      []domain.Event       `json:"events" jsonschema_description:"Replies and approval prompts to show the user"`
}

// Server exposes a DialogEngine as an MCP Server.
type Server struct {
	engine    ports.DialogEngine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.DialogEngine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("concierge-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send one user message to a travel booking conversation. "+
			"When the result status is awaiting_approval, the next message must answer the approval prompt."),
		mcp.WithString("thread_id", mcp.Required(), mcp.Description("Conversation thread; created on first use")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user's message")),
		mcp.WithString("language", mcp.Description("Preferred language, e.g. es or en")),
		mcp.WithString("currency", mcp.Description("Preferred currency, CLP or USD")),
		mcp.WithString("token", mcp.Description("Travel API credential for bookings")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendMessage))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get the stored state of a conversation thread."),
		mcp.WithString("thread_id", mcp.Required(), mcp.Description("Conversation thread")),
	), s.handleGetSession)
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest, args SendMessageArgs) (TurnResponse, error) {
	if args.ThreadID == "" {
		return TurnResponse{}, errors.New("thread_id is required")
	}
	clean, err := runner.SanitizeInput(args.Message)
	if err != nil {
		s.logger.Warn("MCP send_message: input rejected", "err", err, "size", len(args.Message))
		return TurnResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	sess, events, err := s.engine.Send(ctx, args.ThreadID, domain.Inbound{
		Message:    clean,
		Language:   args.Language,
		Currency:   args.Currency,
		Credential: args.Token,
	})
	if err != nil {
		s.logger.Error("MCP send_message failed", "thread_id", args.ThreadID, "err", err)
		return TurnResponse{}, fmt.Errorf("send failed: %w", err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return TurnResponse{
		ThreadID:    sess.ThreadID,
		ActiveAgent: sess.ActiveAgent,
		Status:      sess.Status,
		Events:      events,
	}, nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threadID := request.GetString("thread_id", "")
	sess, err := s.engine.Session(ctx, threadID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get_session failed: %v", err)), nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Conversation threads",
		mcp.WithMIMEType("application/json"),
	), s.readSessions)
}

func (s *Server) readSessions(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	threads, err := s.engine.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if threads == nil {
		threads = []string{}
	}
	data, _ := json.Marshal(threads)
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SessionsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

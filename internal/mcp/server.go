// Package mcp implements the Model Context Protocol server for snowtutor.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
	"github.com/einfachManu/marine-snow-tutor/internal/pipeline"
	"github.com/einfachManu/marine-snow-tutor/internal/session"
)

// Server wraps an MCPServer with the tutoring pipeline. It keeps its own
// session registry so that MCP clients can ask follow-up questions.
type Server struct {
	mcp          *mcpserver.MCPServer
	engine       *pipeline.Engine
	registry     *session.Registry
	kb           *knowledge.Base
	logger       *slog.Logger
	defaultLevel models.StyleLevel
}

// NewServer creates a new MCP server. If eng is nil, tool calls return an
// error response instead of panicking.
func NewServer(eng *pipeline.Engine, kb *knowledge.Base, defaultLevel models.StyleLevel, logger *slog.Logger) *Server {
	s := &Server{
		engine:       eng,
		registry:     session.NewRegistry(),
		kb:           kb,
		logger:       logger,
		defaultLevel: defaultLevel,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"snowtutor",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildAskTool(), s.handleAsk)
	mcpSrv.AddTool(buildListTopicsTool(), s.handleListTopics)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleAsk is the exported handler for the "ask" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleAsk(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleAsk(ctx, req)
}

// HandleListTopics is the exported handler for the "list_topics" tool.
func (s *Server) HandleListTopics(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleListTopics(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildAskTool() mcpgo.Tool {
	return mcpgo.NewTool("ask",
		mcpgo.WithDescription("Ask the marine snow tutor a question. Answers are grounded in curated course material; off-topic questions are refused."),
		mcpgo.WithString("question",
			mcpgo.Required(),
			mcpgo.Description("The question to ask, in German or English"),
		),
		mcpgo.WithNumber("level",
			mcpgo.Description("Style level: 0 neutral, 1 friendly, 2 personal (default: configured level)"),
		),
		mcpgo.WithString("session_id",
			mcpgo.Description("Session ID from a previous call, for follow-up questions"),
		),
	)
}

func buildListTopicsTool() mcpgo.Tool {
	return mcpgo.NewTool("list_topics",
		mcpgo.WithDescription("List the topic areas the tutor can answer questions about."),
	)
}

// --- tool handlers ---

// askResult is the JSON payload returned by the "ask" tool.
type askResult struct {
	Reply     string        `json:"reply"`
	Intent    models.Intent `json:"intent"`
	Topic     models.Topic  `json:"topic,omitempty"`
	SessionID string        `json:"session_id"`
}

// handleAsk runs one tutoring turn. A missing or unknown session_id starts
// a fresh session; the ID is echoed back for follow-ups.
func (s *Server) handleAsk(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.engine == nil {
		return mcpgo.NewToolResultError("pipeline is unavailable"), nil
	}

	question := req.GetString("question", "")
	if strings.TrimSpace(question) == "" {
		return mcpgo.NewToolResultError("question is required and must not be empty"), nil
	}

	level := models.StyleLevel(req.GetInt("level", int(s.defaultLevel)))
	if !level.IsValid() {
		return mcpgo.NewToolResultErrorf("invalid level %d: must be 0, 1 or 2", int(level)), nil
	}

	var sess *session.Session
	if id := req.GetString("session_id", ""); id != "" {
		existing, err := s.registry.Get(id)
		if err != nil {
			return mcpgo.NewToolResultErrorf("unknown session_id %q", id), nil
		}
		sess = existing
	} else {
		sess = s.registry.Create(level)
	}

	res, err := s.engine.HandleTurn(ctx, sess, question)
	if err != nil {
		return mcpgo.NewToolResultErrorf("handling question failed: %s", err.Error()), nil
	}

	return toolResultJSON(askResult{
		Reply:     res.Reply,
		Intent:    res.Intent,
		Topic:     res.Topic,
		SessionID: sess.ID,
	})
}

// listTopicsResult is the JSON payload returned by the "list_topics" tool.
type listTopicsResult struct {
	Topics []string `json:"topics"`
}

func (s *Server) handleListTopics(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return toolResultJSON(listTopicsResult{Topics: s.kb.ScopeTopics()})
}

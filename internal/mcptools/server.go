// Package mcptools exposes the vote pipeline as Model Context Protocol
// tools, so agents can resolve portal links and read vote tables.
package mcptools

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tjfontaine/rollcall-gateway/internal/frontdoor"
)

const (
	ToolResolveVote = "resolve_vote"
	ToolListVotes   = "list_votes"
)

// Server wraps a pipeline factory as an MCP server.
type Server struct {
	newPipeline frontdoor.PipelineFactory
	logger      *slog.Logger
	mcpServer   *server.MCPServer
}

// NewServer registers both tools.
func NewServer(factory frontdoor.PipelineFactory, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		newPipeline: factory,
		logger:      logger,
		mcpServer:   server.NewMCPServer("rollcall", version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s
}

// ServeStdio serves on stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(ToolResolveVote,
		mcp.WithDescription("Resolve a parliamentary portal vote link to a single vote id. Returns {idVotacao, titulo}, or {needChoice, options} when the link is ambiguous; call again with vote_id set to one of the option ids."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Portal URL carrying the reuniao (and optionally itemVotacao) query parameters")),
		mcp.WithString("vote_id", mcp.Description("Vote id to use instead of resolving (optional)")),
	), s.handleResolveVote)

	s.mcpServer.AddTool(mcp.NewTool(ToolListVotes,
		mcp.WithDescription("List how every legislator voted in the vote behind a portal link. Returns {idVotacao, titulo, rows, nota?, truncado?} or {needChoice, options}."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Portal URL carrying the reuniao (and optionally itemVotacao) query parameters")),
		mcp.WithString("vote_id", mcp.Description("Vote id to use instead of resolving (optional)")),
	), s.handleListVotes)
}

func (s *Server) handleResolveVote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL := request.GetString("url", "")
	voteID := request.GetString("vote_id", "")

	res, err := s.newPipeline().ResolveVote(ctx, rawURL, voteID)
	if err != nil {
		return s.toolError(ToolResolveVote, err), nil
	}
	body, err := frontdoor.ResolutionBody(res)
	if err != nil {
		return s.toolError(ToolResolveVote, err), nil
	}
	return textResult(body)
}

func (s *Server) handleListVotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL := request.GetString("url", "")
	voteID := request.GetString("vote_id", "")

	out, err := s.newPipeline().ListVotes(ctx, rawURL, voteID)
	if err != nil {
		return s.toolError(ToolListVotes, err), nil
	}
	body, err := frontdoor.ListOutcomeBody(out)
	if err != nil {
		return s.toolError(ToolListVotes, err), nil
	}
	return textResult(body)
}

// toolError reports pipeline failures in-band so the agent can read them.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.logger.Warn("tool call failed", slog.String("tool", tool), slog.String("error", err.Error()))
	data, _ := json.Marshal(frontdoor.NewErrorBody(err))
	return mcp.NewToolResultError(string(data))
}

func textResult(body any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

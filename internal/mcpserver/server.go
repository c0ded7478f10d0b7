// Package mcpserver exposes the chat logger as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/comigor/chatlogger-go/internal/chatlog"
	"github.com/comigor/chatlogger-go/internal/logger"
	"github.com/comigor/chatlogger-go/internal/record"
)

const (
	ServerName = "chat_logger"

	ToolSaveHistory         = "save_chat_history"
	ToolSaveHistoryMarkdown = "save_chat_history_markdown"
)

// Saver is the part of chatlog.Service the tools call.
type Saver interface {
	Save(ctx context.Context, req chatlog.SaveRequest) (chatlog.SaveResult, error)
	SaveTranscript(ctx context.Context, msgs []record.Message, conversationID string) (string, error)
}

// Handlers holds the tool handlers.
type Handlers struct {
	saver          Saver
	defaultProject string
}

// NewHandlers creates tool handlers backed by saver.
func NewHandlers(saver Saver, defaultProject string) *Handlers {
	return &Handlers{saver: saver, defaultProject: defaultProject}
}

var messageItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"role":      map[string]any{"type": "string"},
		"content":   map[string]any{"type": "string"},
		"timestamp": map[string]any{"type": "string"},
	},
	"required": []string{"role", "content"},
}

// New builds the MCP server with both tools registered.
func New(h *Handlers, version string) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool(ToolSaveHistory,
		mcp.WithDescription("Save chat history with AI analysis of the entire conversation"),
		mcp.WithArray("messages",
			mcp.Required(),
			mcp.Description("List of chat messages, each containing role and content"),
			mcp.Items(messageItems),
		),
		mcp.WithString("conversation_id",
			mcp.Description("Optional conversation ID for file naming"),
		),
		mcp.WithString("project_name",
			mcp.Description("Project name"),
			mcp.DefaultString(h.defaultProject),
		),
		mcp.WithBoolean("use_ai_analysis",
			mcp.Description("Whether to use AI to analyze the entire conversation"),
			mcp.DefaultBool(true),
		),
	), h.SaveHistory)

	s.AddTool(mcp.NewTool(ToolSaveHistoryMarkdown,
		mcp.WithDescription("Save chat history as a Markdown file"),
		mcp.WithArray("messages",
			mcp.Required(),
			mcp.Description("List of chat messages, each containing role and content"),
			mcp.Items(messageItems),
		),
		mcp.WithString("conversation_id",
			mcp.Description("Optional conversation ID for file naming"),
		),
	), h.SaveHistoryMarkdown)

	return s
}

// ServeStdio runs s on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

type saveArgs struct {
	Messages       []record.Message `json:"messages"`
	ConversationID string           `json:"conversation_id"`
	ProjectName    *string          `json:"project_name"`
	UseAIAnalysis  *bool            `json:"use_ai_analysis"`
}

var errNoMessages = errors.New("messages must be a non-empty list")

func bindArgs(req mcp.CallToolRequest) (saveArgs, error) {
	var args saveArgs
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return args, fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	if len(args.Messages) == 0 {
		return args, errNoMessages
	}
	if args.ConversationID != "" {
		if err := record.ValidateConversationID(args.ConversationID); err != nil {
			return args, err
		}
	}
	return args, nil
}

// SaveHistory handles save_chat_history.
func (h *Handlers) SaveHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindArgs(req)
	if err != nil {
		logger.L.Warn("rejected tool call", "tool", ToolSaveHistory, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	project := h.defaultProject
	if args.ProjectName != nil && *args.ProjectName != "" {
		project = *args.ProjectName
	}
	useAnalysis := true
	if args.UseAIAnalysis != nil {
		useAnalysis = *args.UseAIAnalysis
	}

	res, err := h.saver.Save(ctx, chatlog.SaveRequest{
		Messages:       args.Messages,
		ConversationID: args.ConversationID,
		ProjectName:    project,
		UseAnalysis:    useAnalysis,
	})
	if err != nil {
		logger.L.Error("save_chat_history failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("failed to save conversation: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Conversation saved: %s (%s - %s)",
		res.Location, res.Record.Tag, res.Record.Title)), nil
}

// SaveHistoryMarkdown handles save_chat_history_markdown.
func (h *Handlers) SaveHistoryMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindArgs(req)
	if err != nil {
		logger.L.Warn("rejected tool call", "tool", ToolSaveHistoryMarkdown, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := h.saver.SaveTranscript(ctx, args.Messages, args.ConversationID)
	if err != nil {
		logger.L.Error("save_chat_history_markdown failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("failed to save transcript: %v", err)), nil
	}
	return mcp.NewToolResultText("Chat history has been saved to file: " + path), nil
}

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/comigor/chatlogger-go/internal/aggregate"
	"github.com/comigor/chatlogger-go/internal/chatlog"
	"github.com/comigor/chatlogger-go/internal/record"
	"github.com/comigor/chatlogger-go/internal/store"
)

type mockSaver struct {
	saveReq  chatlog.SaveRequest
	saveErr  error
	tMsgs    []record.Message
	tID      string
	tPath    string
	tErr     error
	saveCall int
}

func (m *mockSaver) Save(ctx context.Context, req chatlog.SaveRequest) (chatlog.SaveResult, error) {
	m.saveCall++
	m.saveReq = req
	if m.saveErr != nil {
		return chatlog.SaveResult{}, m.saveErr
	}
	return chatlog.SaveResult{
		Location: "chat_logs/conversation_x.json",
		Record:   record.ConversationRecord{AnalysisResult: record.AnalysisResult{Tag: record.TagOther, Title: "Chat Conversation"}},
	}, nil
}

func (m *mockSaver) SaveTranscript(ctx context.Context, msgs []record.Message, id string) (string, error) {
	m.tMsgs, m.tID = msgs, id
	return m.tPath, m.tErr
}

func callReq(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

var toolMessages = []any{
	map[string]any{"role": "user", "content": "add a retry function"},
	map[string]any{"role": "assistant", "content": "done", "timestamp": "2025-01-01T00:00:00Z"},
}

func TestSaveHistory_Defaults(t *testing.T) {
	saver := &mockSaver{}
	h := NewHandlers(saver, "MCP_Chat_Logger")

	res, err := h.SaveHistory(context.Background(), callReq(ToolSaveHistory, map[string]any{"messages": toolMessages}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, resultText(t, res), "Conversation saved: chat_logs/conversation_x.json")

	require.Equal(t, "MCP_Chat_Logger", saver.saveReq.ProjectName)
	require.True(t, saver.saveReq.UseAnalysis)
	require.Empty(t, saver.saveReq.ConversationID)
	require.Len(t, saver.saveReq.Messages, 2)
	require.Equal(t, "2025-01-01T00:00:00Z", saver.saveReq.Messages[1].Timestamp)
}

func TestSaveHistory_Arguments(t *testing.T) {
	saver := &mockSaver{}
	h := NewHandlers(saver, "MCP_Chat_Logger")

	_, err := h.SaveHistory(context.Background(), callReq(ToolSaveHistory, map[string]any{
		"messages":        toolMessages,
		"conversation_id": "c-1",
		"project_name":    "Demo",
		"use_ai_analysis": false,
	}))
	require.NoError(t, err)
	require.Equal(t, "c-1", saver.saveReq.ConversationID)
	require.Equal(t, "Demo", saver.saveReq.ProjectName)
	require.False(t, saver.saveReq.UseAnalysis)
}

func TestSaveHistory_InvalidArguments(t *testing.T) {
	saver := &mockSaver{}
	h := NewHandlers(saver, "P")

	for _, args := range []map[string]any{
		{},
		{"messages": []any{}},
		{"messages": "not a list"},
		{"messages": []any{map[string]any{"role": "user", "content": 5}}},
	} {
		res, err := h.SaveHistory(context.Background(), callReq(ToolSaveHistory, args))
		require.NoError(t, err)
		require.True(t, res.IsError, "args %v", args)
	}
	require.Zero(t, saver.saveCall)
}

func TestSaveTools_RejectUnsafeConversationID(t *testing.T) {
	saver := &mockSaver{tPath: "unused"}
	h := NewHandlers(saver, "P")

	for _, id := range []string{"x/../../escaped", "..", `dir\name`} {
		args := map[string]any{"messages": toolMessages, "conversation_id": id}

		res, err := h.SaveHistory(context.Background(), callReq(ToolSaveHistory, args))
		require.NoError(t, err)
		require.True(t, res.IsError, id)

		res, err = h.SaveHistoryMarkdown(context.Background(), callReq(ToolSaveHistoryMarkdown, args))
		require.NoError(t, err)
		require.True(t, res.IsError, id)
	}
	require.Zero(t, saver.saveCall)
	require.Nil(t, saver.tMsgs)
}

func TestSaveHistory_StoreError(t *testing.T) {
	h := NewHandlers(&mockSaver{saveErr: errors.New("disk full")}, "P")
	res, err := h.SaveHistory(context.Background(), callReq(ToolSaveHistory, map[string]any{"messages": toolMessages}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, resultText(t, res), "disk full")
}

func TestSaveHistoryMarkdown(t *testing.T) {
	saver := &mockSaver{tPath: "chat_logs/chat_c_1.md"}
	h := NewHandlers(saver, "P")

	res, err := h.SaveHistoryMarkdown(context.Background(), callReq(ToolSaveHistoryMarkdown, map[string]any{
		"messages":        toolMessages,
		"conversation_id": "c",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "Chat history has been saved to file: chat_logs/chat_c_1.md", resultText(t, res))
	require.Equal(t, "c", saver.tID)
	require.Len(t, saver.tMsgs, 2)

	saver.tErr = errors.New("read-only fs")
	res, err = h.SaveHistoryMarkdown(context.Background(), callReq(ToolSaveHistoryMarkdown, map[string]any{"messages": toolMessages}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestServer_ListsTools(t *testing.T) {
	s := New(NewHandlers(&mockSaver{}, "P"), "test")
	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	require.Contains(t, string(data), `"save_chat_history"`)
	require.Contains(t, string(data), `"save_chat_history_markdown"`)
}

func TestServer_InProcessClient(t *testing.T) {
	ctx := context.Background()
	saver := &mockSaver{tPath: "chat_logs/chat_c.md"}
	c, err := client.NewInProcessClient(New(NewHandlers(saver, "P"), "test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test-client", Version: "test"}
	initRes, err := c.Initialize(ctx, initReq)
	require.NoError(t, err)
	require.Equal(t, ServerName, initRes.ServerInfo.Name)

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{ToolSaveHistory, ToolSaveHistoryMarkdown}, names)

	res, err := c.CallTool(ctx, callReq(ToolSaveHistoryMarkdown, map[string]any{"messages": toolMessages}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "Chat history has been saved to file: chat_logs/chat_c.md", resultText(t, res))

	res, err = c.CallTool(ctx, callReq(ToolSaveHistory, map[string]any{}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

// A record saved through the tool is readable by the dashboard aggregation.
func TestSaveHistory_EndToEnd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chat_logs")
	fs := store.NewFileStore(dir)
	svc := chatlog.New(nil, fs, dir, "MCP_Chat_Logger")
	h := NewHandlers(svc, "MCP_Chat_Logger")

	res, err := h.SaveHistory(context.Background(), callReq(ToolSaveHistory, map[string]any{
		"messages":        toolMessages,
		"project_name":    "Demo",
		"use_ai_analysis": false,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	dash, err := aggregate.New(fs, "Gemini").Aggregate(context.Background())
	require.NoError(t, err)
	require.Len(t, dash.ProjectSummaries, 1)
	require.Equal(t, "Demo", dash.ProjectSummaries[0].ProjectName)
	require.Equal(t, []aggregate.Project{{Name: "Demo", Updates: 1, Status: "Active"}}, dash.Projects)
}

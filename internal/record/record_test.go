package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	cases := map[string]Tag{
		"bug_fixed":        TagBugFixed,
		"bug fixed":        TagBugFixed,
		"Bug-Fixed":        TagBugFixed,
		" function added ": TagFunctionAdded,
		"function modify":  TagFunctionModify,
		"QUESTION":         TagQuestion,
		"discussion":       TagDiscussion,
		"other":            TagOther,
		"refactor":         TagOther,
		"":                 TagOther,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseTag(in), "ParseTag(%q)", in)
	}
}

func TestNew_NormalizesMessages(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		{Role: "user", Content: "hi"},
		{Role: "", Content: "anon", Timestamp: "2025-01-01T00:00:00Z"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "again"},
	}
	rec := New("id-1", "proj", msgs, AnalysisResult{Tag: "bug fixed", AfterCode: Code("x")}, now)

	require.Equal(t, "id-1", rec.ConversationID)
	require.Equal(t, "proj", rec.ProjectName)
	require.Equal(t, 4, rec.MessageCount)
	require.Equal(t, []string{"user", "unknown", "assistant"}, rec.Participants)
	require.Equal(t, Timestamp(now), rec.Messages[0].Timestamp)
	require.Equal(t, "2025-01-01T00:00:00Z", rec.Messages[1].Timestamp)
	require.Equal(t, "unknown", rec.Messages[1].Role)
	require.Equal(t, TagBugFixed, rec.Tag)
	require.Equal(t, Timestamp(now), rec.CreatedAt)
	require.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	require.Equal(t, "", rec.Before())
	require.Equal(t, "x", rec.After())
}

func TestNew_EmptyMessages(t *testing.T) {
	rec := New("id", "p", nil, AnalysisResult{}, time.Now())
	require.Equal(t, 0, rec.MessageCount)
	require.NotNil(t, rec.Participants)
	require.Empty(t, rec.Participants)
	require.Equal(t, TagOther, rec.Tag)
}

func TestRecord_JSONShape(t *testing.T) {
	rec := New("abc", "proj", []Message{{Role: "user", Content: "c", Timestamp: "t"}},
		AnalysisResult{Tag: TagFunctionAdded, Title: "T", BeforeCode: Code("b")}, time.Now())
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"conversation_id", "project_name", "tag", "description", "title", "summary",
		"before_code", "after_code", "message_count", "participants", "created_at", "updated_at", "messages"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "function_added", raw["tag"])
	assert.Nil(t, raw["after_code"])
	assert.NotContains(t, raw, "RawTag")

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, rec.ConversationID, back.ConversationID)
	assert.Equal(t, rec.Messages, back.Messages)
	assert.Equal(t, "b", back.Before())
}

func TestDecode_Lenient(t *testing.T) {
	payload := `{
		"conversation_id": 42,
		"project_name": {"nested": true},
		"tag": "bug fixed",
		"description": null,
		"before_code": ["not", "code"],
		"after_code": "def f(): pass",
		"message_count": "seven",
		"participants": ["user", 3, null, {"x": 1}],
		"messages": [{"role": "user", "content": 5}, "garbage", {"content": "no role"}]
	}`
	rec, err := Decode([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "42", rec.ConversationID)
	assert.Equal(t, "", rec.ProjectName)
	assert.Equal(t, TagBugFixed, rec.Tag)
	assert.Equal(t, "bug fixed", rec.RawTag)
	assert.Equal(t, "", rec.Description)
	assert.Nil(t, rec.BeforeCode)
	assert.Equal(t, "def f(): pass", rec.After())
	assert.Equal(t, 0, rec.MessageCount)
	assert.Equal(t, []string{"user", "3"}, rec.Participants)
	require.Len(t, rec.Messages, 2)
	assert.Equal(t, "5", rec.Messages[0].Content)
	assert.Equal(t, "", rec.Messages[1].Role)
}

func TestDecode_MissingFields(t *testing.T) {
	rec, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, TagOther, rec.Tag)
	assert.Nil(t, rec.BeforeCode)
	assert.Nil(t, rec.AfterCode)
	assert.NotNil(t, rec.Participants)
	assert.Empty(t, rec.Messages)
}

func TestDecode_NotObject(t *testing.T) {
	for _, payload := range []string{`[]`, `"x"`, `null`, `{broken`, ``} {
		_, err := Decode([]byte(payload))
		require.ErrorIs(t, err, ErrNotObject, "payload %q", payload)
	}
}

func TestValidateConversationID(t *testing.T) {
	for _, id := range []string{"abc", "c-1", "fixed_id", "3f1c2a9e-7b4d-4c1e-9a57-0d6b2f8e1c44"} {
		assert.NoError(t, ValidateConversationID(id), id)
	}
	for _, id := range []string{"", "..", "x/../../escaped", `a\b`, "a b", "a.json", string(make([]byte, 129))} {
		assert.ErrorIs(t, ValidateConversationID(id), ErrInvalidConversationID, "%q", id)
	}
}

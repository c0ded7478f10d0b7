package record

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cast"
)

// ErrNotObject is returned by Decode when the payload is not a JSON object.
var ErrNotObject = errors.New("record is not a JSON object")

// Decode reads a persisted record leniently. Persisted files are untrusted, so
// any field that is missing, null or of the wrong type is left at its zero
// value instead of failing the whole record.
func Decode(data []byte) (ConversationRecord, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return ConversationRecord{}, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if raw == nil {
		return ConversationRecord{}, ErrNotObject
	}

	rawTag := str(raw["tag"])
	rec := ConversationRecord{
		ConversationID: str(raw["conversation_id"]),
		ProjectName:    str(raw["project_name"]),
		AnalysisResult: AnalysisResult{
			Tag:         ParseTag(rawTag),
			Description: str(raw["description"]),
			Title:       str(raw["title"]),
			Summary:     str(raw["summary"]),
			BeforeCode:  Code(str(raw["before_code"])),
			AfterCode:   Code(str(raw["after_code"])),
		},
		MessageCount: count(raw["message_count"]),
		Participants: strs(raw["participants"]),
		CreatedAt:    str(raw["created_at"]),
		UpdatedAt:    str(raw["updated_at"]),
		Messages:     messages(raw["messages"]),
		RawTag:       rawTag,
	}
	return rec, nil
}

// str converts scalars to string; objects, arrays and null become "".
func str(v any) string {
	switch v.(type) {
	case map[string]any, []any, nil:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

func count(v any) int {
	n, err := cast.ToIntE(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func strs(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func messages(v any) []Message {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Message, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Message{
			Role:      str(obj["role"]),
			Content:   str(obj["content"]),
			Timestamp: str(obj["timestamp"]),
		})
	}
	return out
}

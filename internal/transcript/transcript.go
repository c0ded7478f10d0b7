// Package transcript renders chat messages as a Markdown document.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/comigor/chatlogger-go/internal/record"
)

const stampLayout = "2006-01-02 15:04:05"

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Render returns the Markdown transcript. conversationID may be empty.
func Render(msgs []record.Message, conversationID string, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Chat History\n\n")
	if conversationID != "" {
		fmt.Fprintf(&b, "Conversation ID: %s\n", conversationID)
	}
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format(stampLayout))

	for _, m := range msgs {
		role := m.Role
		if role == "" {
			role = "unknown"
		}
		fmt.Fprintf(&b, "\n### %s - %s\n\n%s\n\n---\n", capitalize(role), now.Format(stampLayout), m.Content)
	}
	return b.String()
}

// FileName is chat_<id>_<stamp>.md, or chat_<stamp>.md without an id.
func FileName(conversationID string, now time.Time) string {
	stamp := now.Format("20060102_150405")
	if conversationID == "" {
		return fmt.Sprintf("chat_%s.md", stamp)
	}
	return fmt.Sprintf("chat_%s_%s.md", conversationID, stamp)
}

// Save writes the transcript into dir and returns its path.
func Save(dir string, msgs []record.Message, conversationID string, now time.Time) (string, error) {
	if conversationID != "" {
		if err := record.ValidateConversationID(conversationID); err != nil {
			return "", fmt.Errorf("transcript %q: %w", conversationID, err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}
	path := filepath.Join(dir, FileName(conversationID, now))
	if err := os.WriteFile(path, []byte(Render(msgs, conversationID, now)), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// Package record defines the persisted conversation record and its parts.
package record

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/comigor/chatlogger-go/internal/orderedset"
)

// Tag is the coarse category of a conversation outcome.
type Tag string

const (
	TagBugFixed       Tag = "bug_fixed"
	TagFunctionAdded  Tag = "function_added"
	TagFunctionModify Tag = "function_modify"
	TagQuestion       Tag = "question"
	TagDiscussion     Tag = "discussion"
	TagOther          Tag = "other"
)

// Tags lists every known tag in display order.
var Tags = []Tag{TagBugFixed, TagFunctionAdded, TagFunctionModify, TagQuestion, TagDiscussion, TagOther}

// ParseTag maps provider and legacy spellings ("bug fixed", "Bug-Fixed") onto a
// known Tag. Unknown values become TagOther.
func ParseTag(s string) Tag {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, t := range Tags {
		if string(t) == norm {
			return t
		}
	}
	return TagOther
}

// ErrInvalidConversationID is returned for ids that are unsafe in file names.
var ErrInvalidConversationID = errors.New("conversation id may only contain letters, digits, '-' and '_'")

const maxConversationIDLen = 128

var conversationIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateConversationID checks that id can be embedded in a file name
// without escaping its directory.
func ValidateConversationID(id string) error {
	if len(id) > maxConversationIDLen || !conversationIDRe.MatchString(id) {
		return ErrInvalidConversationID
	}
	return nil
}

// Message is a single chat turn.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// AnalysisResult is the structured outcome of analyzing a conversation.
type AnalysisResult struct {
	Tag         Tag     `json:"tag"`
	Description string  `json:"description"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	BeforeCode  *string `json:"before_code"`
	AfterCode   *string `json:"after_code"`
}

// Before returns the before code or "" when absent.
func (r AnalysisResult) Before() string { return deref(r.BeforeCode) }

// After returns the after code or "" when absent.
func (r AnalysisResult) After() string { return deref(r.AfterCode) }

// Code returns a pointer to s, or nil when s is empty.
func Code(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ConversationRecord is the persisted unit. It is written once and never updated.
type ConversationRecord struct {
	ConversationID string `json:"conversation_id"`
	ProjectName    string `json:"project_name"`
	AnalysisResult
	MessageCount int       `json:"message_count"`
	Participants []string  `json:"participants"`
	CreatedAt    string    `json:"created_at"`
	UpdatedAt    string    `json:"updated_at"`
	Messages     []Message `json:"messages"`

	// RawTag is the tag exactly as it was persisted; legacy files use "bug fixed".
	RawTag string `json:"-"`
}

// Timestamp formats t the way records store time.
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// New builds a record for msgs. Messages without a role become "unknown" and
// messages without a timestamp are stamped with now.
func New(id, project string, msgs []Message, analysis AnalysisResult, now time.Time) ConversationRecord {
	stamp := Timestamp(now)
	participants := orderedset.New[string]()
	normalized := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.Role) == "" {
			m.Role = "unknown"
		}
		if m.Timestamp == "" {
			m.Timestamp = stamp
		}
		participants.Add(m.Role)
		normalized = append(normalized, m)
	}
	analysis.Tag = ParseTag(string(analysis.Tag))
	return ConversationRecord{
		ConversationID: id,
		ProjectName:    project,
		AnalysisResult: analysis,
		MessageCount:   len(normalized),
		Participants:   participants.Slice(),
		CreatedAt:      stamp,
		UpdatedAt:      stamp,
		Messages:       normalized,
		RawTag:         string(analysis.Tag),
	}
}

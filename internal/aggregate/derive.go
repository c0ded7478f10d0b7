// Package aggregate rebuilds dashboard view models from persisted records.
package aggregate

import (
	"strings"
	"unicode/utf8"

	"github.com/comigor/chatlogger-go/internal/codechange"
	"github.com/comigor/chatlogger-go/internal/orderedset"
	"github.com/comigor/chatlogger-go/internal/record"
)

const (
	// MaxMentions caps DeriveFunctions and DeriveBugFixes across all messages.
	MaxMentions = 5
	// MaxTags caps DeriveTags.
	MaxTags = 6
)

var (
	functionKeywords = []string{"function", "method", "added", "implemented", "create", "add", "implement"}
	bugFixKeywords   = []string{"bug", "fix", "error", "issue", "repair", "problem"}
)

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// mentions collects period-delimited fragments that contain a keyword, from
// messages that contain a keyword, stopping at MaxMentions overall.
func mentions(rec record.ConversationRecord, keywords []string) []string {
	out := []string{}
	for _, m := range rec.Messages {
		if !containsAny(strings.ToLower(m.Content), keywords) {
			continue
		}
		for _, sentence := range strings.Split(m.Content, ".") {
			if !containsAny(strings.ToLower(sentence), keywords) {
				continue
			}
			if s := strings.TrimSpace(sentence); s != "" {
				out = append(out, s)
				if len(out) == MaxMentions {
					return out
				}
			}
		}
	}
	return out
}

// DeriveFunctions returns up to five sentences that talk about adding or
// changing functionality.
func DeriveFunctions(rec record.ConversationRecord) []string {
	return mentions(rec, functionKeywords)
}

// DeriveBugFixes returns up to five sentences that talk about bugs and fixes.
func DeriveBugFixes(rec record.ConversationRecord) []string {
	return mentions(rec, bugFixKeywords)
}

var displayTypes = map[record.Tag]string{
	record.TagBugFixed:       "Security Update",
	record.TagFunctionAdded:  "Feature Development",
	record.TagFunctionModify: "Feature Development",
	record.TagQuestion:       "Discussion",
	record.TagDiscussion:     "Discussion",
}

// DisplayType maps a record tag, in any accepted spelling, to its dashboard type.
func DisplayType(tag string) string {
	if t, ok := displayTypes[record.ParseTag(tag)]; ok {
		return t
	}
	return "Other"
}

const defaultImpact = "Had a positive impact on project development"

var impacts = map[record.Tag]string{
	record.TagBugFixed:       "Improved system stability and user experience",
	record.TagFunctionAdded:  "Enhanced functionality and user capabilities",
	record.TagFunctionModify: "Optimized existing features and performance",
	record.TagQuestion:       "Clarified requirements and improved understanding",
	record.TagDiscussion:     "Promoted knowledge sharing and collaboration",
	record.TagOther:          defaultImpact,
}

// Impact returns the canned impact sentence for tag. The description does not
// influence the result.
// TODO: fold description into the sentence once impact text is generated per record.
func Impact(tag, description string) string {
	if s, ok := impacts[record.ParseTag(tag)]; ok {
		return s
	}
	return defaultImpact
}

// DeriveTags combines the record tag, the code-change tags and description
// keywords into at most six distinct labels.
func DeriveTags(rec record.ConversationRecord) []string {
	tags := orderedset.New[string]()

	raw := rec.RawTag
	if raw == "" {
		raw = string(rec.Tag)
	}
	if raw != "" && !strings.EqualFold(raw, string(record.TagOther)) {
		tags.Add(strings.ReplaceAll(raw, " ", "-"))
	}

	tags.Add(codechange.Classify(rec.Before(), rec.After())...)

	for _, word := range strings.Split(strings.ToLower(rec.Description), " ") {
		if utf8.RuneCountInString(word) > 3 {
			tags.Add(word)
		}
	}
	return tags.Head(MaxTags)
}

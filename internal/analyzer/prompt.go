package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/comigor/chatlogger-go/internal/record"
)

const (
	// minBlockLen is the trimmed length a code block must exceed to be kept.
	minBlockLen = 50
	// blockPreviewLen bounds each code block quoted back in the prompt.
	blockPreviewLen = 200
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:python|py|javascript|js|typescript|ts|java|cpp|c|html|css|sql|bash|sh|golang|go)?\n(.*?)```")

const systemPreamble = "You are a technical assistant that analyzes programming conversations and extracts code changes. Always respond with valid JSON."

// Transcript joins messages as "ROLE: content" blocks separated by blank lines.
func Transcript(msgs []record.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		role := m.Role
		if role == "" {
			role = "unknown"
		}
		b.WriteString(strings.ToUpper(role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// CodeBlocks returns every fenced code block, trimmed, whose body is longer
// than 50 characters. Shorter snippets are inline examples, not real code.
func CodeBlocks(msgs []record.Message) []string {
	var blocks []string
	for _, m := range msgs {
		for _, match := range codeBlockRe.FindAllStringSubmatch(m.Content, -1) {
			body := strings.TrimSpace(match[1])
			if utf8.RuneCountInString(body) > minBlockLen {
				blocks = append(blocks, body)
			}
		}
	}
	return blocks
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// BuildPrompt renders the single request sent to the provider.
func BuildPrompt(msgs []record.Message) string {
	var blocks strings.Builder
	for i, code := range CodeBlocks(msgs) {
		if i > 0 {
			blocks.WriteString("\n")
		}
		fmt.Fprintf(&blocks, "```%d: %s...```", i+1, truncate(code, blockPreviewLen))
	}

	tags := make([]string, 0, len(record.Tags))
	for _, t := range record.Tags {
		tags = append(tags, fmt.Sprintf("%q", string(t)))
	}

	return fmt.Sprintf(`%s

Analyze this programming conversation and extract code changes:

Conversation:
%s

Code blocks found in conversation:
%s

Please provide a JSON response with the following fields:
{
    "tag": %s,
    "description": "Brief description of what was discussed/changed",
    "title": "Short title for this conversation",
    "summary": "Detailed summary of the conversation and changes made",
    "before_code": "Code before the change (if any)",
    "after_code": "Code after the change (if any)"
}

Focus on:
- What type of change was made (bug fix, new feature, modification, question, discussion, etc.)
- Extract the actual before and after code from the conversation
- Provide meaningful descriptions and summaries
`, systemPreamble, Transcript(msgs), blocks.String(), strings.Join(tags, " | "))
}

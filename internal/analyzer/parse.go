package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/comigor/chatlogger-go/internal/llm"
	"github.com/comigor/chatlogger-go/internal/record"
)

// jsonObjectRe is greedy: it spans from the first '{' to the last '}'.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

var errNoJSON = errors.New("no JSON object in response")

const (
	defaultTitle       = "Chat Conversation"
	defaultSummary     = "No summary available"
	defaultDescription = "No description available"
)

// reply mirrors the six fields the provider is asked for. Every field is
// decoded as raw JSON so a wrong type degrades that field only.
type reply struct {
	Tag         json.RawMessage `json:"tag"`
	Description json.RawMessage `json:"description"`
	Title       json.RawMessage `json:"title"`
	Summary     json.RawMessage `json:"summary"`
	BeforeCode  json.RawMessage `json:"before_code"`
	AfterCode   json.RawMessage `json:"after_code"`
}

func text(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// ParseResponse extracts the first brace-delimited object from free text and
// decodes it into an AnalysisResult.
func ParseResponse(answer string) (record.AnalysisResult, error) {
	obj := jsonObjectRe.FindString(strings.TrimSpace(answer))
	if obj == "" {
		return record.AnalysisResult{}, errNoJSON
	}
	var r reply
	if err := json.Unmarshal([]byte(obj), &r); err != nil {
		return record.AnalysisResult{}, fmt.Errorf("decode response: %w", err)
	}
	return record.AnalysisResult{
		Tag:         record.ParseTag(text(r.Tag)),
		Description: orDefault(text(r.Description), defaultDescription),
		Title:       orDefault(text(r.Title), defaultTitle),
		Summary:     orDefault(text(r.Summary), defaultSummary),
		BeforeCode:  record.Code(text(r.BeforeCode)),
		AfterCode:   record.Code(text(r.AfterCode)),
	}, nil
}

// Fallback is the result returned when the provider cannot be used or its
// answer cannot be parsed.
func Fallback(err error) record.AnalysisResult {
	res := record.AnalysisResult{
		Tag:         record.TagOther,
		Title:       defaultTitle,
		Description: "AI analysis failed",
		Summary:     "AI analysis not available",
	}
	if errors.Is(err, llm.ErrNotConfigured) {
		res.Description = "LLM API key not configured"
		res.Summary = "Analysis not available - API key missing"
	}
	return res
}

// Disabled is the result used when the caller opts out of analysis.
func Disabled() record.AnalysisResult {
	return record.AnalysisResult{
		Tag:         record.TagOther,
		Title:       defaultTitle,
		Summary:     defaultSummary,
		Description: defaultDescription,
	}
}

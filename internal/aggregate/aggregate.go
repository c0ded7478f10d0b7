package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/comigor/chatlogger-go/internal/codechange"
	"github.com/comigor/chatlogger-go/internal/logger"
	"github.com/comigor/chatlogger-go/internal/metrics"
	"github.com/comigor/chatlogger-go/internal/record"
	"github.com/comigor/chatlogger-go/internal/store"
)

const (
	unknownProject = "Unknown Project"
	statusActive   = "Active"
)

// Summary is the dashboard view model for one record. It is never persisted.
type Summary struct {
	ID           string              `json:"id"`
	ProjectName  string              `json:"projectName"`
	Title        string              `json:"title"`
	Summary      string              `json:"summary"`
	Type         string              `json:"type"`
	Timestamp    string              `json:"timestamp"`
	AIModel      string              `json:"aiModel"`
	Functions    []string            `json:"functions"`
	BugFixes     []string            `json:"bugFixes"`
	Tags         []string            `json:"tags"`
	CodeChanges  codechange.DiffView `json:"codeChanges"`
	Impact       string              `json:"impact"`
	MessageCount int                 `json:"messageCount"`
	Participants []string            `json:"participants"`
}

// Project is the per-project rollup.
type Project struct {
	Name    string `json:"name"`
	Updates int    `json:"updates"`
	Status  string `json:"status"`
}

// Dashboard is the payload served to the dashboard.
type Dashboard struct {
	Projects         []Project `json:"projects"`
	ProjectSummaries []Summary `json:"projectSummaries"`
}

// Empty returns a dashboard with empty, non-nil collections.
func Empty() Dashboard {
	return Dashboard{Projects: []Project{}, ProjectSummaries: []Summary{}}
}

// BuildSummary derives the view model for rec. n is the 1-based position of
// rec among the summaries built so far and only feeds placeholder ids/titles.
func BuildSummary(rec record.ConversationRecord, n int, aiModel string, now time.Time) Summary {
	id := rec.ConversationID
	if id == "" {
		id = fmt.Sprintf("project-%d", n)
	}
	project := rec.ProjectName
	if project == "" {
		project = unknownProject
	}
	title := rec.Title
	if title == "" {
		title = fmt.Sprintf("Update %d", n)
	}
	summary := rec.Summary
	if summary == "" {
		summary = rec.Description
	}
	timestamp := rec.CreatedAt
	if timestamp == "" {
		timestamp = record.Timestamp(now)
	}
	participants := rec.Participants
	if participants == nil {
		participants = []string{}
	}
	tag := rec.RawTag
	if tag == "" {
		tag = string(rec.Tag)
	}

	return Summary{
		ID:           id,
		ProjectName:  project,
		Title:        title,
		Summary:      summary,
		Type:         DisplayType(tag),
		Timestamp:    timestamp,
		AIModel:      aiModel,
		Functions:    DeriveFunctions(rec),
		BugFixes:     DeriveBugFixes(rec),
		Tags:         DeriveTags(rec),
		CodeChanges:  codechange.FormatDiff(rec.Before(), rec.After()),
		Impact:       Impact(tag, rec.Description),
		MessageCount: rec.MessageCount,
		Participants: participants,
	}
}

// Build turns store entries into the dashboard, newest first. Entries that
// cannot be decoded are logged and skipped; they affect neither output.
func Build(entries []store.Entry, aiModel string, now time.Time) Dashboard {
	sorted := make([]store.Entry, len(entries))
	copy(sorted, entries)
	store.SortNewestFirst(sorted)

	out := Empty()
	index := map[string]int{}
	for _, e := range sorted {
		rec, err := record.Decode(e.Data)
		if err != nil {
			logger.L.Warn("skipping unreadable record", "key", e.Key, "error", err)
			metrics.Get().RecordsSkipped.Inc()
			continue
		}

		s := BuildSummary(rec, len(out.ProjectSummaries)+1, aiModel, now)
		out.ProjectSummaries = append(out.ProjectSummaries, s)

		if i, ok := index[s.ProjectName]; ok {
			out.Projects[i].Updates++
			continue
		}
		index[s.ProjectName] = len(out.Projects)
		out.Projects = append(out.Projects, Project{Name: s.ProjectName, Updates: 1, Status: statusActive})
	}
	return out
}

// Aggregator reads a store and builds the dashboard on every call.
type Aggregator struct {
	store   store.Store
	aiModel string
	now     func() time.Time
}

// New creates an aggregator over s. aiModel labels every summary.
func New(s store.Store, aiModel string) *Aggregator {
	return &Aggregator{store: s, aiModel: aiModel, now: time.Now}
}

// Aggregate lists the store and builds the dashboard. A store that does not
// exist yet yields an empty dashboard; any other store failure, or an
// unexpected panic while building, is returned as an error.
func (a *Aggregator) Aggregate(ctx context.Context) (dash Dashboard, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.L.Error("aggregation panicked", "panic", r)
			metrics.Get().AggregationsTotal.WithLabelValues("error").Inc()
			dash, err = Empty(), fmt.Errorf("aggregation failed: %v", r)
		}
	}()

	entries, err := a.store.List(ctx)
	if err != nil {
		logger.L.Error("reading project data failed", "error", err)
		metrics.Get().AggregationsTotal.WithLabelValues("error").Inc()
		return Empty(), fmt.Errorf("list records: %w", err)
	}
	logger.L.Debug("aggregating records", "count", len(entries))

	dash = Build(entries, a.aiModel, a.now())
	metrics.Get().AggregationsTotal.WithLabelValues("ok").Inc()
	return dash, nil
}

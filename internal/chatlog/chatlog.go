// Package chatlog saves conversations: it analyzes them, builds the record and
// appends it to the store.
package chatlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/comigor/chatlogger-go/internal/analyzer"
	"github.com/comigor/chatlogger-go/internal/logger"
	"github.com/comigor/chatlogger-go/internal/metrics"
	"github.com/comigor/chatlogger-go/internal/record"
	"github.com/comigor/chatlogger-go/internal/store"
	"github.com/comigor/chatlogger-go/internal/transcript"
)

// ErrNoMessages is returned when a save request carries no messages.
var ErrNoMessages = errors.New("no messages to save")

// Analyzer is the part of analyzer.Analyzer the service needs.
type Analyzer interface {
	Analyze(ctx context.Context, msgs []record.Message) record.AnalysisResult
}

// SaveRequest describes one conversation to persist.
type SaveRequest struct {
	Messages       []record.Message
	ConversationID string
	ProjectName    string
	UseAnalysis    bool
}

// SaveResult reports where the record went and what the analysis found.
type SaveResult struct {
	Location string
	Record   record.ConversationRecord
}

// Service saves conversations.
type Service struct {
	analyzer       Analyzer
	store          store.Store
	transcriptDir  string
	defaultProject string
	now            func() time.Time
}

// New creates a service. transcriptDir receives Markdown transcripts.
func New(a Analyzer, s store.Store, transcriptDir, defaultProject string) *Service {
	return &Service{
		analyzer:       a,
		store:          s,
		transcriptDir:  transcriptDir,
		defaultProject: defaultProject,
		now:            time.Now,
	}
}

// Save analyzes the conversation (unless disabled) and appends a new record.
// Analysis failures never fail the save; only store errors do.
func (s *Service) Save(ctx context.Context, req SaveRequest) (SaveResult, error) {
	if len(req.Messages) == 0 {
		return SaveResult{}, ErrNoMessages
	}
	id := req.ConversationID
	if id == "" {
		id = uuid.NewString()
	} else if err := record.ValidateConversationID(id); err != nil {
		return SaveResult{}, err
	}
	project := req.ProjectName
	if project == "" {
		project = s.defaultProject
	}

	var analysis record.AnalysisResult
	if req.UseAnalysis {
		logger.L.Info("analyzing conversation", "conversation_id", id, "messages", len(req.Messages))
		analysis = s.analyzer.Analyze(ctx, req.Messages)
	} else {
		analysis = analyzer.Disabled()
		metrics.Get().AnalysisTotal.WithLabelValues(metrics.OutcomeDisabled).Inc()
	}

	rec := record.New(id, project, req.Messages, analysis, s.now())
	loc, err := s.store.Append(ctx, rec)
	if err != nil {
		return SaveResult{}, fmt.Errorf("save conversation %s: %w", id, err)
	}
	metrics.Get().RecordsSaved.WithLabelValues("json").Inc()
	logger.L.Info("conversation saved", "conversation_id", id, "project", project, "tag", rec.Tag, "location", loc)
	return SaveResult{Location: loc, Record: rec}, nil
}

// SaveTranscript writes the Markdown transcript and returns its path.
func (s *Service) SaveTranscript(ctx context.Context, msgs []record.Message, conversationID string) (string, error) {
	if len(msgs) == 0 {
		return "", ErrNoMessages
	}
	if conversationID != "" {
		if err := record.ValidateConversationID(conversationID); err != nil {
			return "", err
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := transcript.Save(s.transcriptDir, msgs, conversationID, s.now())
	if err != nil {
		return "", err
	}
	metrics.Get().RecordsSaved.WithLabelValues("markdown").Inc()
	logger.L.Info("transcript saved", "conversation_id", conversationID, "path", path)
	return path, nil
}

// Package analyzer turns a chat transcript into a structured AnalysisResult
// by asking an external text generator and parsing its free-text answer.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/comigor/chatlogger-go/internal/config"
	"github.com/comigor/chatlogger-go/internal/llm"
	"github.com/comigor/chatlogger-go/internal/logger"
	"github.com/comigor/chatlogger-go/internal/metrics"
	"github.com/comigor/chatlogger-go/internal/record"
)

// FSM states
const (
	StateIdle       = "Idle"
	StateGenerating = "Generating"
	StateParsing    = "Parsing"
	StateDone       = "Done"     // Terminal: parsed provider answer
	StateFallback   = "Fallback" // Terminal: default result
)

// FSM triggers
const (
	TriggerStart     = "Start"
	TriggerGenerated = "Generated"
	TriggerParsed    = "Parsed"
	TriggerFailed    = "Failed"
)

const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 1500
)

// Analyzer analyzes one conversation per call. It holds no per-call state.
type Analyzer struct {
	gen     llm.Generator
	params  llm.Params
	timeout time.Duration
}

// New creates an analyzer that sends prompts to gen with the generation
// settings from cfg.
func New(gen llm.Generator, cfg config.LLMConfig) *Analyzer {
	params := llm.Params{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
	if params.Temperature == 0 {
		params.Temperature = defaultTemperature
	}
	if params.MaxTokens <= 0 {
		params.MaxTokens = defaultMaxTokens
	}
	return &Analyzer{gen: gen, params: params, timeout: cfg.Timeout}
}

// Analyze never fails: any provider or parsing problem is logged and the
// fallback result is returned instead.
func (a *Analyzer) Analyze(ctx context.Context, msgs []record.Message) (result record.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.L.Error("analysis panicked", "panic", r)
			metrics.Get().AnalysisTotal.WithLabelValues(metrics.OutcomeProviderErr).Inc()
			result = Fallback(fmt.Errorf("analysis panicked: %v", r))
		}
	}()

	type fsmContext struct {
		answer  string
		result  record.AnalysisResult
		lastErr error
		outcome string
	}
	fsmCtx := &fsmContext{}

	fsm := stateless.NewStateMachine(StateIdle)

	fsm.Configure(StateIdle).
		Permit(TriggerStart, StateGenerating)

	// State: Generating
	// Action: one round trip to the provider, no retry.
	fsm.Configure(StateGenerating).
		OnEntry(func(ctx context.Context, args ...any) error {
			callCtx := ctx
			if a.timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, a.timeout)
				defer cancel()
			}
			prompt := BuildPrompt(msgs)
			logger.L.Debug("sending analysis prompt", "messages", len(msgs), "prompt_len", len(prompt))

			answer, err := a.gen.Generate(callCtx, prompt, a.params)
			if err != nil {
				fsmCtx.lastErr = err
				fsmCtx.outcome = metrics.OutcomeProviderErr
				if errors.Is(err, llm.ErrNotConfigured) {
					fsmCtx.outcome = metrics.OutcomeUnconfigured
				}
				return fsm.FireCtx(ctx, TriggerFailed)
			}
			fsmCtx.answer = answer
			return fsm.FireCtx(ctx, TriggerGenerated)
		}).
		Permit(TriggerGenerated, StateParsing).
		Permit(TriggerFailed, StateFallback)

	// State: Parsing
	fsm.Configure(StateParsing).
		OnEntry(func(ctx context.Context, args ...any) error {
			res, err := ParseResponse(fsmCtx.answer)
			if err != nil {
				fsmCtx.lastErr = err
				fsmCtx.outcome = metrics.OutcomeParseErr
				return fsm.FireCtx(ctx, TriggerFailed)
			}
			fsmCtx.result = res
			fsmCtx.outcome = metrics.OutcomeOK
			return fsm.FireCtx(ctx, TriggerParsed)
		}).
		Permit(TriggerParsed, StateDone).
		Permit(TriggerFailed, StateFallback)

	fsm.Configure(StateDone)

	fsm.Configure(StateFallback).
		OnEntry(func(ctx context.Context, args ...any) error {
			logger.L.Warn("analysis fell back to defaults", "reason", fsmCtx.outcome, "error", fsmCtx.lastErr)
			fsmCtx.result = Fallback(fsmCtx.lastErr)
			return nil
		})

	if err := fsm.FireCtx(ctx, TriggerStart); err != nil {
		logger.L.Error("analysis state machine failed", "error", err)
		metrics.Get().AnalysisTotal.WithLabelValues(metrics.OutcomeProviderErr).Inc()
		return Fallback(err)
	}

	if state := fsm.MustState(); state != StateDone && state != StateFallback {
		logger.L.Error("analysis ended in unexpected state", "state", state)
		metrics.Get().AnalysisTotal.WithLabelValues(metrics.OutcomeProviderErr).Inc()
		return Fallback(nil)
	}

	metrics.Get().AnalysisTotal.WithLabelValues(fsmCtx.outcome).Inc()
	if fsmCtx.outcome == metrics.OutcomeOK {
		logger.L.Info("conversation analyzed", "tag", fsmCtx.result.Tag, "title", fsmCtx.result.Title)
	}
	return fsmCtx.result
}

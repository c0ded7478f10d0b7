package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/comigor/chatlogger-go/internal/analyzer"
	"github.com/comigor/chatlogger-go/internal/config"
	"github.com/comigor/chatlogger-go/internal/llm"
	"github.com/comigor/chatlogger-go/internal/logger"
	"github.com/comigor/chatlogger-go/internal/store"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "chatlogger",
	Short:         "Save, analyze and browse AI chat conversations",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
	// stdout carries command output and the MCP protocol
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetOutput(os.Stderr)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.L.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// app holds the components shared by the subcommands.
type app struct {
	cfg      *config.Config
	store    store.Store
	analyzer *analyzer.Analyzer
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(cfg.Log.Level)

	gen, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}
	s, err := store.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return &app{cfg: cfg, store: s, analyzer: analyzer.New(gen, cfg.LLM)}, nil
}

func (a *app) aiModel() string {
	return llm.DisplayName(a.cfg.LLM.Provider)
}

func (a *app) Close() {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.L.Warn("failed to close store", "error", err)
		}
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/comigor/chatlogger-go/internal/chatlog"
	"github.com/comigor/chatlogger-go/internal/logger"
	"github.com/comigor/chatlogger-go/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the chat logger tools over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		svc := chatlog.New(a.analyzer, a.store, a.cfg.Store.Dir, a.cfg.Project.DefaultName)
		s := mcpserver.New(mcpserver.NewHandlers(svc, a.cfg.Project.DefaultName), version)
		logger.L.Info("serving mcp over stdio", "provider", a.cfg.LLM.Provider, "store", a.cfg.Store.Driver)
		return mcpserver.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

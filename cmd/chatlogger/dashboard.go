package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/comigor/chatlogger-go/internal/aggregate"
	"github.com/comigor/chatlogger-go/internal/dashboard"
)

const shutdownTimeout = 10 * time.Second

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the project dashboard API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := dashboard.NewServer(aggregate.New(a.store, a.aiModel()), a.cfg.Server)
		errc := make(chan error, 1)
		go func() { errc <- srv.Start() }()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

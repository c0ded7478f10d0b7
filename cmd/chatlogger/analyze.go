package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/comigor/chatlogger-go/internal/record"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <messages.json|->",
	Short: "Analyze a conversation and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := readMessages(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return printJSON(cmd.OutOrStdout(), a.analyzer.Analyze(cmd.Context(), msgs))
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

// readMessages accepts either a bare message array or an object with a
// "messages" array, as sent to the save tool.
func readMessages(path string, stdin io.Reader) ([]record.Message, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}

	var msgs []record.Message
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Messages []record.Message `json:"messages"`
		}
		err = json.Unmarshal(trimmed, &wrapped)
		msgs = wrapped.Messages
	} else {
		err = json.Unmarshal(data, &msgs)
	}
	if err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	if len(msgs) == 0 {
		return nil, errors.New("no messages to analyze")
	}
	return msgs, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

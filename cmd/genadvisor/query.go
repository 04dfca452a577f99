package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Ask a natural-language question about the market",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	answer, err := a.pipeline.ProcessQuery(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Response)
	cmd.Println()
	cmd.Printf("Query type: %s\n", answer.QueryType)
	cmd.Printf("Confidence: %.0f%%\n", answer.Confidence*100)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}

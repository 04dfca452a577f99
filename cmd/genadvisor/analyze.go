package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <symbol>",
	Short: "Produce a buy/hold/sell recommendation for a stock",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	rec := a.advisor.AnalyzeStock(ctx, strings.ToUpper(args[0]))
	if !rec.Success {
		return fmt.Errorf("analysis failed for %s: %s", rec.Symbol, rec.Error)
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return printJSON(cmd, rec)
	}

	cmd.Printf("%s: %s\n", rec.Symbol, strings.ToUpper(strings.ReplaceAll(string(rec.Action), "_", " ")))
	cmd.Printf("  Score:       %+.2f\n", rec.Score)
	cmd.Printf("  Confidence:  %.0f%%\n", rec.Confidence*100)
	cmd.Printf("  Price:       ₹%.2f (target ₹%.2f, %s)\n", rec.CurrentPrice, rec.TargetPrice, rec.Horizon)
	cmd.Printf("  Technical:   %s (%+.2f)\n", rec.Technical.Signal, rec.Technical.Score)
	cmd.Printf("  Fundamental: %.2f\n", rec.Fundamental)
	cmd.Printf("  Sentiment:   %+.2f\n", rec.Sentiment)
	return nil
}

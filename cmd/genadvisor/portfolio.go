package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/parthkaria14/GenAdvisor/internal/advisor"
)

var portfolioFlags struct {
	budget   float64
	strategy string
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio <symbol> [symbol...]",
	Short: "Allocate a budget across a stock universe",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPortfolio,
}

func init() {
	portfolioCmd.Flags().Float64Var(&portfolioFlags.budget, "budget", 100000, "Budget in rupees")
	portfolioCmd.Flags().StringVar(&portfolioFlags.strategy, "strategy", "", "Allocation strategy (conservative|balanced|aggressive)")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	name := portfolioFlags.strategy
	if name == "" {
		name = a.cfg.Advisor.DefaultStrategy
	}
	strategy, err := advisor.ParseStrategy(name)
	if err != nil {
		return err
	}

	symbols := make([]string, len(args))
	for i, arg := range args {
		symbols[i] = strings.ToUpper(arg)
	}

	allocation, err := a.advisor.OptimizePortfolio(ctx, portfolioFlags.budget, strategy, symbols)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return printJSON(cmd, allocation)
	}

	cmd.Printf("Strategy: %s, budget ₹%s\n\n", allocation.Strategy, allocation.Budget.StringFixed(2))
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tWEIGHT\tSHARES\tAMOUNT\tBETA")
	for _, h := range allocation.Holdings {
		fmt.Fprintf(w, "%s\t%.1f%%\t%d\t₹%s\t%.2f\n",
			h.Symbol, h.Weight*100, h.Shares, h.Amount.StringFixed(2), h.Beta)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	cmd.Printf("\nInvested ₹%s, cash left ₹%s, portfolio beta %.2f\n",
		allocation.Invested.StringFixed(2), allocation.CashLeft.StringFixed(2), allocation.RiskScore)
	return nil
}

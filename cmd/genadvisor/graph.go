package main

import (
	"context"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect and rebuild the knowledge graph",
}

var graphBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the knowledge graph from the current feeds",
	RunE:  runGraphBuild,
}

var graphStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print node and edge counts by type",
	RunE:  runGraphStats,
}

func init() {
	graphCmd.AddCommand(graphBuildCmd)
	graphCmd.AddCommand(graphStatsCmd)
}

func runGraphBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if err := a.refresh(ctx); err != nil {
		return err
	}
	return printGraphStats(cmd, a)
}

func runGraphStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	return printGraphStats(cmd, a)
}

func printGraphStats(cmd *cobra.Command, a *app) error {
	stats := a.holder.Current().Stats()

	if globalFlags.GetOutputFormat() == FormatJSON {
		return printJSON(cmd, stats)
	}

	cmd.Printf("Nodes: %d, edges: %d\n", stats.Nodes, stats.Edges)
	for nodeType, count := range stats.NodesByType {
		cmd.Printf("  %-18s %d\n", nodeType, count)
	}
	for relation, count := range stats.EdgesByType {
		cmd.Printf("  %-18s %d\n", relation, count)
	}
	return nil
}

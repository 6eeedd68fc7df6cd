package cli

import (
	"fmt"
	"sort"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show run and AI token statistics",
	RunE:  runUsage,
}

func runUsage(cmd *cobra.Command, args []string) error {
	root, err := appRoot()
	if err != nil {
		return err
	}
	workspace := wiring.NewWorkspace(root)

	stats, err := workspace.Usage.GetUsage()
	if err != nil {
		return fmt.Errorf("failed to load usage stats: %w", err)
	}

	fmt.Println("Usage Metrics")
	fmt.Println("---------------")
	fmt.Printf("Total Runs:      %d\n", stats.TotalRuns)
	fmt.Printf("Posts Generated: %d\n", stats.PostsGenerated)
	if !stats.LastRunAt.IsZero() {
		fmt.Printf("Last Run:        %s\n", stats.LastRunAt.Format("2006-01-02 15:04:05"))
	}

	if len(stats.ProviderStats) > 0 {
		fmt.Println("\nAI Token Consumption")

		// Sort keys for stable output
		keys := make([]string, 0, len(stats.ProviderStats))
		for k := range stats.ProviderStats {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fmt.Printf("- %-30s: %d\n", k, stats.ProviderStats[k])
		}

		fmt.Printf("\nInput Tokens:  %d\n", stats.InputTokens)
		fmt.Printf("Output Tokens: %d\n", stats.OutputTokens)
		fmt.Printf("Total Tokens:  %d\n", stats.InputTokens+stats.OutputTokens)
	}

	if limit := workspace.Config.MaxTokensPerRun; limit > 0 {
		fmt.Println("\nBudget Status")
		fmt.Printf("Per-Run Token Limit: %d\n", limit)
	}

	return nil
}

func init() {
	RootCmd.AddCommand(usageCmd)
}

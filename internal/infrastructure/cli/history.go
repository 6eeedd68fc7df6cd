package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/wiring"
	"github.com/runwhen-contrib/ccblogger/pkg/domain"
	"github.com/spf13/cobra"
)

var (
	historySince  string
	historyVerify bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show and verify the audit trail of fetch and generation activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := appRoot()
		if err != nil {
			return err
		}
		workspace := wiring.NewWorkspace(root)
		service := workspace.Audit

		if historyVerify {
			fmt.Println("Verifying audit trail integrity...")
			violations, err := service.VerifyIntegrity()
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}
			if len(violations) == 0 {
				fmt.Println("Audit trail is intact and verified.")
				return nil
			}
			fmt.Printf("Found %d integrity violations:\n", len(violations))
			for _, v := range violations {
				fmt.Printf("  - %s\n", v)
			}
			os.Exit(1)
		}

		var timeline []domain.Event
		if historySince != "" {
			since, err := parseSince(historySince)
			if err != nil {
				return err
			}
			timeline, err = service.TimelineSince(since)
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
		} else {
			var err error
			timeline, err = service.GetTimeline()
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
		}

		fmt.Println("Generation History")
		fmt.Println("--------------------")
		for i := len(timeline) - 1; i >= 0; i-- {
			e := timeline[i]
			ts := e.Timestamp.Format(time.RFC822)
			fmt.Printf("[%s] %-10s | %-15s", ts, e.Actor, e.Action)
			if len(e.Metadata) > 0 {
				fmt.Printf(" (%v)", e.Metadata)
			}
			fmt.Println()
		}

		if velocity, err := service.GetVelocity(); err == nil && velocity > 0 {
			fmt.Printf("\nVelocity: %.2f posts/day\n", velocity)
		}
		return nil
	},
}

// parseSince accepts a duration such as "24h" or a date such as "2026-01-02".
func parseSince(s string) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(-d), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q (want a duration like 24h or a date like 2026-01-02)", s)
}

func init() {
	historyCmd.Flags().StringVar(&historySince, "since", "", "Only show events after this duration or date")
	historyCmd.Flags().BoolVar(&historyVerify, "verify", false, "Verify the hash chain instead of listing events")
	RootCmd.AddCommand(historyCmd)
}

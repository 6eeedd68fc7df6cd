package cli

import (
	"fmt"
	"path/filepath"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/wiring"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the cached task sets",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached task sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := appRoot()
		if err != nil {
			return err
		}
		workspace := wiring.NewWorkspace(root)

		entries, err := workspace.Repo.CacheEntries()
		if err != nil {
			return fmt.Errorf("failed to read cache: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("Cache is empty.")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("- %s  %d tasks  %s  %s\n",
				e.Key, e.TaskCount, formatBytes(e.SizeBytes), e.ModifiedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show a summary of the task cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := appRoot()
		if err != nil {
			return err
		}
		workspace := wiring.NewWorkspace(root)

		entries, err := workspace.Repo.CacheEntries()
		if err != nil {
			return fmt.Errorf("failed to read cache: %w", err)
		}

		totalTasks := 0
		var totalSize int64
		for _, e := range entries {
			totalTasks += e.TaskCount
			totalSize += e.SizeBytes
		}

		fmt.Println("Cache Info")
		fmt.Println("------------")
		fmt.Printf("Location: %s\n", filepath.Join(workspace.Repo.AppDir(), storage.CacheDirName))
		fmt.Printf("Entries:  %d\n", len(entries))
		fmt.Printf("Tasks:    %d\n", totalTasks)
		fmt.Printf("Size:     %s\n", formatBytes(totalSize))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached task set",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := appRoot()
		if err != nil {
			return err
		}
		workspace := wiring.NewWorkspace(root)

		if err := workspace.Repo.ClearCache(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Println("Cache cleared.")
		return nil
	},
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTP"[exp])
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	RootCmd.AddCommand(cacheCmd)
}

package cli

import (
	"fmt"

	"github.com/runwhen-contrib/ccblogger/pkg/application"
	"github.com/spf13/cobra"
)

var (
	fetchRepoURL string
	fetchNoCache bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a CodeCollection repository and cache its tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := appRoot()
		if err != nil {
			return err
		}
		services, err := loadServices(root)
		if err != nil {
			return err
		}
		if err := services.Workspace.Repo.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize application directory: %w", err)
		}

		fmt.Printf("Fetching tasks from %s...\n", fetchRepoURL)
		tasks, err := services.Fetch.GetAllTasks(cmd.Context(), fetchRepoURL, !fetchNoCache)
		if err != nil {
			return fmt.Errorf("failed to fetch tasks: %w", err)
		}

		fmt.Printf("Found %d tasks\n", len(tasks))
		fmt.Printf("Cached under key %s\n", application.CacheKey(fetchRepoURL))
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchRepoURL, "repo-url", DefaultRepoURL, "CodeCollection repository to fetch")
	fetchCmd.Flags().BoolVar(&fetchNoCache, "no-cache", false, "Bypass the task cache and re-clone the repository")
	RootCmd.AddCommand(fetchCmd)
}

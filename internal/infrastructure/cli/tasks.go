package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
	"github.com/spf13/cobra"
)

var (
	tasksRepoURL   string
	tasksTagFilter string
	tasksBundle    string
	tasksNoCache   bool
	tasksJSON      bool
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the tasks extracted from a CodeCollection repository",
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

		var tasks []collection.Task
		if tasksBundle != "" {
			tasks, err = services.Fetch.GetBundleTasks(cmd.Context(), tasksRepoURL, tasksBundle, !tasksNoCache)
		} else {
			tasks, err = services.Fetch.GetAllTasks(cmd.Context(), tasksRepoURL, !tasksNoCache)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch tasks: %w", err)
		}
		if tasksTagFilter != "" {
			tasks = collection.FilterByTag(tasks, tasksTagFilter)
		}

		if tasksJSON {
			out, err := json.MarshalIndent(tasks, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal tasks: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("Tasks in %s\n", tasksRepoURL)
		fmt.Println("----------------------------------------")
		for _, t := range tasks {
			fmt.Printf("- %s\n", t.Name)
			if t.Bundle != "" {
				fmt.Printf("    bundle: %s\n", t.Bundle)
			}
			if len(t.Tags) > 0 {
				fmt.Printf("    tags:   %s\n", strings.Join(t.Tags, ", "))
			}
		}
		fmt.Printf("\n%d tasks\n", len(tasks))
		return nil
	},
}

func init() {
	tasksCmd.Flags().StringVar(&tasksRepoURL, "repo-url", DefaultRepoURL, "CodeCollection repository to list tasks from")
	tasksCmd.Flags().StringVar(&tasksTagFilter, "tag-filter", "", "Only list tasks carrying this tag")
	tasksCmd.Flags().StringVar(&tasksBundle, "bundle", "", "Only list tasks from this codebundle")
	tasksCmd.Flags().BoolVar(&tasksNoCache, "no-cache", false, "Bypass the task cache and re-clone the repository")
	tasksCmd.Flags().BoolVar(&tasksJSON, "json", false, "Print tasks as JSON")
	RootCmd.AddCommand(tasksCmd)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/wiring"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/events"
	"github.com/spf13/cobra"
)

// DefaultRepoURL is the code collection generate works on when --repo-url is
// not given.
const DefaultRepoURL = "https://github.com/runwhen-contrib/rw-cli-codecollection"

var (
	genRepoURL   string
	genOutputDir string
	genLimit     int
	genTagFilter string
	genNoCache   bool
	genProvider  string
	genModel     string
	genDryRun    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate blog posts from a CodeCollection repository",
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	root, err := appRoot()
	if err != nil {
		return err
	}
	services, err := loadServicesWithProvider(root, genProvider, genModel)
	if err != nil {
		return err
	}
	if err := services.Workspace.Repo.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize application directory: %w", err)
	}

	ctx := cmd.Context()

	fmt.Printf("Fetching tasks from %s...\n", genRepoURL)
	tasks, err := services.Fetch.GetAllTasks(ctx, genRepoURL, !genNoCache)
	if err != nil {
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}
	fmt.Printf("Found %d tasks\n", len(tasks))

	if genTagFilter != "" {
		tasks = collection.FilterByTag(tasks, genTagFilter)
		fmt.Printf("Filtered to %d tasks with tag '%s'\n", len(tasks), genTagFilter)
	}
	if genLimit >= 0 && len(tasks) > genLimit {
		tasks = collection.Limit(tasks, genLimit)
		fmt.Printf("Limited to %d tasks\n", len(tasks))
	}

	if genDryRun {
		fmt.Println("\nDry run: no posts will be written. Would generate:")
		for _, t := range tasks {
			fmt.Printf("  - %s (%s.md)\n", t.Name, t.Slug())
		}
		return nil
	}

	_ = services.Publisher.Publish(events.RunStarted(genRepoURL, genOutputDir))

	fmt.Printf("Generating blog posts in %s...\n", genOutputDir)
	paths, genErr := services.Blog.GeneratePosts(ctx, tasks, genOutputDir)

	fmt.Printf("Created %d blog posts in %s\n", len(paths), genOutputDir)
	if len(paths) > 0 {
		fmt.Println("\nGenerated blog posts:")
		for _, p := range paths {
			fmt.Printf("  - %s\n", p)
		}
	}

	if genErr != nil {
		return genErr
	}

	_ = services.Publisher.Publish(events.RunCompleted(genRepoURL, genOutputDir, len(paths)))
	notifyRunCompleted(services, genRepoURL, genOutputDir, len(paths))

	return nil
}

// notifyRunCompleted fires the configured notification channels. Failures are
// warnings, not errors; the posts are already on disk.
func notifyRunCompleted(services *wiring.AppServices, repoURL, outputDir string, posts int) {
	ws := services.Workspace

	if ws.Notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := ws.Notifier.NotifyRunCompleted(ctx, repoURL, outputDir, posts); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: webhook notification failed: %v\n", err)
		}
		cancel()
	}

	if ws.Slack != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := ws.Slack.NotifyRunCompleted(ctx, repoURL, outputDir, posts); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: slack notification failed: %v\n", err)
		}
		cancel()
	}
}

func init() {
	generateCmd.Flags().StringVar(&genRepoURL, "repo-url", DefaultRepoURL, "CodeCollection repository to generate from")
	generateCmd.Flags().StringVar(&genOutputDir, "output-dir", "blog_posts", "Directory the posts are written to")
	generateCmd.Flags().IntVar(&genLimit, "limit", 5, "Maximum number of posts to generate (0 generates none, negative means no limit)")
	generateCmd.Flags().StringVar(&genTagFilter, "tag-filter", "", "Only generate posts for tasks carrying this tag")
	generateCmd.Flags().BoolVar(&genNoCache, "no-cache", false, "Bypass the task cache and re-clone the repository")
	generateCmd.Flags().StringVar(&genProvider, "provider", "", "AI provider to use (openai, anthropic, gemini, ollama, mock)")
	generateCmd.Flags().StringVar(&genModel, "model", "", "Model name to use with the provider")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Extract and plan only; no AI calls, no files written")
	RootCmd.AddCommand(generateCmd)
}

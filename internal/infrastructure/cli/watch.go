package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/watch"
	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/wiring"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
	"github.com/spf13/cobra"
)

var (
	watchPath      string
	watchOutputDir string
	watchLimit     int
	watchTagFilter string
	watchDryRun    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a local CodeCollection tree and regenerate posts on change",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	abs, err := filepath.Abs(watchPath)
	if err != nil {
		return fmt.Errorf("invalid watch path %q: %w", watchPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch path %q: %w", abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch path %q is not a directory", abs)
	}

	ctx := cmd.Context()

	// Serialize regenerations; debounced events can still arrive while a
	// previous run is writing posts.
	var mu sync.Mutex
	onChange := func(ev watch.ChangeEvent) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("Change detected: %s (%s)\n", ev.Path, ev.ChangeType)
		if err := regenerateBundle(ctx, services, abs, ev.Path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: regeneration failed: %v\n", err)
		}
	}

	watcher, err := watch.NewFSWatcher(watch.Config{
		Debounce: 500 * time.Millisecond,
		Include:  []string{"*.robot", "*.sh"},
	}, onChange)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.WatchRecursive(abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}

	fmt.Printf("Watching %s for changes (Ctrl-C to stop)...\n", abs)
	return watcher.Run(ctx)
}

// regenerateBundle re-extracts the local tree and regenerates the posts of
// the bundle the changed file belongs to. A change outside codebundles/
// regenerates nothing.
func regenerateBundle(ctx context.Context, services *wiring.AppServices, root, changed string) error {
	bundle := bundleForPath(root, changed)
	if bundle == "" {
		fmt.Println("Change is outside codebundles/, nothing to regenerate.")
		return nil
	}

	supportingBase := filepath.ToSlash(filepath.Join(root, "codebundles"))
	tasks, err := services.Extract.ExtractTasks(root, supportingBase)
	if err != nil {
		return err
	}

	var scoped []collection.Task
	for _, t := range tasks {
		if t.Bundle == bundle {
			scoped = append(scoped, t)
		}
	}
	if watchTagFilter != "" {
		scoped = collection.FilterByTag(scoped, watchTagFilter)
	}
	if watchLimit >= 0 && len(scoped) > watchLimit {
		scoped = collection.Limit(scoped, watchLimit)
	}

	if len(scoped) == 0 {
		fmt.Printf("No tasks to regenerate for bundle %s.\n", bundle)
		return nil
	}

	if watchDryRun {
		fmt.Printf("Dry run: would regenerate %d posts for bundle %s:\n", len(scoped), bundle)
		for _, t := range scoped {
			fmt.Printf("  - %s.md\n", t.Slug())
		}
		return nil
	}

	fmt.Printf("Regenerating %d posts for bundle %s in %s...\n", len(scoped), bundle, watchOutputDir)
	paths, err := services.Blog.GeneratePosts(ctx, scoped, watchOutputDir)
	for _, p := range paths {
		fmt.Printf("  - %s\n", p)
	}
	return err
}

// bundleForPath maps a changed file to its codebundle name, or "" when the
// file sits outside codebundles/<bundle>/.
func bundleForPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i := 0; i < len(parts)-2; i++ {
		if parts[i] == "codebundles" {
			return parts[i+1]
		}
	}
	// The watch path may itself be the codebundles directory.
	if filepath.Base(root) == "codebundles" && len(parts) >= 2 {
		return parts[0]
	}
	return ""
}

func init() {
	watchCmd.Flags().StringVar(&watchPath, "path", ".", "Local CodeCollection working tree to watch")
	watchCmd.Flags().StringVar(&watchOutputDir, "output-dir", "blog_posts", "Directory the posts are written to")
	watchCmd.Flags().IntVar(&watchLimit, "limit", 5, "Maximum number of posts per regeneration (0 regenerates none, negative means no limit)")
	watchCmd.Flags().StringVar(&watchTagFilter, "tag-filter", "", "Only regenerate posts for tasks carrying this tag")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "Plan only; no AI calls, no files written")
	RootCmd.AddCommand(watchCmd)
}

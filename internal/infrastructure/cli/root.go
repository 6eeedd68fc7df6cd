package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "ccblogger",
	Version: Version,
	Short:   "Generate blog posts from RunWhen CodeCollection repositories",
	Long: `ccblogger turns the troubleshooting tasks in a RunWhen CodeCollection
repository into technical blog posts. It clones the repository, extracts the
tasks from each codebundle's runbook.robot, and asks an AI provider to write
a post for every task.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
// Ctrl-C cancels the command context so long-running commands such as watch
// and preview shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RootCmd.ExecuteContext(ctx)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/github"
	"github.com/runwhen-contrib/ccblogger/pkg/infrastructure/preview"
	"github.com/spf13/cobra"
)

var (
	previewAddr      string
	previewOutputDir string
	previewRepoURL   string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve generated posts over HTTP for local review",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := appRoot()
		if err != nil {
			return err
		}
		services, err := loadServices(root)
		if err != nil {
			return err
		}

		server, err := preview.NewServer(previewAddr, previewOutputDir, services.Publisher)
		if err != nil {
			return err
		}

		if previewRepoURL != "" {
			describeCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			info, err := github.NewClient(describeCtx).Describe(describeCtx, previewRepoURL)
			cancel()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not fetch repository description: %v\n", err)
			} else if info.Description != "" {
				server.SetDescription(fmt.Sprintf("%s/%s: %s", info.Owner, info.Name, info.Description))
			}
		}

		fmt.Printf("Previewing %s on %s (Ctrl-C to stop)\n", previewOutputDir, previewAddr)

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		select {
		case <-cmd.Context().Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewAddr, "addr", ":8787", "Address to serve the preview on")
	previewCmd.Flags().StringVar(&previewOutputDir, "output-dir", "blog_posts", "Directory holding the generated posts")
	previewCmd.Flags().StringVar(&previewRepoURL, "repo-url", "", "Show this repository's GitHub description as collection context")
	RootCmd.AddCommand(previewCmd)
}

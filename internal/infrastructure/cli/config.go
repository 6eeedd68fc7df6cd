package cli

import (
	"fmt"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/config"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ccblogger configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := appRoot()
		if err != nil {
			return err
		}
		cfg, err := config.Load(root)
		if err != nil {
			return err
		}

		fmt.Println("Configuration")
		fmt.Println("---------------")
		fmt.Printf("provider:            %s\n", cfg.Provider)
		fmt.Printf("model:               %s\n", cfg.Model)
		fmt.Printf("temperature:         %.1f\n", cfg.Temperature)
		fmt.Printf("max_retries:         %d\n", cfg.MaxRetries)
		fmt.Printf("timeout_seconds:     %d\n", cfg.TimeoutSeconds)
		fmt.Printf("max_tokens_per_run:  %d\n", cfg.MaxTokensPerRun)
		fmt.Println("notifications:")
		fmt.Printf("  slack_webhook_url: %s\n", redactedState(cfg.Notifications.SlackWebhookURL))
		fmt.Printf("  webhook_url:       %s\n", redactedState(cfg.Notifications.WebhookURL))
		fmt.Printf("  webhook_secret:    %s\n", redactedState(cfg.Notifications.WebhookSecret))
		return nil
	},
}

// redactedState reports whether a secret-bearing value is configured without
// echoing it.
func redactedState(value string) string {
	if value == "" {
		return "(not set)"
	}
	return "(set)"
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := appRoot()
		if err != nil {
			return err
		}
		if err := storage.NewFilesystemStore(root).Initialize(); err != nil {
			return fmt.Errorf("failed to initialize application directory: %w", err)
		}

		cfg, err := config.Load(root)
		if err != nil {
			return err
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(root, cfg); err != nil {
			return err
		}

		fmt.Printf("Set %s\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	RootCmd.AddCommand(configCmd)
}

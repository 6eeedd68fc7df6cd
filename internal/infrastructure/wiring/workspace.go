package wiring

import (
	"path/filepath"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/config"
	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/messaging"
	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/webhook"
	"github.com/runwhen-contrib/ccblogger/pkg/application"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Repo     *storage.FilesystemStore
	Config   *config.Config
	Audit    *application.AuditService
	Usage    *application.UsageService
	Notifier *webhook.Notifier        // nil unless a webhook URL is configured
	Slack    *messaging.SlackNotifier // nil unless a Slack URL is configured
}

func NewWorkspace(root string) *Workspace {
	repo := storage.NewFilesystemStore(root)

	cfg, err := config.Load(root)
	if err != nil {
		cfg = config.Default()
	}

	var notifier *webhook.Notifier
	if cfg.Notifications.WebhookURL != "" {
		dlPath := filepath.Join(repo.AppDir(), storage.DeadLetterFile)
		dlStore := webhook.NewDeadLetterStore(dlPath)
		notifier = webhook.NewNotifier(cfg.Notifications.WebhookURL, cfg.Notifications.WebhookSecret, dlStore)
	}

	var slack *messaging.SlackNotifier
	if cfg.Notifications.SlackWebhookURL != "" {
		slack = messaging.NewSlackNotifier(cfg.Notifications.SlackWebhookURL)
	}

	return &Workspace{
		Repo:     repo,
		Config:   cfg,
		Audit:    application.NewAuditService(repo),
		Usage:    application.NewUsageService(repo),
		Notifier: notifier,
		Slack:    slack,
	}
}

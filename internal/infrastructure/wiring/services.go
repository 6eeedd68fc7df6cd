package wiring

import (
	"context"
	"fmt"

	aifactory "github.com/runwhen-contrib/ccblogger/internal/infrastructure/ai"
	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/github"
	infraai "github.com/runwhen-contrib/ccblogger/pkg/ai"
	"github.com/runwhen-contrib/ccblogger/pkg/application"
	domainai "github.com/runwhen-contrib/ccblogger/pkg/domain/ai"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
)

// AppServices exposes the application layer services wired together with a
// workspace.
type AppServices struct {
	Workspace *Workspace
	Fetch     *application.FetchService
	Extract   *application.ExtractService
	Blog      *application.BlogService
	Audit     *application.AuditService
	Usage     *application.UsageService
	Publisher *storage.InMemoryEventPublisher
	Provider  domainai.Provider
}

// BuildAppServices constructs the service graph for a repo root. A config
// problem falls back to the default provider and is reported as a non-fatal
// error alongside the usable services.
func BuildAppServices(root string) (*AppServices, error) {
	return BuildAppServicesWithProvider(root, LoadAIProvider)
}

// BuildAppServicesWithProvider allows callers to supply a custom AI provider
// resolver.
func BuildAppServicesWithProvider(root string, resolver func(string) (domainai.Provider, error)) (*AppServices, error) {
	workspace := NewWorkspace(root)
	publisher := storage.NewInMemoryEventPublisher()

	provider, err := resolver(root)
	var loadErr error
	if err != nil {
		loadErr = fmt.Errorf("AI provider config fallback: %w", err)
		fallback, fallbackErr := aifactory.GetDefaultProvider("", "")
		if fallbackErr != nil {
			return nil, fmt.Errorf("fallback AI provider failed: %w", fallbackErr)
		}
		provider = infraai.NewResilientProvider(fallback)
	}

	extractSvc := application.NewExtractService()
	branches := github.NewClient(context.Background())
	fetchSvc := application.NewFetchService(workspace.Repo, extractSvc, branches, workspace.Audit, publisher)

	blogCfg := application.DefaultBlogServiceConfig()
	if workspace.Config.Temperature > 0 {
		blogCfg.Temperature = workspace.Config.Temperature
	}
	blogCfg.MaxTokensPerRun = workspace.Config.MaxTokensPerRun
	blogSvc := application.NewBlogService(workspace.Repo, provider, workspace.Audit, workspace.Usage, publisher, blogCfg)

	services := &AppServices{
		Workspace: workspace,
		Fetch:     fetchSvc,
		Extract:   extractSvc,
		Blog:      blogSvc,
		Audit:     workspace.Audit,
		Usage:     workspace.Usage,
		Publisher: publisher,
		Provider:  provider,
	}

	return services, loadErr
}

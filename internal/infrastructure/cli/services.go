package cli

import (
	"fmt"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/wiring"
	domainai "github.com/runwhen-contrib/ccblogger/pkg/domain/ai"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
)

func appRoot() (string, error) {
	root, err := storage.DefaultRoot()
	if err != nil {
		return "", fmt.Errorf("resolve application root: %w", err)
	}
	return root, nil
}

func loadServices(root string) (*wiring.AppServices, error) {
	services, loadErr := wiring.BuildAppServices(root)
	if services == nil {
		return nil, fmt.Errorf("failed to build services: %w", loadErr)
	}
	if loadErr != nil {
		fmt.Printf("Warning: %v\n", loadErr)
	}
	return services, nil
}

// loadServicesWithProvider builds the service graph with explicit provider
// and model names. Unlike the config path, a provider the flags name but the
// factory rejects is a hard error.
func loadServicesWithProvider(root, providerName, modelName string) (*wiring.AppServices, error) {
	if providerName == "" && modelName == "" {
		return loadServices(root)
	}

	provider, err := wiring.LoadAIProviderWithOverrides(root, providerName, modelName)
	if err != nil {
		return nil, err
	}
	services, loadErr := wiring.BuildAppServicesWithProvider(root, func(string) (domainai.Provider, error) {
		return provider, nil
	})
	if services == nil {
		return nil, fmt.Errorf("failed to build services: %w", loadErr)
	}
	return services, nil
}

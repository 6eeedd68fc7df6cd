package wiring

import (
	"time"

	aifactory "github.com/runwhen-contrib/ccblogger/internal/infrastructure/ai"
	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/config"
	infraai "github.com/runwhen-contrib/ccblogger/pkg/ai"
	domainai "github.com/runwhen-contrib/ccblogger/pkg/domain/ai"
)

func LoadAIProvider(root string) (domainai.Provider, error) {
	return LoadAIProviderWithOverrides(root, "", "")
}

// LoadAIProviderWithOverrides builds the configured provider. Non-empty
// providerName and modelName take precedence over both the environment
// variables and the config file; empty overrides fall back to the usual
// resolution order.
func LoadAIProviderWithOverrides(root, providerName, modelName string) (domainai.Provider, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	resilienceConfig := infraai.DefaultResilienceConfig()
	if cfg.MaxRetries > 0 {
		resilienceConfig.MaxRetries = cfg.MaxRetries
	}
	if cfg.TimeoutSeconds > 0 {
		resilienceConfig.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	var baseProvider domainai.Provider
	if providerName != "" || modelName != "" {
		if providerName == "" {
			providerName = cfg.Provider
		}
		if modelName == "" {
			modelName = cfg.Model
		}
		baseProvider, err = aifactory.NewProvider(providerName, modelName)
	} else {
		baseProvider, err = aifactory.GetDefaultProvider(cfg.Provider, cfg.Model)
	}
	if err != nil {
		return nil, err
	}

	return infraai.NewResilientProviderWithConfig(baseProvider, resilienceConfig), nil
}

package ai

import (
	"fmt"
	"os"

	infraai "github.com/runwhen-contrib/ccblogger/pkg/ai"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/ai"
)

func NewProvider(providerName string, modelName string) (ai.Provider, error) {
	switch providerName {
	case "openai", "":
		apiKey := os.Getenv("OPENAI_API_KEY")
		return infraai.NewOpenAIProvider(modelName, apiKey), nil
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		return infraai.NewAnthropicProvider(modelName, apiKey), nil
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		return infraai.NewGeminiProvider(modelName, apiKey), nil
	case "ollama":
		return infraai.NewOllamaProvider(modelName), nil
	case "mock":
		return &infraai.MockProvider{Model: modelName}, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// GetDefaultProvider returns a provider based on environment variables or the
// given defaults. CCBLOGGER_AI_PROVIDER and CCBLOGGER_AI_MODEL take precedence.
func GetDefaultProvider(providerName, modelName string) (ai.Provider, error) {
	envProvider := os.Getenv("CCBLOGGER_AI_PROVIDER")
	envModel := os.Getenv("CCBLOGGER_AI_MODEL")

	if envProvider != "" {
		providerName = envProvider
	}
	if envModel != "" {
		modelName = envModel
	}

	return NewProvider(providerName, modelName)
}

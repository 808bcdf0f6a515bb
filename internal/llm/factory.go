package llm

import (
	"fmt"
	"strings"
	"time"
)

// Provider names accepted by NewProviderFromConfig
const (
	ProviderOllama  = "ollama"
	ProviderBedrock = "bedrock"
)

// NewProviderFromConfig creates a Provider from config fields
func NewProviderFromConfig(provider, endpoint, model, region string, timeout time.Duration) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOllama:
		if strings.TrimSpace(model) == "" {
			return nil, fmt.Errorf("ollama model is required")
		}
		return NewOllama(endpoint, model, timeout), nil
	case ProviderBedrock:
		client, err := NewBedrock(region, model, timeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}

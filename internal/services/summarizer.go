package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/eren-998/Email-assistant/internal/agent"
	"github.com/eren-998/Email-assistant/internal/llm"
)

// AgentSummarizer sends summary prompts to the remote agent endpoint
type AgentSummarizer struct {
	backend CommandBackend
}

// NewAgentSummarizer creates a summarizer over the agent endpoint
func NewAgentSummarizer(backend CommandBackend) *AgentSummarizer {
	return &AgentSummarizer{backend: backend}
}

func (a *AgentSummarizer) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	if a.backend == nil {
		return "", fmt.Errorf("agent backend not available")
	}
	resp, err := a.backend.Command(ctx, agent.CommandRequest{
		Command:   req.Prompt,
		Model:     req.Model,
		GeminiKey: req.APIKey,
	})
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", &ServerError{Message: resp.Message}
	}
	return resp.Message, nil
}

// ProviderSummarizer runs summary prompts on a local LLM provider. When a
// template is set, {{body}} in it is replaced with the prompt.
type ProviderSummarizer struct {
	provider llm.Provider
	template string
}

// NewProviderSummarizer creates a summarizer over an llm.Provider
func NewProviderSummarizer(provider llm.Provider, template string) *ProviderSummarizer {
	return &ProviderSummarizer{provider: provider, template: template}
}

func (p *ProviderSummarizer) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	if p.provider == nil {
		return "", fmt.Errorf("AI provider not available")
	}
	prompt := req.Prompt
	if strings.Contains(p.template, "{{body}}") {
		prompt = strings.ReplaceAll(p.template, "{{body}}", req.Prompt)
	}
	out, err := p.provider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", p.provider.Name(), err)
	}
	return out, nil
}

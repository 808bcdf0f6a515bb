package services

import (
	"context"
	"errors"
	"testing"

	"github.com/eren-998/Email-assistant/internal/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLLMProvider implements llm.Provider for testing
type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockLLMProvider) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestAgentSummarizer(t *testing.T) {
	req := SummaryRequest{EmailID: "1", Prompt: "p", Model: "gemini-1.5-pro", APIKey: "k"}
	want := agent.CommandRequest{Command: "p", Model: "gemini-1.5-pro", GeminiKey: "k"}

	t.Run("ok", func(t *testing.T) {
		backend := &MockBackend{}
		backend.On("Command", mock.Anything, want).
			Return(&agent.CommandResponse{Type: agent.ResponseTypeOK, Message: "summary"}, nil).Once()

		out, err := NewAgentSummarizer(backend).Summarize(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "summary", out)
		backend.AssertExpectations(t)
	})

	t.Run("server_error", func(t *testing.T) {
		backend := &MockBackend{}
		backend.On("Command", mock.Anything, want).
			Return(&agent.CommandResponse{Type: agent.ResponseTypeError, Message: "bad key"}, nil).Once()

		_, err := NewAgentSummarizer(backend).Summarize(context.Background(), req)
		assert.True(t, IsServerError(err))
	})

	t.Run("nil_backend", func(t *testing.T) {
		_, err := NewAgentSummarizer(nil).Summarize(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestProviderSummarizer(t *testing.T) {
	t.Run("plain_prompt", func(t *testing.T) {
		provider := &MockLLMProvider{}
		provider.On("Generate", mock.Anything, "p").Return("out", nil).Once()

		out, err := NewProviderSummarizer(provider, "").Summarize(context.Background(), SummaryRequest{Prompt: "p"})
		require.NoError(t, err)
		assert.Equal(t, "out", out)
	})

	t.Run("template", func(t *testing.T) {
		provider := &MockLLMProvider{}
		provider.On("Generate", mock.Anything, "Answer in Spanish.\n\np").Return("salida", nil).Once()

		s := NewProviderSummarizer(provider, "Answer in Spanish.\n\n{{body}}")
		out, err := s.Summarize(context.Background(), SummaryRequest{Prompt: "p"})
		require.NoError(t, err)
		assert.Equal(t, "salida", out)
	})

	t.Run("error_names_provider", func(t *testing.T) {
		provider := &MockLLMProvider{}
		provider.On("Name").Return("ollama")
		provider.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("down")).Once()

		_, err := NewProviderSummarizer(provider, "").Summarize(context.Background(), SummaryRequest{Prompt: "p"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ollama generate")
	})

	t.Run("nil_provider", func(t *testing.T) {
		_, err := NewProviderSummarizer(nil, "").Summarize(context.Background(), SummaryRequest{})
		assert.Error(t, err)
	})
}

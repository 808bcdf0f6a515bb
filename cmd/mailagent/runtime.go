package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/eren-998/Email-assistant/internal/agent"
	"github.com/eren-998/Email-assistant/internal/config"
	"github.com/eren-998/Email-assistant/internal/db"
	"github.com/eren-998/Email-assistant/internal/llm"
	"github.com/eren-998/Email-assistant/internal/services"
	"github.com/eren-998/Email-assistant/internal/tui"
)

// runtime holds everything a command needs: configuration, logger, local
// store and the assembled panel services
type runtime struct {
	cfg     *config.Config
	logger  *log.Logger
	panel   *services.Panel
	closers []io.Closer
}

// setup loads configuration and wires the panel over the backend client and
// the local sqlite store
func setup(ctx context.Context, opts *rootOptions) (*runtime, error) {
	cfg, err := config.LoadConfig(config.ResolveConfigPath(opts.configPath))
	if err != nil {
		log.Printf("Warning: could not load configuration: %v", err)
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv()
	if opts.backendURL != "" {
		cfg.Backend.URL = opts.backendURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rt := &runtime{cfg: cfg}

	logger, logFile, err := tui.NewFileLogger(cfg.GetLogFile())
	if err != nil {
		// Logging is best effort
		logger = log.New(io.Discard, "", 0)
	} else {
		rt.closers = append(rt.closers, logFile)
	}
	rt.logger = logger

	store, err := db.Open(ctx, cfg.GetStorePath())
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.closers = append(rt.closers, store)

	client, err := agent.NewClient(cfg.Backend.URL, cfg.GetBackendTimeout())
	if err != nil {
		rt.Close()
		return nil, err
	}

	summarizer, err := newSummarizer(cfg, client)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.panel = services.NewPanel(client, db.NewKVStore(store), services.Options{
		Logger:     logger,
		Summarizer: summarizer,
		Insights:   db.NewInsightStore(store),
	})
	logger.Printf("startup: backend=%s store=%s summaries=%s", cfg.Backend.URL, cfg.GetStorePath(), cfg.LLM.SummaryProvider)
	return rt, nil
}

// newSummarizer picks where insights are generated. The agent endpoint is
// the default; ollama and bedrock run on a local or AWS model instead.
func newSummarizer(cfg *config.Config, client *agent.Client) (services.Summarizer, error) {
	switch cfg.LLM.SummaryProvider {
	case "", config.SummaryProviderAgent:
		return services.NewAgentSummarizer(client), nil
	default:
		provider, err := llm.NewProviderFromConfig(cfg.LLM.SummaryProvider, cfg.LLM.Endpoint, cfg.LLM.Model, cfg.LLM.Region, cfg.GetLLMTimeout())
		if err != nil {
			return nil, fmt.Errorf("summary provider: %w", err)
		}
		return services.NewProviderSummarizer(provider, cfg.LLM.GetSummarizePrompt()), nil
	}
}

// load restores persisted settings and the conversation without touching
// the network
func (rt *runtime) load(ctx context.Context) error {
	_, history, err := rt.panel.Settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	rt.panel.Conversation.Restore(history)
	return nil
}

// Close releases the store and the log file
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i].Close()
	}
	rt.closers = nil
}

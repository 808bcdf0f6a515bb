package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Environment variables read at startup
const (
	EnvConfigPath = "MAILAGENT_CONFIG"
	EnvBackendURL = "MAILAGENT_BACKEND"
	EnvPassword   = "MAILAGENT_PASSWORD"
)

// Summary providers
const (
	SummaryProviderAgent   = "agent"
	SummaryProviderOllama  = "ollama"
	SummaryProviderBedrock = "bedrock"
)

const appDirName = "mailagent"

// BackendConfig points the client at the agent backend
type BackendConfig struct {
	URL     string `json:"url"`
	Timeout string `json:"timeout"`
}

// LLMConfig configures where email insights are generated
type LLMConfig struct {
	// agent (remote agent endpoint), ollama or bedrock
	SummaryProvider string `json:"summary_provider"`
	Model           string `json:"model"`
	Endpoint        string `json:"endpoint"`
	Region          string `json:"region"` // For AWS Bedrock
	Timeout         string `json:"timeout"`

	// Template file path (relative to config dir or absolute)
	SummarizeTemplate string `json:"summarize_template"`
	// Inline prompt override (optional - takes precedence over the default)
	SummarizePrompt string `json:"summarize_prompt,omitempty"`
}

// Config holds all configuration for mailagent
type Config struct {
	Backend BackendConfig `json:"backend"`

	// Local state database
	StorePath string `json:"store_path"`

	// Custom themes directory (empty = default)
	ThemeDir string `json:"theme_dir"`

	// Logging
	LogFile string `json:"log_file"`

	LLM LLMConfig `json:"llm"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: DefaultBackendConfig(),
		LLM:     DefaultLLMConfig(),
	}
}

// DefaultBackendConfig returns the local development backend
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{
		URL:     "http://localhost:8000",
		Timeout: "60s",
	}
}

// DefaultLLMConfig returns default LLM configuration
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		SummaryProvider: SummaryProviderAgent,
		Model:           "llama3.2:latest",
		Endpoint:        "http://localhost:11434/api/generate",
		Timeout:         "20s",
	}
}

// LoadConfig loads configuration from a JSON file. A missing file yields the
// defaults; a file that is not valid JSON is an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(ExpandPath(configPath))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ResolveConfigPath picks the config file: flag value, then MAILAGENT_CONFIG,
// then the default location
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return ExpandPath(flagValue)
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return ExpandPath(env)
	}
	return DefaultConfigPath()
}

// ApplyEnv applies environment overrides on top of the file values
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		c.Backend.URL = v
	}
}

// Validate checks the values the client cannot run without
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend url %q", c.Backend.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend url must use http or https, got %q", u.Scheme)
	}
	if c.Backend.Timeout != "" {
		if _, err := time.ParseDuration(c.Backend.Timeout); err != nil {
			return fmt.Errorf("invalid backend timeout %q: %w", c.Backend.Timeout, err)
		}
	}
	switch c.LLM.SummaryProvider {
	case SummaryProviderAgent, SummaryProviderOllama, SummaryProviderBedrock:
	default:
		return fmt.Errorf("unknown summary provider %q", c.LLM.SummaryProvider)
	}
	if c.LLM.SummaryProvider != SummaryProviderAgent && strings.TrimSpace(c.LLM.Model) == "" {
		return fmt.Errorf("llm model is required for %s summaries", c.LLM.SummaryProvider)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Backend.URL == "" {
		c.Backend.URL = DefaultBackendConfig().URL
	}
	if c.LLM.SummaryProvider == "" {
		c.LLM.SummaryProvider = SummaryProviderAgent
	}
	c.LLM.SummaryProvider = strings.ToLower(strings.TrimSpace(c.LLM.SummaryProvider))
}

// DefaultConfigDir returns ~/.config/mailagent
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	return joinConfigDir("config.json")
}

// DefaultStorePath returns the default state database path
func DefaultStorePath() string {
	return joinConfigDir("state.sqlite3")
}

// DefaultLogPath returns the default log file path
func DefaultLogPath() string {
	return joinConfigDir("mailagent.log")
}

// DefaultThemeDir returns the default custom themes directory
func DefaultThemeDir() string {
	return joinConfigDir("themes")
}

func joinConfigDir(name string) string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

// ExpandPath expands a leading ~ to the home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// GetStorePath returns the configured store path or the default
func (c *Config) GetStorePath() string {
	if strings.TrimSpace(c.StorePath) != "" {
		return ExpandPath(c.StorePath)
	}
	return DefaultStorePath()
}

// GetLogFile returns the configured log file or the default
func (c *Config) GetLogFile() string {
	if strings.TrimSpace(c.LogFile) != "" {
		return ExpandPath(c.LogFile)
	}
	return DefaultLogPath()
}

// GetThemeDir returns the configured themes directory or the default
func (c *Config) GetThemeDir() string {
	if strings.TrimSpace(c.ThemeDir) != "" {
		return ExpandPath(c.ThemeDir)
	}
	return DefaultThemeDir()
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// GetBackendTimeout returns parsed timeout for backend requests
func (c *Config) GetBackendTimeout() time.Duration {
	return parseDuration(c.Backend.Timeout, 60*time.Second)
}

// GetLLMTimeout returns parsed timeout for LLM
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 20*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// LoadTemplate loads a template with proper priority: file first, then inline, then fallback
func LoadTemplate(templatePath, inlinePrompt, fallbackPrompt string) string {
	if strings.TrimSpace(templatePath) != "" {
		fullPath := ExpandPath(templatePath)
		if !filepath.IsAbs(fullPath) {
			fullPath = filepath.Join(DefaultConfigDir(), fullPath)
		}
		if content, err := os.ReadFile(fullPath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if strings.TrimSpace(inlinePrompt) != "" {
		return inlinePrompt
	}
	return fallbackPrompt
}

// GetSummarizePrompt returns the template wrapped around insight prompts.
// {{body}} stands for the generated prompt.
func (c *LLMConfig) GetSummarizePrompt() string {
	return LoadTemplate(c.SummarizeTemplate, c.SummarizePrompt, "{{body}}")
}

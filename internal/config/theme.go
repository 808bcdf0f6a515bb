package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Built-in theme names
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// ThemeLoader handles loading and applying themes
type ThemeLoader struct {
	themesDir string
}

// NewThemeLoader creates a new theme loader
func NewThemeLoader(themesDir string) *ThemeLoader {
	return &ThemeLoader{
		themesDir: themesDir,
	}
}

// BuiltinTheme returns the palette of a built-in theme
func BuiltinTheme(name string) (*ColorsConfig, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ThemeDark:
		return DarkColors(), true
	case ThemeLight:
		return LightColors(), true
	}
	return nil, false
}

// Load returns the palette for name. A <name>.yaml file in the themes
// directory overrides the built-in colors it sets; unknown names without a
// file fall back to the dark palette.
func (tl *ThemeLoader) Load(name string) (*ColorsConfig, error) {
	base, ok := BuiltinTheme(name)
	if !ok {
		base = DefaultColors()
	}
	if tl.themesDir == "" || strings.TrimSpace(name) == "" {
		return base, nil
	}
	path := filepath.Join(tl.themesDir, name+".yaml")
	if !fileExists(path) {
		return base, nil
	}
	theme, err := tl.decode(path, base)
	if err != nil {
		if fallback, ok := BuiltinTheme(name); ok {
			return fallback, err
		}
		return DefaultColors(), err
	}
	return theme, nil
}

// LoadThemeFromFile loads a theme from a YAML file on top of the dark palette
func (tl *ThemeLoader) LoadThemeFromFile(filename string) (*ColorsConfig, error) {
	// Try to load from themes directory first
	path := filepath.Join(tl.themesDir, filename)
	if !fileExists(path) {
		// Try absolute path
		path = filename
		if !fileExists(path) {
			return nil, fmt.Errorf("theme file not found: %s", filename)
		}
	}
	return tl.decode(path, DefaultColors())
}

func (tl *ThemeLoader) decode(path string, base *ColorsConfig) (*ColorsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var doc struct {
		MailAgent yaml.Node `yaml:"mailagent"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if doc.MailAgent.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("invalid theme file: missing mailagent section")
	}
	// Fields the file leaves out keep the base palette's values
	if err := doc.MailAgent.Decode(base); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if err := tl.ValidateTheme(base); err != nil {
		return nil, err
	}
	return base, nil
}

// ListAvailableThemes returns the built-in themes plus custom theme files
func (tl *ThemeLoader) ListAvailableThemes() ([]string, error) {
	seen := map[string]bool{ThemeDark: true, ThemeLight: true}
	themes := []string{ThemeDark, ThemeLight}

	entries, err := os.ReadDir(tl.themesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, fmt.Errorf("failed to read themes directory: %w", err)
	}

	var custom []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		if !seen[name] {
			seen[name] = true
			custom = append(custom, name)
		}
	}
	sort.Strings(custom)
	return append(themes, custom...), nil
}

// SaveThemeToFile saves a theme configuration to a YAML file
func (tl *ThemeLoader) SaveThemeToFile(theme *ColorsConfig, filename string) error {
	if err := os.MkdirAll(tl.themesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create themes directory: %w", err)
	}

	themeData := struct {
		MailAgent *ColorsConfig `yaml:"mailagent"`
	}{
		MailAgent: theme,
	}

	data, err := yaml.Marshal(themeData)
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}

	if err := os.WriteFile(filepath.Join(tl.themesDir, filename), data, 0o644); err != nil {
		return fmt.Errorf("failed to write theme file: %w", err)
	}
	return nil
}

// ValidateTheme validates a theme configuration
func (tl *ThemeLoader) ValidateTheme(theme *ColorsConfig) error {
	if theme == nil {
		return fmt.Errorf("theme is nil")
	}

	requiredColors := []struct {
		name  string
		color Color
	}{
		{"body.fgColor", theme.Body.FgColor},
		{"body.bgColor", theme.Body.BgColor},
		{"inbox.unreadColor", theme.Inbox.UnreadColor},
		{"inbox.readColor", theme.Inbox.ReadColor},
		{"status.errorColor", theme.Status.ErrorColor},
	}

	for _, req := range requiredColors {
		if req.color == "" {
			return fmt.Errorf("missing required color: %s", req.name)
		}
	}
	return nil
}

// Helper function to check if file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

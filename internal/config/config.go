package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config represents the pr-companion configuration.
type Config struct {
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	Format       string        `json:"format"`
	OutputDir    string        `json:"outputDir"`
	FailOn       string        `json:"failOn"`
	MaxFindings  int           `json:"maxFindings"`
	MaxDiffBytes int           `json:"maxDiffBytes"`
	Include      []string      `json:"include"`
	Exclude      []string      `json:"exclude"`
	PolicyFile   string        `json:"policyFile,omitempty"`
	GitHub       GitHubConfig  `json:"github"`
	Cache        CacheConfig   `json:"cache"`
	Privacy      PrivacyConfig `json:"privacy"`
}

// GitHubConfig identifies the repository operated on. The API token always
// comes from the GITHUB_TOKEN environment variable, never from the file.
type GitHubConfig struct {
	Owner string `json:"owner,omitempty"`
	Repo  string `json:"repo,omitempty"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:     "anthropic",
		Model:        "claude-sonnet-4-20250514",
		Format:       "text",
		OutputDir:    filepath.Join(".code-analysis", "outputs"),
		FailOn:       "blocking",
		MaxFindings:  50,
		MaxDiffBytes: 500000,
		Include:      []string{"**/*"},
		Exclude:      []string{"vendor/**", "**/*.gen.go", "**/dist/**", "**/node_modules/**"},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for pr-companion.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pr-companion"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "pr-companion"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "pr-companion"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "pr-companion"), nil
	default:
		return filepath.Join(home, ".config", "pr-companion"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.OutputDir != "" {
		dst.OutputDir = src.OutputDir
	}
	if src.FailOn != "" {
		dst.FailOn = src.FailOn
	}
	if src.MaxFindings > 0 {
		dst.MaxFindings = src.MaxFindings
	}
	if src.MaxDiffBytes > 0 {
		dst.MaxDiffBytes = src.MaxDiffBytes
	}
	if len(src.Include) > 0 {
		dst.Include = src.Include
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.PolicyFile != "" {
		dst.PolicyFile = src.PolicyFile
	}
	if src.GitHub.Owner != "" {
		dst.GitHub.Owner = src.GitHub.Owner
	}
	if src.GitHub.Repo != "" {
		dst.GitHub.Repo = src.GitHub.Repo
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// Bool fields from file: only override if the file explicitly set them
	// Since JSON zero value for bool is false, we can't distinguish unset from false
	// in a simple merge. We'll trust the file value if the whole struct was loaded.
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("PRCOMPANION_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("PRCOMPANION_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PRCOMPANION_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("PRCOMPANION_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("PRCOMPANION_FAIL_ON"); v != "" {
		cfg.FailOn = v
	}
	if v := os.Getenv("PRCOMPANION_MAX_FINDINGS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFindings = n
		}
	}
	// GITHUB_REPOSITORY is set by Actions runners as "owner/repo".
	if v := os.Getenv("GITHUB_REPOSITORY"); v != "" {
		if owner, repo, ok := splitRepository(v); ok {
			cfg.GitHub.Owner = owner
			cfg.GitHub.Repo = repo
		}
	}
}

func splitRepository(v string) (owner, repo string, ok bool) {
	for i := 0; i < len(v); i++ {
		if v[i] == '/' {
			if i == 0 || i == len(v)-1 {
				return "", "", false
			}
			return v[:i], v[i+1:], true
		}
	}
	return "", "", false
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["outputDir"]; ok && v != "" {
		cfg.OutputDir = v
	}
	if v, ok := overrides["failOn"]; ok && v != "" {
		cfg.FailOn = v
	}
	if v, ok := overrides["maxFindings"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFindings = n
		}
	}
	if v, ok := overrides["maxDiffBytes"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDiffBytes = n
		}
	}
	if v, ok := overrides["policyFile"]; ok && v != "" {
		cfg.PolicyFile = v
	}
	if v, ok := overrides["repo"]; ok && v != "" {
		if owner, repo, found := splitRepository(v); found {
			cfg.GitHub.Owner = owner
			cfg.GitHub.Repo = repo
		}
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "outputDir":
		cfg.OutputDir = value
	case "failOn":
		cfg.FailOn = value
	case "maxFindings":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxFindings must be an integer: %w", err)
		}
		cfg.MaxFindings = n
	case "maxDiffBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxDiffBytes must be an integer: %w", err)
		}
		cfg.MaxDiffBytes = n
	case "policyFile":
		cfg.PolicyFile = value
	case "github.owner":
		cfg.GitHub.Owner = value
	case "github.repo":
		cfg.GitHub.Repo = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint       = "https://codestral.mistral.ai/v1/chat/completions"
	DefaultModel          = "codestral-latest"
	DefaultLanguage       = "English"
	DefaultMaxChunkBytes  = 200 * 1024
	DefaultDelay          = 2 * time.Second
	DefaultReviewsDir     = "reviews"
	DefaultGuidanceFile   = "GUARD.md"
	DefaultLargeFileBytes = 10 * 1024 * 1024
)

// Config represents the guard configuration.
type Config struct {
	Endpoint      string        `yaml:"endpoint"`
	Model         string        `yaml:"model"`
	Language      string        `yaml:"language"`
	MaxChunkBytes int           `yaml:"maxChunkBytes"`
	Delay         time.Duration `yaml:"delay"`
	// Timeout bounds a single remote call. Zero leaves the call bounded only
	// by the transport's connection-level timeouts.
	Timeout time.Duration `yaml:"timeout"`
	// InsecureSkipVerify disables TLS certificate verification for the
	// remote endpoint. Only meant for intercepting proxies with private CAs.
	InsecureSkipVerify bool `yaml:"insecureSkipVerify"`
	RedactSecrets      bool `yaml:"redactSecrets"`
	// RedactPaths lists globs whose whole content is replaced before upload.
	RedactPaths    []string     `yaml:"redactPaths"`
	ReviewsDir     string       `yaml:"reviewsDir"`
	GuidanceFile   string       `yaml:"guidanceFile"`
	LargeFileBytes int64        `yaml:"largeFileBytes"`
	Ignore         IgnoreConfig `yaml:"ignore"`
}

// IgnoreConfig lists what the collector never reads.
type IgnoreConfig struct {
	Dirs       []string `yaml:"dirs"`
	Extensions []string `yaml:"extensions"`
	Files      []string `yaml:"files"`
}

// ConfigurationError reports a problem detected before any network
// activity: missing credentials, an invalid target or invalid settings.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Endpoint:       DefaultEndpoint,
		Model:          DefaultModel,
		Language:       DefaultLanguage,
		MaxChunkBytes:  DefaultMaxChunkBytes,
		Delay:          DefaultDelay,
		RedactSecrets:  true,
		RedactPaths:    []string{"**/*secrets*", "**/*.pem", "**/*.key"},
		ReviewsDir:     DefaultReviewsDir,
		GuidanceFile:   DefaultGuidanceFile,
		LargeFileBytes: DefaultLargeFileBytes,
		Ignore: IgnoreConfig{
			Dirs: []string{
				"node_modules", ".git", ".DS_Store", "dist", "build", "__pycache__",
				".venv", "venv", ".next", ".turbo", ".cache", "target", ".idea", ".vscode",
				"public", "assets", "vendor", "out", ".output", "coverage",
			},
			Extensions: []string{
				".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".pdf",
				".zip", ".tar", ".gz", ".exe", ".bin", ".pyc", ".lock", ".lockb",
				".woff", ".woff2", ".ttf", ".eot", ".mp4", ".mp3", ".mov", ".map",
				".db", ".sqlite", ".sqlite3",
			},
			Files: []string{
				"package-lock.json", "bun.lockb", "yarn.lock", "pnpm-lock.yaml", DefaultGuidanceFile,
			},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for guard.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "guard"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "guard"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "guard"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "guard"), nil
	default:
		return filepath.Join(home, ".config", "guard"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile returns the defaults overlaid with the config file. A missing
// file is not an error.
func LoadFile() (Config, error) {
	cfg := Default()
	if err := applyFile(&cfg); err != nil {
		return Config{}, err
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
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	if err := applyFile(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyFile decodes the config file on top of cfg. Keys absent from the file
// keep their current value, so booleans can be switched off explicitly.
func applyFile(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ConfigurationError{Reason: "parsing config file " + path, Err: err}
	}
	return nil
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("GUARD_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GUARD_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("GUARD_MAX_CHUNK_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigurationError{Reason: "GUARD_MAX_CHUNK_BYTES must be an integer", Err: err}
		}
		cfg.MaxChunkBytes = n
	}
	if v := os.Getenv("GUARD_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigurationError{Reason: "GUARD_DELAY must be a duration", Err: err}
		}
		cfg.Delay = d
	}
	if v := os.Getenv("GUARD_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigurationError{Reason: "GUARD_TIMEOUT must be a duration", Err: err}
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("GUARD_INSECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ConfigurationError{Reason: "GUARD_INSECURE must be a boolean", Err: err}
		}
		cfg.InsecureSkipVerify = b
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	if overrides == nil {
		return nil
	}
	for _, key := range []string{"endpoint", "model", "language", "maxChunkBytes", "delay", "timeout", "insecureSkipVerify", "redactSecrets"} {
		if v, ok := overrides[key]; ok && v != "" {
			if err := SetField(cfg, key, v); err != nil {
				return &ConfigurationError{Reason: "invalid flag value", Err: err}
			}
		}
	}
	if v, ok := overrides["excludeDirs"]; ok && v != "" {
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				cfg.Ignore.Dirs = append(cfg.Ignore.Dirs, d)
			}
		}
	}
	return nil
}

// Validate checks settings that would otherwise fail late, after files have
// already been read.
func (c Config) Validate() error {
	if c.Model == "" {
		return &ConfigurationError{Reason: "model must not be empty"}
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigurationError{Reason: fmt.Sprintf("invalid endpoint URL %q", c.Endpoint)}
	}
	if c.MaxChunkBytes <= 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("maxChunkBytes must be positive, got %d", c.MaxChunkBytes)}
	}
	if c.Delay < 0 {
		return &ConfigurationError{Reason: "delay must not be negative"}
	}
	if c.Timeout < 0 {
		return &ConfigurationError{Reason: "timeout must not be negative"}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "endpoint":
		cfg.Endpoint = value
	case "model":
		cfg.Model = value
	case "language":
		cfg.Language = value
	case "maxChunkBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxChunkBytes must be an integer: %w", err)
		}
		cfg.MaxChunkBytes = n
	case "delay":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("delay must be a duration: %w", err)
		}
		cfg.Delay = d
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("timeout must be a duration: %w", err)
		}
		cfg.Timeout = d
	case "insecureSkipVerify":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("insecureSkipVerify must be a boolean: %w", err)
		}
		cfg.InsecureSkipVerify = b
	case "redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("redactSecrets must be a boolean: %w", err)
		}
		cfg.RedactSecrets = b
	case "reviewsDir":
		cfg.ReviewsDir = value
	case "guidanceFile":
		cfg.GuidanceFile = value
	case "largeFileBytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("largeFileBytes must be an integer: %w", err)
		}
		cfg.LargeFileBytes = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

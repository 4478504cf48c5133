package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dshills/prbot/internal/manifest"
	"github.com/dshills/prbot/internal/output"
	"github.com/dshills/prbot/internal/providers"
)

// RepoFileName is the per-repository config file, looked up in the working
// directory.
const RepoFileName = ".prbot.toml"

// ErrMissingCredential reports that no API key is set for the provider.
var ErrMissingCredential = errors.New("missing provider credential")

// Config represents the prbot configuration. Credentials are never stored
// here; see ResolveCredential.
type Config struct {
	Provider      string   `toml:"provider"`
	Model         string   `toml:"model"`
	BaseRef       string   `toml:"baseRef"`
	Language      string   `toml:"language"`
	ManifestPaths []string `toml:"manifestPaths"`
	StackKeys     []string `toml:"stackKeys"`
	LogLevel      string   `toml:"logLevel"`
	// ProviderURL overrides the provider endpoint (proxies, tests).
	ProviderURL string        `toml:"providerURL,omitempty"`
	Output      OutputConfig  `toml:"output"`
	Privacy     PrivacyConfig `toml:"privacy"`
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Dir          string `toml:"dir"`
	CommentsFile string `toml:"commentsFile"`
	SummaryFile  string `toml:"summaryFile"`
	QAFile       string `toml:"qaFile"`
	PRFile       string `toml:"prFile"`
	SARIFFile    string `toml:"sarifFile,omitempty"`
}

// PrivacyConfig controls redaction of the diff before it leaves the machine.
type PrivacyConfig struct {
	RedactSecrets bool     `toml:"redactSecrets"`
	RedactPaths   []string `toml:"redactPaths"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:      "gemini",
		Model:         DefaultModel("gemini"),
		BaseRef:       "origin/main",
		Language:      "English",
		ManifestPaths: append([]string(nil), manifest.DefaultPaths...),
		StackKeys:     append([]string(nil), manifest.DefaultKeys...),
		LogLevel:      "info",
		Output: OutputConfig{
			Dir:          ".",
			CommentsFile: output.DefaultCommentsFile,
			SummaryFile:  output.DefaultSummaryFile,
			QAFile:       output.DefaultQAFile,
			PRFile:       output.DefaultPRFile,
		},
		Privacy: PrivacyConfig{
			RedactPaths: []string{"**/.env", "**/*secrets*"},
		},
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if providers.Canonical(provider) == "openai" {
		return "gpt-4.1-mini"
	}
	return "gemini-2.5-flash"
}

// ConfigDir returns the platform-appropriate user config directory for prbot.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "prbot"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "prbot"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "prbot"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "prbot"), nil
	default:
		return filepath.Join(home, ".config", "prbot"), nil
	}
}

// UserConfigPath returns the full path to the user config file.
func UserConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// RepoConfigPath returns the repository config path under dir.
func RepoConfigPath(dir string) string {
	return filepath.Join(dir, RepoFileName)
}

// LoadFile decodes a TOML config file. A missing file yields a zero Config,
// empty metadata and nil error.
func LoadFile(path string) (Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, toml.MetaData{}, nil
		}
		return Config{}, toml.MetaData{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		slog.Warn("unknown config keys ignored", "path", path, "keys", fmt.Sprint(undecoded))
	}
	return cfg, md, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}

// Load builds the effective config by merging:
// defaults <- user file <- repo file (in dir) <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(dir string, overrides map[string]string) (Config, error) {
	cfg := Default()
	// Resolved after merging so a provider switch picks its own default.
	cfg.Model = ""

	if userPath, err := UserConfigPath(); err == nil {
		fileCfg, md, err := LoadFile(userPath)
		if err != nil {
			return Config{}, err
		}
		mergeFile(&cfg, fileCfg, md)
	}

	fileCfg, md, err := LoadFile(RepoConfigPath(dir))
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg, md)

	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail late in a run.
func (c Config) Validate() error {
	switch providers.Canonical(c.Provider) {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown provider %q (want gemini or openai)", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a config log level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid logLevel %q: %w", s, err)
	}
	return l, nil
}

// ResolveCredential returns the API key for provider from its environment
// variables. It is the only place prbot reads a credential.
func ResolveCredential(provider string) (string, error) {
	names := providers.CredentialEnv(provider)
	if len(names) == 0 {
		return "", fmt.Errorf("unknown provider %q", provider)
	}
	key, _ := providers.LookupCredential(provider)
	if key == "" {
		return "", fmt.Errorf("%w: set %s", ErrMissingCredential, strings.Join(names, " or "))
	}
	return key, nil
}

func mergeFile(dst *Config, src Config, md toml.MetaData) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.BaseRef != "" {
		dst.BaseRef = src.BaseRef
	}
	if src.Language != "" {
		dst.Language = src.Language
	}
	if len(src.ManifestPaths) > 0 {
		dst.ManifestPaths = src.ManifestPaths
	}
	if len(src.StackKeys) > 0 {
		dst.StackKeys = src.StackKeys
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.ProviderURL != "" {
		dst.ProviderURL = src.ProviderURL
	}
	if src.Output.Dir != "" {
		dst.Output.Dir = src.Output.Dir
	}
	if src.Output.CommentsFile != "" {
		dst.Output.CommentsFile = src.Output.CommentsFile
	}
	if src.Output.SummaryFile != "" {
		dst.Output.SummaryFile = src.Output.SummaryFile
	}
	if src.Output.QAFile != "" {
		dst.Output.QAFile = src.Output.QAFile
	}
	if src.Output.PRFile != "" {
		dst.Output.PRFile = src.Output.PRFile
	}
	if src.Output.SARIFFile != "" {
		dst.Output.SARIFFile = src.Output.SARIFFile
	}
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
	// Bools only override when the file sets them, so an explicit false wins.
	if md.IsDefined("privacy", "redactSecrets") {
		dst.Privacy.RedactSecrets = src.Privacy.RedactSecrets
	}
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("PRBOT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("PRBOT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PRBOT_BASE_REF"); v != "" {
		cfg.BaseRef = v
	}
	if v := os.Getenv("PRBOT_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("PRBOT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PRBOT_PROVIDER_URL"); v != "" {
		cfg.ProviderURL = v
	}
	if v := os.Getenv("PRBOT_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("PRBOT_REDACT_SECRETS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PRBOT_REDACT_SECRETS must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists every key accepted by SetField.
var Keys = []string{
	"provider", "model", "baseRef", "language", "manifestPaths", "stackKeys",
	"logLevel", "providerURL", "output.dir", "output.commentsFile", "output.summaryFile",
	"output.qaFile", "output.prFile", "output.sarifFile", "privacy.redactSecrets",
	"privacy.redactPaths",
}

// SetField sets a single config field by key name. Returns error if key is unknown.
// List values are comma separated.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "baseRef":
		cfg.BaseRef = value
	case "language":
		cfg.Language = value
	case "manifestPaths":
		cfg.ManifestPaths = splitList(value)
	case "stackKeys":
		cfg.StackKeys = splitList(value)
	case "logLevel":
		if _, err := ParseLevel(value); err != nil {
			return err
		}
		cfg.LogLevel = value
	case "providerURL":
		cfg.ProviderURL = value
	case "output.dir":
		cfg.Output.Dir = value
	case "output.commentsFile":
		cfg.Output.CommentsFile = value
	case "output.summaryFile":
		cfg.Output.SummaryFile = value
	case "output.qaFile":
		cfg.Output.QAFile = value
	case "output.prFile":
		cfg.Output.PRFile = value
	case "output.sarifFile":
		cfg.Output.SARIFFile = value
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	case "privacy.redactPaths":
		cfg.Privacy.RedactPaths = splitList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config at an empty temp dir and clears PRBOT_*.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{
		"PRBOT_PROVIDER", "PRBOT_MODEL", "PRBOT_BASE_REF", "PRBOT_LANGUAGE",
		"PRBOT_LOG_LEVEL", "PRBOT_OUTPUT_DIR", "PRBOT_REDACT_SECRETS", "PRBOT_PROVIDER_URL",
	} {
		t.Setenv(k, "")
	}
	return t.TempDir()
}

func writeRepoFile(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RepoFileName), []byte(body), 0o644))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Provider != "gemini" {
		t.Errorf("Default provider = %q, want %q", cfg.Provider, "gemini")
	}
	if cfg.BaseRef != "origin/main" {
		t.Errorf("Default baseRef = %q, want %q", cfg.BaseRef, "origin/main")
	}
	if cfg.Output.CommentsFile != "review_comments.json" {
		t.Errorf("Default commentsFile = %q", cfg.Output.CommentsFile)
	}
	if cfg.Output.SummaryFile != "review_comment.txt" {
		t.Errorf("Default summaryFile = %q", cfg.Output.SummaryFile)
	}
	if cfg.Output.QAFile != "qa_comment.txt" {
		t.Errorf("Default qaFile = %q", cfg.Output.QAFile)
	}
	if cfg.Output.PRFile != "pr_draft.json" {
		t.Errorf("Default prFile = %q", cfg.Output.PRFile)
	}
	if cfg.Privacy.RedactSecrets {
		t.Error("Default redactSecrets should be false so the diff is sent verbatim")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ProviderDefaultModel(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(dir, map[string]string{"provider": "openai"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", cfg.Model)

	cfg, err = Load(dir, map[string]string{"provider": "openai", "model": "o3-mini"})
	require.NoError(t, err)
	assert.Equal(t, "o3-mini", cfg.Model, "an explicit model wins")
}

func TestConfigPrecedence(t *testing.T) {
	dir := isolate(t)
	writeRepoFile(t, dir, `
provider = "openai"
model = "gpt-4.1-mini"
baseRef = "origin/develop"
`)
	t.Setenv("PRBOT_MODEL", "gpt-4.1")

	cfg, err := Load(dir, map[string]string{"baseRef": "origin/release"})
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider, "file should override default")
	assert.Equal(t, "gpt-4.1", cfg.Model, "env should override file")
	assert.Equal(t, "origin/release", cfg.BaseRef, "override should beat file")
}

func TestLoad_UserThenRepo(t *testing.T) {
	dir := isolate(t)
	userPath, err := UserConfigPath()
	require.NoError(t, err)
	require.NoError(t, Save(userPath, Config{Language: "Korean", Model: "gemini-2.5-pro"}))
	writeRepoFile(t, dir, `model = "gemini-3-flash-preview"`)

	cfg, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "Korean", cfg.Language)
	assert.Equal(t, "gemini-3-flash-preview", cfg.Model)
}

func TestMergeFile_BoolFields(t *testing.T) {
	dir := isolate(t)
	writeRepoFile(t, dir, "[privacy]\nredactSecrets = true\n")
	cfg, err := Load(dir, nil)
	require.NoError(t, err)
	assert.True(t, cfg.Privacy.RedactSecrets)

	// An explicit false must override a true coming from the user file.
	userPath, _ := UserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0o755))
	require.NoError(t, os.WriteFile(userPath, []byte("[privacy]\nredactSecrets = true\n"), 0o644))
	writeRepoFile(t, dir, "[privacy]\nredactSecrets = false\n")
	cfg, err = Load(dir, nil)
	require.NoError(t, err)
	assert.False(t, cfg.Privacy.RedactSecrets)
}

func TestMergeFile_BoolFields_Unset(t *testing.T) {
	cfg := Default()
	cfg.Privacy.RedactSecrets = true
	var src Config
	md, err := toml.Decode(`model = "x"`, &src)
	require.NoError(t, err)

	mergeFile(&cfg, src, md)
	assert.True(t, cfg.Privacy.RedactSecrets, "unset bool in file must not clear the value")
	assert.Equal(t, "x", cfg.Model)
}

func TestMergeEnv(t *testing.T) {
	isolate(t)
	t.Setenv("PRBOT_PROVIDER", "openai")
	t.Setenv("PRBOT_MODEL", "gpt-4o-mini")
	t.Setenv("PRBOT_BASE_REF", "upstream/main")
	t.Setenv("PRBOT_LANGUAGE", "Japanese")
	t.Setenv("PRBOT_LOG_LEVEL", "debug")
	t.Setenv("PRBOT_OUTPUT_DIR", "out")
	t.Setenv("PRBOT_REDACT_SECRETS", "true")

	cfg := Default()
	require.NoError(t, mergeEnv(&cfg))

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "upstream/main", cfg.BaseRef)
	assert.Equal(t, "Japanese", cfg.Language)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.True(t, cfg.Privacy.RedactSecrets)
}

func TestMergeEnv_InvalidBool(t *testing.T) {
	isolate(t)
	t.Setenv("PRBOT_REDACT_SECRETS", "maybe")
	cfg := Default()
	assert.Error(t, mergeEnv(&cfg))
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	writeRepoFile(t, dir, "provider = \n")
	_, err := Load(dir, nil)
	assert.Error(t, err)
}

func TestLoad_UnknownProvider(t *testing.T) {
	dir := isolate(t)
	_, err := Load(dir, map[string]string{"provider": "anthropic"})
	assert.Error(t, err)
}

func TestSetField(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(Config) bool
	}{
		{"provider", "openai", func(c Config) bool { return c.Provider == "openai" }},
		{"model", "m", func(c Config) bool { return c.Model == "m" }},
		{"baseRef", "origin/dev", func(c Config) bool { return c.BaseRef == "origin/dev" }},
		{"language", "German", func(c Config) bool { return c.Language == "German" }},
		{"manifestPaths", "a/package.json, b/package.json", func(c Config) bool {
			return len(c.ManifestPaths) == 2 && c.ManifestPaths[1] == "b/package.json"
		}},
		{"stackKeys", "react,vue", func(c Config) bool { return len(c.StackKeys) == 2 && c.StackKeys[1] == "vue" }},
		{"logLevel", "warn", func(c Config) bool { return c.LogLevel == "warn" }},
		{"output.dir", "artifacts", func(c Config) bool { return c.Output.Dir == "artifacts" }},
		{"output.prFile", "draft.json", func(c Config) bool { return c.Output.PRFile == "draft.json" }},
		{"output.sarifFile", "r.sarif", func(c Config) bool { return c.Output.SARIFFile == "r.sarif" }},
		{"privacy.redactSecrets", "true", func(c Config) bool { return c.Privacy.RedactSecrets }},
		{"privacy.redactPaths", "**/*.pem", func(c Config) bool {
			return len(c.Privacy.RedactPaths) == 1 && c.Privacy.RedactPaths[0] == "**/*.pem"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := Default()
			if err := SetField(&cfg, tt.key, tt.value); err != nil {
				t.Fatalf("SetField(%q) error: %v", tt.key, err)
			}
			if !tt.check(cfg) {
				t.Errorf("SetField(%q, %q) did not apply: %+v", tt.key, tt.value, cfg)
			}
		})
	}
}

func TestSetField_Errors(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "nonexistent", "x"); err == nil {
		t.Error("Expected error for unknown key")
	}
	if err := SetField(&cfg, "privacy.redactSecrets", "sometimes"); err == nil {
		t.Error("Expected error for invalid bool")
	}
	if err := SetField(&cfg, "logLevel", "loud"); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestKeysAreSettable(t *testing.T) {
	for _, k := range Keys {
		cfg := Default()
		v := "x"
		if k == "privacy.redactSecrets" {
			v = "false"
		}
		if k == "logLevel" {
			v = "info"
		}
		assert.NoError(t, SetField(&cfg, k, v), k)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", RepoFileName)
	want := Default()
	want.Provider = "openai"
	want.Privacy.RedactSecrets = true

	require.NoError(t, Save(path, want))

	got, md, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, md.IsDefined("privacy", "redactSecrets"))
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "prbot"), dir)
}

func TestResolveCredential(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	_, err := ResolveCredential("gemini")
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}

	t.Setenv("GEMINI_API_KEY", "k")
	key, err := ResolveCredential("gemini")
	require.NoError(t, err)
	assert.Equal(t, "k", key)

	_, err = ResolveCredential("bogus")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingCredential))
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"", "debug", "INFO", "warn", "error"} {
		_, err := ParseLevel(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

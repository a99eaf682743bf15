package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iatro-health/iatro/internal/inference"
	"github.com/iatro-health/iatro/internal/llm"
)

// isolate points XDG_CONFIG_HOME at an empty dir and clears variables
// that would otherwise leak in from the developer's shell.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{
		"IATRO_DB", "IATRO_KB", "IATRO_LOG_LEVEL", "IATRO_LOG_FORMAT",
		"IATRO_ENGINE_PRESET", "IATRO_ENGINE_MAX_STEPS", "IATRO_LLM_PROVIDER",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, inference.PresetStrict, cfg.Engine.Preset)
	assert.Equal(t, inference.Strict(), cfg.Inference)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.LLM.Enabled())
}

func TestLoad_DefaultPathFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "iatro", "config.yaml"), `
db: /tmp/iatro-test.db
engine:
  preset: lenient
  max_steps: 12
  batch_size: 7
log:
  level: debug
llm:
  provider: mock
  timeout: 5s
  retry:
    max_attempts: 2
`)

	cfg, err := Load("", Overrides{})
	require.NoError(t, err)

	want := inference.Lenient()
	want.MaxSteps = 12
	want.BatchSize = 7
	assert.Equal(t, want, cfg.Inference)
	assert.Equal(t, "/tmp/iatro-test.db", cfg.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model, "unset fields keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "engine:\n  preset: lenient\n  max_steps: 12\nlog:\n  level: info\n")

	t.Setenv("IATRO_ENGINE_MAX_STEPS", "30")
	t.Setenv("IATRO_LOG_LEVEL", "error")
	t.Setenv("IATRO_DB", "/tmp/env.db")

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Inference.MaxSteps)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/tmp/env.db", cfg.DB)
}

func TestLoad_FlagsWin(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "engine:\n  preset: lenient\n  gap_weight: 0.5\n")
	t.Setenv("IATRO_LOG_FORMAT", "json")

	cfg, err := Load(path, Overrides{Preset: "strict", LogFormat: "console", KB: "kb.yaml"})
	require.NoError(t, err)

	want := inference.Strict()
	want.GapWeight = 0.5
	assert.Equal(t, want, cfg.Inference, "engine keys apply on top of the flag's preset")
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "kb.yaml", cfg.KB)
}

func TestLoad_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"), Overrides{})
	assert.Error(t, err, "explicit path must exist")

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "engine: [unclosed\n")
	_, err = Load(bad, Overrides{})
	assert.Error(t, err)

	_, err = Load("", Overrides{Preset: "reckless"})
	assert.ErrorContains(t, err, "reckless")

	_, err = Load("", Overrides{LogLevel: "loud"})
	assert.ErrorContains(t, err, "invalid log level")

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "engine:\n  batch_size: 0\n")
	_, err = Load(invalid, Overrides{})
	assert.ErrorContains(t, err, "engine")

	_, err = Load("", Overrides{LLM: "anthropic"})
	assert.ErrorContains(t, err, "IATRO_ANTHROPIC_API_KEY")
}

func TestLoad_DiscoversVendorKey(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load("", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)

	cfg, err = Load("", Overrides{LLM: llm.ProviderNone})
	require.NoError(t, err)
	assert.False(t, cfg.LLM.Enabled())
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"IATRO_DB":               "db",
		"IATRO_LOG_LEVEL":        "log.level",
		"IATRO_ENGINE_MAX_STEPS": "engine.max_steps",
		"IATRO_LLM_PROVIDER":     "llm.provider",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/idler/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromBytesYAML(t *testing.T) {
	data := []byte(`
steam_id: "76561198000000000"
api:
  endpoint: https://example.test/api/route
  timeout: 10s
library:
  page_size: 25
telemetry:
  quiescence: 2s
  enabled: false
logging:
  level: debug
`)
	cfg, err := LoadFromBytes(data, FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "76561198000000000", cfg.SteamID)
	assert.Equal(t, "https://example.test/api/route", cfg.API.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 25, cfg.Library.PageSize)
	assert.Equal(t, DefaultThreshold, cfg.Library.Threshold)
	assert.Equal(t, 2*time.Second, cfg.Telemetry.Quiescence)
	assert.False(t, cfg.Telemetry.IsEnabled())
	assert.Contains(t, cfg.Extensions, "logging")
	assert.NotContains(t, cfg.Extensions, "api")
}

func TestLoadFromBytesTOML(t *testing.T) {
	data := []byte(`
steam_id = "42"

[library]
page_size = 10
default_sort = "recent"

[helper]
utility_path = "/opt/steam-utility"
`)
	cfg, err := LoadFromBytes(data, FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "42", cfg.SteamID)
	assert.Equal(t, 10, cfg.Library.PageSize)
	assert.Equal(t, "recent", cfg.Library.DefaultSort)
	assert.Equal(t, "/opt/steam-utility", cfg.Helper.UtilityPath)
	assert.Equal(t, DefaultQuiescence, cfg.Telemetry.Quiescence)
	assert.True(t, cfg.Telemetry.IsEnabled())
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("IDLER_TEST_STEAM_ID", "1234")
	cfg, err := LoadFromBytes([]byte("steam_id: ${IDLER_TEST_STEAM_ID}\napi:\n  endpoint: ${IDLER_UNSET_ENDPOINT:-https://fallback.test/route}\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "1234", cfg.SteamID)
	assert.Equal(t, "https://fallback.test/route", cfg.API.Endpoint)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad endpoint scheme", data: "api:\n  endpoint: ftp://x/y\n"},
		{name: "negative page size", data: "library:\n  page_size: -1\n"},
		{name: "non numeric steam id", data: "steam_id: abc\n"},
		{name: "negative timeout", data: "api:\n  timeout: -1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.data), FormatYAML)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
		})
	}
}

func TestLoadDefaultWithoutFile(t *testing.T) {
	t.Setenv("IDLER_HOME", t.TempDir())

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadDefaultFindsTOML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("IDLER_HOME", home)
	dir := filepath.Join(home, "config")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "idler.toml"), []byte("steam_id = \"7\"\n"), 0644))

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, "7", cfg.SteamID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestUnmarshalExtension(t *testing.T) {
	type loggingSection struct {
		Level        string `yaml:"level"`
		ReportCaller bool   `yaml:"report_caller"`
	}

	cfg, err := LoadFromBytes([]byte("logging:\n  level: warn\n  report_caller: true\n"), FormatYAML)
	require.NoError(t, err)

	var section loggingSection
	require.NoError(t, cfg.UnmarshalExtension("logging", &section))
	assert.Equal(t, "warn", section.Level)
	assert.True(t, section.ReportCaller)

	var untouched loggingSection
	require.NoError(t, cfg.UnmarshalExtension("missing", &untouched))
	assert.Equal(t, loggingSection{}, untouched)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".steam", "steam.pid"), ExpandPath("~/.steam/steam.pid"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}

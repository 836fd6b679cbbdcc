package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, DefaultDataFile, cfg.Data.File)
	assert.Empty(t, cfg.Data.Sheet)
	assert.Equal(t, 100, cfg.Data.PageSize)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadFile_Precedence(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  read_timeout: 5s
data:
  file: allocation.xlsx
  sheet: Sheet1
logging:
  level: debug
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout, "unset fields keep defaults")
		assert.Equal(t, "allocation.xlsx", cfg.Data.File)
		assert.Equal(t, "Sheet1", cfg.Data.Sheet)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("FUSION_SERVER_PORT", "7000")
		t.Setenv("FUSION_DATA_FILE", "/srv/mis/other.xlsx")
		t.Setenv("FUSION_SECURITY_ALLOWED_ORIGINS", "http://a.example,http://b.example")

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, 7000, cfg.Server.Port)
		assert.Equal(t, "/srv/mis/other.xlsx", cfg.Data.File)
		assert.Equal(t, "Sheet1", cfg.Data.Sheet)
		assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
	})
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "malformed yaml", body: "server: [unclosed"},
		{name: "invalid port", body: "server:\n  port: 70000\n"},
		{name: "empty data file", body: "data:\n  file: \"  \"\n"},
		{name: "page size above max", body: "data:\n  page_size: 10\n  max_page_size: 5\n"},
		{name: "bad logging output", body: "logging:\n  output: syslog\n"},
		{name: "bad logging format", body: "logging:\n  format: xml\n"},
		{name: "bad sample ratio", body: "telemetry:\n  sample_ratio: 2\n"},
		{name: "bad env value", body: "", env: map[string]string{"FUSION_SERVER_PORT": "eighty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFile(writeConfigFile(t, tt.body))
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FUSION_DATA_SHEET=FromDotEnv\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("FUSION_DATA_SHEET")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "FromDotEnv", cfg.Data.Sheet)
}

func TestGetConfigFilePath_Explicit(t *testing.T) {
	t.Setenv(ConfigFileEnv, "/etc/fusion/config.yaml")
	assert.Equal(t, "/etc/fusion/config.yaml", getConfigFilePath())
}

func TestServerAddr(t *testing.T) {
	assert.Equal(t, ":8080", Default().Server.Addr())
	assert.Equal(t, "127.0.0.1:9000", ServerConfig{Host: "127.0.0.1", Port: 9000}.Addr())
}

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name     string
		paths    PathsConfig
		file     string
		wantData string
		wantFile string
	}{
		{
			name:     "file relative to base",
			paths:    PathsConfig{BaseDir: base, LogsDir: "logs"},
			file:     DefaultDataFile,
			wantData: base,
			wantFile: filepath.Join(base, DefaultDataFile),
		},
		{
			name:     "file relative to data dir",
			paths:    PathsConfig{BaseDir: base, DataDir: "data", LogsDir: "logs"},
			file:     "mis.xlsx",
			wantData: filepath.Join(base, "data"),
			wantFile: filepath.Join(base, "data", "mis.xlsx"),
		},
		{
			name:     "absolute file wins",
			paths:    PathsConfig{BaseDir: base, DataDir: "data"},
			file:     "/srv/mis/mis.xlsx",
			wantData: filepath.Join(base, "data"),
			wantFile: "/srv/mis/mis.xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Paths = tt.paths
			cfg.Data.File = tt.file

			p, err := cfg.ResolvePaths()
			require.NoError(t, err)
			assert.Equal(t, base, p.BaseDir)
			assert.Equal(t, tt.wantData, p.DataDir)
			assert.Equal(t, tt.wantFile, p.DataFile)
		})
	}
}

func TestResolvePaths_EmptyBaseIsExecutableDir(t *testing.T) {
	exeDir, err := ExecutableDir()
	require.NoError(t, err)

	cfg := Default()
	cfg.Paths = PathsConfig{}

	p, err := cfg.ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, exeDir, p.BaseDir)
	assert.Equal(t, filepath.Join(exeDir, DefaultDataFile), p.DataFile)

	def, err := DefaultDataFilePath()
	require.NoError(t, err)
	assert.Equal(t, p.DataFile, def)
}

func TestEnsureDirectories(t *testing.T) {
	cfg := Default()
	cfg.Paths.BaseDir = t.TempDir()

	p, err := cfg.ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, p.EnsureDirectories())

	info, err := os.Stat(p.LogsDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.False(t, FileExists(p.LogsDir), "directories are not files")
}

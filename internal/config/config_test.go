package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv() []string { return nil }

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "easybook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := load("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
database:
  path: /var/lib/easybook/data.db
log:
  level: DEBUG
  format: json
`)

	cfg, err := load(path, noEnv)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/easybook/data.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, "log:\n  level: warn\n")

	cfg, err := load(path, noEnv)
	require.NoError(t, err)
	assert.Equal(t, defaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, defaultLogFormat, cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "database:\n  path: from-file.db\n")
	environ := func() []string {
		return []string{
			"EASYBOOK_DATABASE_PATH=from-env.db",
			"EASYBOOK_LOG_LEVEL=error",
			"HOME=/root",
		}
	}

	cfg, err := load(path, environ)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database.Path)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("database:\n  path: cwd.db\n"), 0o644))
	t.Chdir(dir)

	cfg, err := load("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, "cwd.db", cfg.Database.Path)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing explicit file", func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "nope.yaml")
		}},
		{"malformed yaml", func(t *testing.T) string {
			return writeFile(t, "database: [unclosed")
		}},
		{"unknown log level", func(t *testing.T) string {
			return writeFile(t, "log:\n  level: chatty\n")
		}},
		{"unknown log format", func(t *testing.T) string {
			return writeFile(t, "log:\n  format: xml\n")
		}},
		{"empty database path", func(t *testing.T) string {
			return writeFile(t, "database:\n  path: \"\"\n")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.path(t), noEnv)
			assert.Error(t, err)
		})
	}
}

func TestEnvKey(t *testing.T) {
	key, value := envKey("EASYBOOK_LOG_FORMAT", "json")
	assert.Equal(t, "log.format", key)
	assert.Equal(t, "json", value)

	key, _ = envKey("EASYBOOK_", "x")
	assert.Empty(t, key)
}

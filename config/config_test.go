package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
app:
  name: reporting
log:
  level: debug
database:
  type: sqlite
  path: ":memory:"
  query:
    slow:
      threshold: 50ms
schema:
  tables:
    Users: [id, name, role_id]
    Roles: [id, title]
`

func TestLoadBytesWithDefaults(t *testing.T) {
	cfg, err := LoadBytes(nil)
	require.NoError(t, err)

	assert.Equal(t, "bricksql", cfg.App.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)

	assert.False(t, IsDatabaseConfigured(&cfg.Database))
	assert.Equal(t, 200*time.Millisecond, cfg.Database.Query.Slow.Threshold)
	assert.Equal(t, 1000, cfg.Database.Query.Log.MaxLength)
	assert.Equal(t, 25, cfg.Database.Pool.Max.Connections)
	assert.Equal(t, 2, cfg.Database.Pool.Idle.Connections)
	assert.False(t, cfg.Database.QuoteIdentifiers)
	assert.Empty(t, cfg.Schema.Tables)
}

func TestLoadBytesOverridesDefaults(t *testing.T) {
	cfg, err := LoadBytes([]byte(testYAML))
	require.NoError(t, err)

	assert.Equal(t, "reporting", cfg.App.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, SQLite, cfg.Database.Type)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, 50*time.Millisecond, cfg.Database.Query.Slow.Threshold)
	assert.Equal(t, []string{"id", "name", "role_id"}, cfg.Schema.Tables["Users"])
	assert.Equal(t, []string{"id", "title"}, cfg.Schema.Tables["Roles"])
	assert.Equal(t, "50ms", cfg.String("database.query.slow.threshold"))
	assert.True(t, cfg.Exists("schema.tables"))
}

func TestLoadBytesEnvironmentWins(t *testing.T) {
	t.Setenv("BRICKSQL_LOG_LEVEL", "warn")
	t.Setenv("BRICKSQL_DATABASE_QUERY_LOG_PARAMETERS", "true")
	t.Setenv("BRICKSQL_DATABASE_POOL_MAX_CONNECTIONS", "5")

	cfg, err := LoadBytes([]byte(testYAML))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Database.Query.Log.Parameters)
	assert.Equal(t, 5, cfg.Database.Pool.Max.Connections)
}

func TestLoadBytesInvalidYAML(t *testing.T) {
	_, err := LoadBytes([]byte("database: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse yaml")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bricksql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "reporting", cfg.App.Name)
}

func TestLoadMissingFileIsOptional(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "bricksql", cfg.App.Name)
}

func TestConfigAccessorsOnNil(t *testing.T) {
	var cfg *Config
	assert.Empty(t, cfg.String("app.name"))
	assert.False(t, cfg.Exists("app.name"))
}

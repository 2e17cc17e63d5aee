package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 3306, cfg.MySQL.Port)
	assert.Equal(t, "resume.payloads", cfg.RabbitMQ.PayloadQueue)
	assert.Positive(t, cfg.Processing.SimilarityCacheSize)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logger:
  level: debug
mysql:
  host: db.internal
  password: secret
embedding:
  base_url: http://embedder:8080/v1/embeddings
  model: bge-m3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "db.internal", cfg.MySQL.Host)
	assert.Equal(t, 3306, cfg.MySQL.Port, "unset fields keep their defaults")
	assert.Equal(t, "bge-m3", cfg.Embedding.Model)
}

func TestLoad_ExplicitMissingPathFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WORKUA_MYSQL_PASSWORD", "from-env")
	t.Setenv("WORKUA_EMBEDDING_API_KEY", "sk-test")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mysql:\n  password: from-file\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.MySQL.Password)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLConfig{
		Host: "localhost", Port: 3306,
		Username: "root", Password: "pw", Database: "workua",
	}.DSN()
	assert.Equal(t, "root:pw@tcp(localhost:3306)/workua?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
app:
  port: "8080"
  site_name: DREADSTORAGE
database:
  driver: mysql
  host: db.local
mail:
  port: 2525
`), 0o600))

	t.Setenv("CONFIG_FILE", file)
	t.Setenv("PORT", "9090")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port, "env wins over yaml")
	assert.Equal(t, "DREADSTORAGE", cfg.App.SiteName)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "db.local", cfg.DB.Host)
	assert.Equal(t, 2525, cfg.Mail.Port, "bad env value is ignored")
}

func TestLoadMissingYAML(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

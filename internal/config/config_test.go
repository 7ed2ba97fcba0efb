package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	viper.AddConfigPath(dir) // empty dir, no config.yaml present

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "/music", cfg.Library.MountPath)
	assert.Equal(t, "/data", cfg.Library.DataDir)
	assert.Equal(t, "/data/crate.db", cfg.Database.Path)
	assert.Equal(t, "WAL", cfg.Database.JournalMode)
	assert.True(t, cfg.Database.ForeignKeys)
	assert.Equal(t, "dev", cfg.Version.AppVersion)
}

func TestLoadConfigReadsYAMLFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	content := []byte("server:\n  port: 9090\nlibrary:\n  mount_path: /mnt/music\n  data_dir: /srv/crate\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
	viper.AddConfigPath(dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/mnt/music", cfg.Library.MountPath)
	assert.Equal(t, "/srv/crate", cfg.Library.DataDir)
}

func TestLoadConfigEnvironmentOverride(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	viper.AddConfigPath(dir)

	os.Setenv("LIBRARY_MOUNT_PATH", "/from/env")
	defer os.Unsetenv("LIBRARY_MOUNT_PATH")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Library.MountPath)
}

func TestDatabaseConfigDSN(t *testing.T) {
	d := DatabaseConfig{
		Path:        "/data/crate.db",
		JournalMode: "WAL",
		Synchronous: "NORMAL",
		ForeignKeys: true,
	}
	assert.Equal(t, "/data/crate.db?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on", d.DSN())

	d.ForeignKeys = false
	assert.Equal(t, "/data/crate.db?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=off", d.DSN())
}

func TestValidateConfig(t *testing.T) {
	valid := &AppConfig{
		Library:  LibraryConfig{MountPath: "/music", DataDir: "/data"},
		Database: DatabaseConfig{Path: "/data/crate.db"},
	}
	assert.NoError(t, validateConfig(valid))

	missingMount := *valid
	missingMount.Library.MountPath = ""
	assert.Error(t, validateConfig(&missingMount))

	missingDataDir := *valid
	missingDataDir.Library.DataDir = ""
	assert.Error(t, validateConfig(&missingDataDir))

	missingDBPath := *valid
	missingDBPath.Database.Path = ""
	assert.Error(t, validateConfig(&missingDBPath))
}

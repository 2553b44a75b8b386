package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
wall:
  app_number: "1000"
  command_prefix: "#"
  min_shortcode: 2000
  max_shortcode: 2999
  allow_list_creation: false
  sender: "gateway"

gateway:
  listen_port: "9090"
  send_url: "http://gateway.local/send"

database:
  driver: "mysql"
  host: "db.local"
  port: 3306
  username: "wall"
  dbname: "smswall"

tables:
  confirmations: "pending"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "1000", cfg.Wall.AppNumber)
	assert.Equal(t, "#", cfg.Wall.CommandPrefix)
	assert.Equal(t, 2000, cfg.Wall.MinShortcode)
	assert.Equal(t, 2999, cfg.Wall.MaxShortcode)
	assert.False(t, cfg.Wall.AllowListCreation)
	assert.Equal(t, "gateway", cfg.Wall.Sender)

	assert.Equal(t, "9090", cfg.Gateway.ListenPort)
	assert.Equal(t, "http://gateway.local/send", cfg.Gateway.SendURL)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "db.local", cfg.Database.Host)

	// Overridden and defaulted table names
	assert.Equal(t, "pending", cfg.Tables.Confirmations)
	assert.Equal(t, "lists", cfg.Tables.Lists)

	// Untouched defaults
	assert.Equal(t, 60, cfg.Wall.ConfirmMaxAgeMinutes)
	assert.Equal(t, "/messages", cfg.Gateway.WebhookPath)
	assert.Equal(t, "INFO", cfg.Logger.Level)
}

func TestLoadMissingAppNumber(t *testing.T) {
	configPath := writeConfig(t, `
database:
  driver: "sqlite"
`)

	_, err := Load(configPath)
	assert.ErrorContains(t, err, "app_number")
}

func TestLoadRejectsUnsafeTableName(t *testing.T) {
	configPath := writeConfig(t, `
wall:
  app_number: "1000"
tables:
  members: "members; drop table lists"
`)

	_, err := Load(configPath)
	assert.ErrorContains(t, err, "alphanumeric")
}

func TestLoadRejectsBadPrefix(t *testing.T) {
	configPath := writeConfig(t, `
wall:
  app_number: "1000"
  command_prefix: "**"
`)

	_, err := Load(configPath)
	assert.ErrorContains(t, err, "command_prefix")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	configPath := writeConfig(t, `
wall:
  app_number: "1000"
database:
  driver: "oracle"
`)

	_, err := Load(configPath)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "ws://localhost:8765/v1/chat", cfg.Chat.URL)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.LogConfig.Level)
}

func TestOverrideFromFile(t *testing.T) {
	content := `
chat:
  url: wss://chat.example.com/v1/chat
  origin: https://example.com
store:
  driver: sqlite
  path: /tmp/journal.db
logging:
  level: warn
`
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg := DefaultConfig().OverrideFromFile(file)

	assert.Equal(t, "wss://chat.example.com/v1/chat", cfg.Chat.URL)
	assert.Equal(t, "https://example.com", cfg.Chat.Origin)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/journal.db", cfg.Store.Path)
	assert.Equal(t, "warn", cfg.LogConfig.Level)
}

func TestOverrideFromFile_MissingFileKeepsDefaults(t *testing.T) {
	cfg := DefaultConfig().OverrideFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("CHAT_URL", "wss://env.example.com/v1/chat")
	t.Setenv("RELAY_LOG_LEVEL", "error")

	cfg := DefaultConfig().OverrideFromEnv()

	assert.Equal(t, "wss://env.example.com/v1/chat", cfg.Chat.URL)
	assert.Equal(t, "error", cfg.LogConfig.Level)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
}

func TestValidate_PanicsOnBadChatURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chat.URL = "http://not-a-websocket"

	assert.Panics(t, func() { cfg.Validate() })
}

func TestValidate_PanicsOnUnknownStoreDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Driver = "postgres"

	assert.Panics(t, func() { cfg.Validate() })
}

func TestValidate_PanicsOnSQLiteWithoutPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Driver = StoreDriverSQLite
	cfg.Store.Path = ""

	assert.Panics(t, func() { cfg.Validate() })
}

func TestTLSConfigValidate(t *testing.T) {
	assert.Error(t, (&TLSConfig{CertFile: "cert.pem"}).Validate())
	assert.Error(t, (&TLSConfig{KeyFile: "key.pem"}).Validate())
	assert.NoError(t, (&TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}).Validate())
	assert.NoError(t, (&TLSConfig{CAFile: "ca.pem"}).Validate())
}

func TestLogConfigValidate(t *testing.T) {
	assert.Error(t, LogConfig{}.Validate())
	assert.Error(t, LogConfig{Level: "loud"}.Validate())
	assert.NoError(t, LogConfig{Level: "INFO"}.Validate())
}

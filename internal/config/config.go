package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
)

// Application configuration
type RelayConfig struct {
	Chat      ChatConfig  `yaml:"chat"`
	Store     StoreConfig `yaml:"store"`
	LogConfig LogConfig   `yaml:"logging"`
}

type ChatConfig struct {
	// URL of the chat websocket endpoint, ws:// or wss://.
	URL    string     `yaml:"url"`
	Origin string     `yaml:"origin"`
	TLS    *TLSConfig `yaml:"tls"`
}

func (c ChatConfig) Validate() error {
	if c.URL == "" {
		return errors.New("chat.url is required")
	}
	if !strings.HasPrefix(c.URL, "ws://") && !strings.HasPrefix(c.URL, "wss://") {
		return fmt.Errorf("chat.url must be a ws:// or wss:// endpoint, got %s", c.URL)
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return fmt.Errorf("invalid TLS configuration: %w", err)
		}
	}
	return nil
}

type TLSConfig struct {
	CertFile string `yaml:"certFile"`
	KeyFile  string `yaml:"keyFile"`
	CAFile   string `yaml:"caFile"`
}

func (t *TLSConfig) Validate() error {
	if t.CertFile != "" && t.KeyFile == "" {
		return errors.New("keyFile is required when certFile is set")
	}
	if t.KeyFile != "" && t.CertFile == "" {
		return errors.New("certFile is required when keyFile is set")
	}
	return nil
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // "memory" or "sqlite"
	Path   string `yaml:"path"`
}

func (s StoreConfig) Validate() error {
	switch s.Driver {
	case StoreDriverMemory:
		return nil
	case StoreDriverSQLite:
		if s.Path == "" {
			return errors.New("store.path is required when store.driver is sqlite")
		}
		return nil
	default:
		return fmt.Errorf("unknown store.driver: %s", s.Driver)
	}
}

type LogConfig struct {
	Level string `yaml:"level"` // Log level, e.g., "debug", "info", "warn", "error"
}

// validate logconfig
func (l LogConfig) Validate() error {
	if l.Level == "" {
		return errors.New("logging.level is required")
	}
	_, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil {
		return fmt.Errorf("invalid logging.level: %s", l.Level)
	}
	return nil
}

func DefaultConfig() *RelayConfig {
	return &RelayConfig{
		Chat: ChatConfig{
			URL: "ws://localhost:8765/v1/chat",
		},
		Store: StoreConfig{
			Driver: StoreDriverMemory,
		},
		LogConfig: LogConfig{
			Level: "debug", // Default log level
		},
	}
}

func (c RelayConfig) OverrideFromFile(file string) *RelayConfig {
	configFile := file
	if configFile == "" {
		configFile = "config.yaml"
	}
	configData, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return &c
		}
		panic(fmt.Sprintf("failed to read config: %v", err))
	}
	err = yaml.Unmarshal(configData, &c)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal config: %v", err))
	}

	return &c
}

func (c RelayConfig) OverrideFromEnv() *RelayConfig {
	c.Chat.URL = getEnvStr("CHAT_URL", c.Chat.URL)
	c.Chat.Origin = getEnvStr("CHAT_ORIGIN", c.Chat.Origin)
	c.Store.Driver = getEnvStr("STORE_DRIVER", c.Store.Driver)
	c.Store.Path = getEnvStr("STORE_PATH", c.Store.Path)
	c.LogConfig.Level = getEnvStr("RELAY_LOG_LEVEL", c.LogConfig.Level)
	return &c
}

func (c RelayConfig) Validate() *RelayConfig {
	if err := c.Chat.Validate(); err != nil {
		panic(fmt.Sprintf("invalid chat configuration: %v", err))
	}
	if err := c.Store.Validate(); err != nil {
		panic(fmt.Sprintf("invalid store configuration: %v", err))
	}
	if err := c.LogConfig.Validate(); err != nil {
		panic(fmt.Sprintf("invalid logging configuration: %v", err))
	}
	return &c
}

func getEnvStr(varName string, defValue string) string {
	value := os.Getenv(varName)
	if value == "" {
		return defValue
	}
	return value
}

package util

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay/internal/config"
)

// GetContextWithLogger builds the relay's root logger at the configured
// level and stores it in ctx, where zerolog.Ctx recovers it downstream.
func GetContextWithLogger(ctx context.Context, logConfig config.LogConfig) context.Context {
	logger := getDefaultContextLogger(logConfig.Level)
	return logger.WithContext(ctx)
}

func getDefaultContextLogger(logLevel string) zerolog.Logger {
	ll, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		ll = zerolog.InfoLevel // unknown level falls back to info
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "chatrelay").Logger()
	logger = logger.Level(ll)
	zerolog.DefaultContextLogger = &logger
	return logger
}

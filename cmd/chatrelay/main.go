package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay/internal/bridge"
	"github.com/chatrelay/chatrelay/internal/chat"
	"github.com/chatrelay/chatrelay/internal/config"
	"github.com/chatrelay/chatrelay/internal/foreign/inproc"
	"github.com/chatrelay/chatrelay/internal/store"
	"github.com/chatrelay/chatrelay/internal/util"
)

func main() {
	configFile := flag.String("config", "", "configuration file")
	flag.Parse()
	cfg := config.DefaultConfig().OverrideFromFile(*configFile).OverrideFromEnv().Validate()

	ctx := util.GetContextWithLogger(context.Background(), cfg.LogConfig)
	zlog := zerolog.Ctx(ctx)

	journal, err := openStore(ctx, cfg.Store)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to open delivery journal")
	}

	sessionID, err := util.NewSessionID(8)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to generate session ID")
	}
	zlog.Info().Str("session_id", sessionID).Msg("starting chatrelay in loopback mode")

	// Loopback mode: the foreign runtime is in-process and hosts an echo
	// listener that logs every event and acknowledges every message.
	rt := inproc.NewRuntime()
	obj := rt.RegisterObject(bridge.ExpectedListenerType, &loopbackListener{
		rt:     rt,
		logger: zlog.With().Str("component", "loopback_listener").Logger(),
	})

	lb, err := bridge.NewListenerBridge(ctx, rt, obj)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to wrap loopback listener")
	}

	tlsConfig, err := util.ClientTLSConfig(cfg.Chat.TLS)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load TLS configuration")
	}

	conn, err := chat.Dial(ctx, chat.DialConfig{
		URL:    cfg.Chat.URL,
		Origin: cfg.Chat.Origin,
		TLS:    tlsConfig,
	}, lb, journal)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to chat endpoint")
	}
	zlog.Info().Str("url", cfg.Chat.URL).Msg("chat connection established")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigs:
		zlog.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-conn.Done():
		zlog.Info().Msg("chat connection ended")
	}

	if err := conn.Close(); err != nil {
		zlog.Debug().Err(err).Msg("error closing chat connection")
	}
	lb.Release()

	pending := journal.ListPending()
	if len(pending) > 0 {
		zlog.Warn().Int("count", len(pending)).Msg("unacknowledged deliveries at shutdown")
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.DataAccess, error) {
	if cfg.Driver == config.StoreDriverSQLite {
		return store.NewSQLiteStore(ctx, cfg.Path)
	}
	return store.NewInMemoryStore(), nil
}

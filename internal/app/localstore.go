package app

import (
	"taskdesk/internal/config"
	"taskdesk/internal/localstore"
)

var globalLocalStore *localstore.Store

// MustOpenLocalStore opens the durable store that keeps rate-limit
// windows and lockout records across restarts.
func MustOpenLocalStore() {
	cfg := config.Global().Security

	store, err := localstore.Open(cfg.DataDir, "security")
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("data_dir", cfg.DataDir).
			Msg("failed to open local store")
		panic(err)
	}
	globalLocalStore = store

	globalLogger.Info().
		Str("data_dir", cfg.DataDir).
		Msg("opened local store")
}

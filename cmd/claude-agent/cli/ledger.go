package cli

import (
	"context"
	"log/slog"

	"claude-agent/internal/config"
	"claude-agent/internal/db"
)

// sessionRecorder adapts the SQLite store to the chat recorder interface.
// Writes are best-effort: failures are logged and swallowed so a broken
// ledger never interrupts a conversation.
type sessionRecorder struct {
	store *db.Store
	id    string
}

func (r *sessionRecorder) RecordTurn(ctx context.Context, inputTokens, outputTokens int, costUSD float64) {
	if err := r.store.RecordTurn(ctx, r.id, inputTokens, outputTokens, costUSD); err != nil {
		slog.Warn("could not record turn in usage ledger", "session", db.ShortID(r.id), "error", err)
	}
}

func (r *sessionRecorder) End(ctx context.Context) {
	if err := r.store.EndSession(ctx, r.id); err != nil {
		slog.Warn("could not close usage ledger session", "session", db.ShortID(r.id), "error", err)
	}
}

// openRecorder opens the usage ledger and starts a session row. When the
// ledger cannot be opened the chat proceeds without it: callers get a nil
// recorder and a no-op closer.
func openRecorder(ctx context.Context, cfg *config.Config, mode string) (*sessionRecorder, func()) {
	store, err := openStore(cfg)
	if err != nil {
		slog.Warn("usage ledger unavailable", "path", cfg.DBPath, "error", err)
		return nil, func() {}
	}
	id, err := store.CreateSession(ctx, cfg.Model, mode)
	if err != nil {
		slog.Warn("could not start usage ledger session", "error", err)
		store.Close()
		return nil, func() {}
	}
	return &sessionRecorder{store: store, id: id}, func() { store.Close() }
}

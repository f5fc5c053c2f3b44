package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"claude-agent/internal/db"

	"github.com/spf13/cobra"
)

func runHistoryWithTestConfig(t *testing.T, configPath string, asJSON bool) string {
	t.Helper()
	prevCfgPath := cfgPath
	prevJSON := jsonOut
	cfgPath = configPath
	jsonOut = asJSON
	t.Cleanup(func() {
		cfgPath = prevCfgPath
		jsonOut = prevJSON
	})

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return captureStdout(t, func() error {
		return runHistory(cmd, nil)
	})
}

func TestRunHistoryEmpty(t *testing.T) {
	tmp := t.TempDir()
	cfg := writeTestConfig(t, tmp, "")

	out := runHistoryWithTestConfig(t, cfg, false)
	if strings.TrimSpace(out) != "No sessions recorded." {
		t.Fatalf("output = %q", out)
	}
}

func TestRunHistoryEmptyJSON(t *testing.T) {
	tmp := t.TempDir()
	cfg := writeTestConfig(t, tmp, "")

	out := runHistoryWithTestConfig(t, cfg, true)
	var sessions []map[string]any
	if err := json.Unmarshal([]byte(out), &sessions); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}

func TestRunHistoryListsSessionsWithTotals(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()
	cfg := writeTestConfig(t, tmp, "")

	store, err := db.Open(filepath.Join(tmp, "history.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	id, err := store.CreateSession(ctx, "claude-3-5-sonnet-20240620", db.ModeInteractive)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := store.RecordTurn(ctx, id, 220, 90, 0.00201); err != nil {
		t.Fatalf("record turn: %v", err)
	}
	if err := store.EndSession(ctx, id); err != nil {
		t.Fatalf("end session: %v", err)
	}
	store.Close()

	out := runHistoryWithTestConfig(t, cfg, false)
	if !strings.Contains(out, db.ShortID(id)) {
		t.Errorf("output missing session id:\n%s", out)
	}
	if !strings.Contains(out, "claude-3-5-sonnet-20240620") {
		t.Errorf("output missing model:\n%s", out)
	}
	if !strings.Contains(out, "interactive") {
		t.Errorf("output missing mode:\n%s", out)
	}
	if !strings.Contains(out, "$0.0020") {
		t.Errorf("output missing cost:\n%s", out)
	}
	if !strings.Contains(out, "TOTAL") {
		t.Errorf("output missing totals row:\n%s", out)
	}
	if !strings.Contains(out, "1 sessions") {
		t.Errorf("output missing session count:\n%s", out)
	}
}

package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func runModelsWithTestConfig(t *testing.T, configPath string, asJSON bool) string {
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
		return runModels(cmd, nil)
	})
}

func TestRunModelsTable(t *testing.T) {
	tmp := t.TempDir()
	cfg := writeTestConfig(t, tmp, "")

	out := runModelsWithTestConfig(t, cfg, false)
	if !strings.Contains(out, "claude-3-5-sonnet") {
		t.Errorf("output missing sonnet row:\n%s", out)
	}
	if !strings.Contains(out, "$3.00") || !strings.Contains(out, "$15.00") {
		t.Errorf("output missing sonnet rates:\n%s", out)
	}
	if !strings.Contains(out, "Configured: claude-3-5-sonnet-20240620") {
		t.Errorf("output missing configured model:\n%s", out)
	}
}

func TestRunModelsJSON(t *testing.T) {
	tmp := t.TempDir()
	cfg := writeTestConfig(t, tmp, "")

	out := runModelsWithTestConfig(t, cfg, true)
	var rates []struct {
		Model  string  `json:"model"`
		Input  float64 `json:"input_per_1m"`
		Output float64 `json:"output_per_1m"`
	}
	if err := json.Unmarshal([]byte(out), &rates); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	found := false
	for _, r := range rates {
		if r.Model == "claude-3-opus" {
			found = true
			if r.Input != 15.00 || r.Output != 75.00 {
				t.Errorf("opus rates = %g/%g", r.Input, r.Output)
			}
		}
	}
	if !found {
		t.Fatalf("opus missing from JSON output: %s", out)
	}
}

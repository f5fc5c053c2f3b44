package cli

import (
	"fmt"

	"claude-agent/internal/chat"
	"claude-agent/internal/db"
	"claude-agent/internal/llm"
	"claude-agent/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Full-screen chat interface",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyConfigLogLevel(cfg)

	backend, err := llm.NewAnthropicProvider(cfg)
	if err != nil {
		return err
	}

	recorder, closeLedger := openRecorder(cmd.Context(), cfg, db.ModeTUI)
	defer closeLedger()

	var rec chat.Recorder
	if recorder != nil {
		rec = recorder
	}
	model := tui.NewModel(backend, cfg, rec)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui error: %w", err)
	}

	// Back on the normal screen: print the same summary as line mode.
	if m, ok := finalModel.(tui.Model); ok {
		in, out := m.Totals()
		fmt.Printf("\n--- Session Summary ---\n")
		fmt.Printf("Total Input Tokens:  %d\n", in)
		fmt.Printf("Total Output Tokens: %d\n", out)
		fmt.Println("-----------------------")
	}
	if recorder != nil {
		recorder.End(cmd.Context())
	}
	return nil
}

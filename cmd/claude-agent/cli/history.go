package cli

import (
	"fmt"
	"strings"

	"claude-agent/internal/cost"
	"claude-agent/internal/db"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sessions from the usage ledger",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum sessions to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.ListRecentSessions(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	if jsonOut {
		printJSON(sessions)
		return nil
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded.")
		return nil
	}

	fmt.Printf("%-10s %-28s %-12s %6s %9s %9s %10s  %s\n",
		"SESSION", "MODEL", "MODE", "TURNS", "INPUT", "OUTPUT", "COST", "STARTED")
	fmt.Println(strings.Repeat("-", 105))
	for _, cs := range sessions {
		fmt.Printf("%-10s %-28s %-12s %6d %9d %9d %10s  %s\n",
			db.ShortID(cs.ID), truncate(cs.Model, 28), cs.Mode, cs.Turns,
			cs.InputTokens, cs.OutputTokens, cost.FormatUSD(cs.CostUSD), cs.StartedAt)
	}

	sum, err := store.Summarize(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println(strings.Repeat("-", 105))
	fmt.Printf("%-10s %-28s %-12s %6d %9d %9d %10s\n",
		"TOTAL", fmt.Sprintf("%d sessions", sum.Sessions), "", sum.Turns,
		sum.InputTokens, sum.OutputTokens, cost.FormatUSD(sum.CostUSD))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

package cli

import (
	"fmt"
	"sort"
	"strings"

	"claude-agent/internal/cost"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List model families with known pricing",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cost.ModelRates))
	for name := range cost.ModelRates {
		names = append(names, name)
	}
	sort.Strings(names)

	if jsonOut {
		type modelRate struct {
			Model  string  `json:"model"`
			Input  float64 `json:"input_per_1m"`
			Output float64 `json:"output_per_1m"`
		}
		rates := make([]modelRate, 0, len(names))
		for _, name := range names {
			r := cost.ModelRates[name]
			rates = append(rates, modelRate{Model: name, Input: r.Input, Output: r.Output})
		}
		printJSON(rates)
		return nil
	}

	fmt.Printf("%-22s %12s %12s\n", "MODEL", "INPUT/1M", "OUTPUT/1M")
	fmt.Println(strings.Repeat("-", 48))
	for _, name := range names {
		r := cost.ModelRates[name]
		fmt.Printf("%-22s %12s %12s\n", name,
			fmt.Sprintf("$%.2f", r.Input), fmt.Sprintf("$%.2f", r.Output))
	}
	fmt.Println()
	fmt.Printf("Configured: %s (%s)\n", cfg.Model, cost.FormatRate(cfg.Model))
	return nil
}

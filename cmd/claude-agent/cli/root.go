package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"claude-agent/internal/chat"
	"claude-agent/internal/config"
	"claude-agent/internal/db"
	"claude-agent/internal/llm"

	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	verbose     bool
	jsonOut     bool
	message     string
	interactive bool
	version     = config.Version
)

var rootCmd = &cobra.Command{
	Use:     "claude-agent",
	Short:   "Chat with Claude from the terminal",
	Long:    "Claude Agent is a terminal client for the Anthropic Messages API with per-turn cost tracking.",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	RunE:          runChat,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output JSON")
	rootCmd.Flags().StringVarP(&message, "message", "m", "", "send a single message and print the bare reply")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "interactive conversation mode (the default)")
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

// runChat is the default command: a one-shot exchange when --message is
// given, the interactive loop otherwise. The --interactive flag is accepted
// but carries no extra meaning since interactive is already the default.
func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyConfigLogLevel(cfg)

	backend, err := llm.NewAnthropicProvider(cfg)
	if err != nil {
		return err
	}

	mode := db.ModeInteractive
	if message != "" {
		mode = db.ModeOneShot
	}
	recorder, closeLedger := openRecorder(cmd.Context(), cfg, mode)
	defer closeLedger()

	opts := chat.Options{
		SystemPrompt: cfg.SystemPrompt,
		Model:        cfg.Model,
	}
	if recorder != nil {
		opts.Recorder = recorder
	}
	session := chat.New(backend, opts)

	if message != "" {
		return session.RunOnce(cmd.Context(), message)
	}
	return session.Run(cmd.Context())
}

// resolveConfigPath determines which config file to use.
// Priority: --config flag > ./claude-agent.toml > ~/.config/claude-agent/config.toml.
// An empty result means no file exists and the built-in defaults apply.
func resolveConfigPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	if _, err := os.Stat("claude-agent.toml"); err == nil {
		return "claude-agent.toml"
	}
	if globalPath, err := config.GlobalConfigPath(); err == nil {
		if _, err := os.Stat(globalPath); err == nil {
			return globalPath
		}
	}
	return ""
}

func loadConfig() (*config.Config, error) {
	// An explicitly requested config file must exist; the default locations
	// are optional.
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err != nil {
			return nil, fmt.Errorf("config file not found: %s", cfgPath)
		}
	}
	return config.Load(resolveConfigPath())
}

// applyConfigLogLevel honors log_level from the config file. The --verbose
// flag still wins.
func applyConfigLogLevel(cfg *config.Config) {
	if verbose {
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
}

func openStore(cfg *config.Config) (*db.Store, error) {
	// Clean up orphaned WAL sidecar files if the main DB was deleted.
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		_ = os.Remove(cfg.DBPath + "-shm")
		_ = os.Remove(cfg.DBPath + "-wal")
	}
	return db.Open(cfg.DBPath)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

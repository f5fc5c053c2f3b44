package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"claude-agent/internal/config"

	"github.com/spf13/cobra"
)

const configTemplate = `# Claude Agent configuration. Every key is optional; the built-in
# defaults apply to anything left out or commented.

model = "claude-3-5-sonnet-20240620"
max_tokens = 4096
temperature = 0.7

# system_prompt = "You are a helpful AI assistant."

# The key file holds the raw API key on a single line.
# Defaults to $HOME/.api/anthropic1.
# key_file = "/home/you/.api/anthropic1"

# base_url = "https://api.anthropic.com"
# api_version = "2023-06-01"

# Where the usage ledger lives. Defaults to the per-user data directory.
# db_path = "/home/you/.local/share/claude-agent/history.db"

# log_level = "info"
`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config in $EDITOR",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := cfgPath
	if path == "" {
		var err error
		path, err = config.GlobalConfigPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
			return fmt.Errorf("write config template: %w", err)
		}
		fmt.Printf("Created %s\n", path)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	c := exec.Command(editor, path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("open editor: %w", err)
	}
	return nil
}

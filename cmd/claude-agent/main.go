package main

import (
	"os"

	"claude-agent/cmd/claude-agent/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

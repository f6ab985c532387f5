// Package cmd implements the memento command-line interface: the MCP server,
// an interactive chat assistant, and admin helpers.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mementolabs/memento-go/pkg/core"
)

const version = "0.1.0"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "memento",
		Short: "Per-user memory service with natural language commands",
		Long:  longRoot,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"path to a JSON config file (default: environment variables and .env)",
	)
}

// loadConfig resolves configuration from the --config file when given,
// otherwise from environment variables and any discovered .env file.
func loadConfig() (*core.Config, error) {
	if cfgFile != "" {
		return core.LoadConfigFromJSON(cfgFile)
	}
	return core.LoadConfigFromEnv()
}

var longRoot = `
memento stores and recalls per-user memories from natural language commands.

Memories live in the configured storage backend (JSON files, SQLite, or
PostgreSQL) and are reachable through MCP tools, an interactive assistant,
or the Go client library.
`

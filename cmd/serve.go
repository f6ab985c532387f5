package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/mementolabs/memento-go/pkg/core"
	"github.com/mementolabs/memento-go/pkg/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the memory tools over MCP on stdio",
	Long:  longServe,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client, err := core.NewClient(cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		log.Info("starting memento MCP server",
			"provider", cfg.Storage.Provider,
			"version", version,
		)

		s := server.NewMCPServer(
			"memento",
			version,
			server.WithLogging(),
		)
		tools.NewMemoryTools(client).Register(s)

		return server.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

var longServe = `
Serve the six memory tools (store_memory, recall_memories, get_memory_summary,
parse_memory_command, delete_memory, list_memory_users) over MCP on stdio.

Examples:
  # Serve with the default file backend
  memento serve

  # Serve against SQLite
  MEMENTO_STORAGE_PROVIDER=sqlite SQLITE_PATH=./memento.db memento serve
`

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mementolabs/memento-go/pkg/assistant"
	"github.com/mementolabs/memento-go/pkg/core"
)

var (
	chatUserFlag string

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Chat with the memory assistant",
		Long:  longChat,
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

			a, err := assistant.New(cfg, client)
			if err != nil {
				return err
			}

			session := a.NewSession(chatUserFlag)
			log.Info("chat session started", "user", chatUserFlag, "session", session.ID)
			fmt.Println("Talk to Memento. Type 'exit' to quit.")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				reply, err := a.Chat(cmd.Context(), session, line)
				if err != nil {
					log.Error("chat turn failed", "error", err)
					continue
				}
				fmt.Println(reply)
			}
		},
	}
)

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatUserFlag, "user", "u", "", "user ID owning this session")
	_ = chatCmd.MarkFlagRequired("user")
}

var longChat = `
Start an interactive chat session with the memory assistant. The assistant
stores and recalls memories for the given user through tool calls against
the configured backend.

Requires OPENAI_API_KEY (and optionally OPENAI_MODEL, OPENAI_BASE_URL).

Example:
  memento chat --user alice
`

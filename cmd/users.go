package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mementolabs/memento-go/pkg/core"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users with stored memories",
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

		users, err := client.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("no users with stored memories")
			return nil
		}

		for _, user := range users {
			summary, err := client.Summary(cmd.Context(), user)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%d memories\t%d recent\t%s\n",
				summary.UserID,
				summary.TotalMemories,
				summary.RecentMemories,
				summary.Location,
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
}

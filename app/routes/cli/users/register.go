package users

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute/pkg/module"
)

func init() {
	module.Register("app.routes.cli.users.register", module.Exports{"router": RegisterCmd()})
}

// RegisterCmd prints the registration message for a user.
func RegisterCmd() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "register <user>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id <= 0 {
				return fmt.Errorf("--id must be positive")
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "User: %d - %s registered.\n", id, args[0])
			return err
		},
	}
	cmd.Flags().IntVar(&id, "id", 1, "User ID")

	return cmd
}

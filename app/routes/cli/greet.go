// Package cliroutes holds the demo command route modules. A file's path
// under app/routes/cli is its command name: greet.go is "greet",
// users/register.go is "users_register".
package cliroutes

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute/pkg/module"
)

func init() {
	module.Register("app.routes.cli.greet", module.Exports{"router": GreetCmd()})
}

// GreetCmd prints a greeting.
func GreetCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "greet",
		Short: "Print a greeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Hello, %s!\n", name)
			return err
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "world", "Name to greet")

	return cmd
}

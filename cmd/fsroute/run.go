package main

import (
	stderrors "errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute/internal/config"
	"github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/router"
)

func runCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Run a command route",
		Long: `Load the cli route folder into a command tree and execute it.

Arguments after "--" are handed to the loaded tree, so

  fsroute run -- greet --name gopher

runs the command defined in app/routes/cli/greet.go.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}
			return runRoutes(cmd, cfg, args, newLogger(cmd.ErrOrStderr(), flags.verbose))
		},
	}
}

// runRoutes binds the cli routes of cfg into a fresh root and executes it
// with args.
func runRoutes(cmd *cobra.Command, cfg *config.Config, args []string, logger *slog.Logger) error {
	root, err := cfg.Folder(string(router.CLI))
	if err != nil {
		return err
	}

	tree := &cobra.Command{
		Use:           "fsroute run --",
		Short:         "Commands loaded from the cli route folder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	tree.SetOut(cmd.OutOrStdout())
	tree.SetErr(cmd.ErrOrStderr())

	opts := append(router.ConfigOptions(cfg), router.WithLogger(logger))
	l, err := router.NewLoader(root, router.CLI, opts...)
	if err != nil {
		return err
	}
	if _, err := l.Load(cmd.Context(), tree); err != nil {
		if stderrors.Is(err, router.ErrRootNotFound) {
			return errors.New("E201").WithLocation(root)
		}
		return errors.New("E203").WithLocation(root).Wrap(err)
	}

	if !tree.HasSubCommands() {
		return errors.New("E302").WithLocation(root)
	}

	tree.SetArgs(args)
	return tree.ExecuteContext(cmd.Context())
}

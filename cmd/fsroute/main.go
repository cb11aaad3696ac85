package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	_ "github.com/vango-dev/fsroute/app/routes"
	"github.com/vango-dev/fsroute/internal/config"
	"github.com/vango-dev/fsroute/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	noColor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "fsroute",
		Short: "Filesystem routes for HTTP, stream and CLI hosts",
		Long: `fsroute binds route modules found under a directory tree into a host.

The path of every file under a routes folder becomes its route:

  http    app/routes/http/api/v1/users/_user_id_/index.go → /api/v1/users/{user_id}
  stream  app/routes/stream/users/register.go             → topic users.register
  cli     app/routes/cli/users/register.go                → command users_register

Route folders are configured in watcher_config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", config.ConfigFileName, "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		serveCmd(flags),
		routesCmd(flags),
		runCmd(flags),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig reads .env next to the config file, then the config itself.
// The default file name is searched for upwards from the working directory.
func loadConfig(path string) (*config.Config, error) {
	if path == config.ConfigFileName && !config.Exists(".") {
		if found, err := config.FindConfig("."); err == nil {
			path = found
		}
	}
	if err := config.LoadDotenv(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return config.LoadFile(path)
}

// newLogger returns a text logger on w.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}

package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute/internal/config"
	"github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/mux"
	"github.com/vango-dev/fsroute/pkg/router"
	"github.com/vango-dev/fsroute/pkg/stream"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	var framework string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes of each configured folder",
		Long: `Scan the configured route folders, bind them into a throwaway host and
print the resulting route table together with any files that failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), flags.verbose)

			frameworks, err := selectFrameworks(cfg, framework)
			if err != nil {
				return err
			}
			for _, fw := range frameworks {
				if err := printRoutes(cmd.Context(), cmd.OutOrStdout(), cfg, fw, router.WithLogger(logger)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&framework, "framework", "f", "", "Only list this framework (http, stream or cli)")
	return cmd
}

// selectFrameworks returns the frameworks to list: the one named, or every
// framework with a configured folder.
func selectFrameworks(cfg *config.Config, name string) ([]router.Framework, error) {
	if name != "" {
		fw, err := router.ParseFramework(name)
		if err != nil {
			return nil, errors.New("E202").WithDetail(name).Wrap(err)
		}
		return []router.Framework{fw}, nil
	}

	var out []router.Framework
	for _, tag := range cfg.Frameworks() {
		fw, err := router.ParseFramework(tag)
		if err != nil {
			continue
		}
		out = append(out, fw)
	}
	return out, nil
}

// newHost returns an empty host for fw.
func newHost(fw router.Framework) any {
	switch fw {
	case router.HTTP:
		return mux.New()
	case router.Stream:
		return stream.NewBroker()
	default:
		return &cobra.Command{Use: "fsroute"}
	}
}

func printRoutes(ctx context.Context, w io.Writer, cfg *config.Config, fw router.Framework, extra ...router.Option) error {
	root, err := cfg.Folder(string(fw))
	if err != nil {
		return err
	}
	l, err := router.NewLoader(root, fw, append(router.ConfigOptions(cfg), extra...)...)
	if err != nil {
		return err
	}

	host := newHost(fw)
	fmt.Fprintf(w, "\n%s %s\n", bold(string(fw)), root)

	report, err := l.Load(ctx, host)
	if stderrors.Is(err, router.ErrRootNotFound) {
		warn(w, "routes root does not exist")
		return nil
	}
	if err != nil {
		return errors.New("E203").WithLocation(root).Wrap(err)
	}

	routes := l.Routes()
	if len(routes) == 0 {
		info(w, "no routes")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, r := range routes {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", router.BindingName(r.Path, fw), r.Module, r.File)
		}
		tw.Flush()
	}

	if m, ok := host.(*mux.Mux); ok && len(routes) > 0 {
		fmt.Fprintln(w)
		for _, ri := range m.Routes() {
			info(w, "%-7s %s", ri.Method, ri.Pattern)
		}
	}

	for _, f := range report.Failures {
		errorMsg(w, "%s: %v", f.File, f.Err)
	}
	if len(report.Failures) == 0 {
		success(w, "%d routes", len(routes))
	}
	return nil
}

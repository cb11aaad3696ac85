package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/fsroute/internal/config"
	"github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/mux"
	"github.com/vango-dev/fsroute/pkg/router"
	"github.com/vango-dev/fsroute/pkg/stream"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	addr   string
	watch  bool
	strict bool
}

func serveCmd(flags *globalFlags) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve HTTP and stream routes",
		Long: `Load the http and stream route folders and serve them.

HTTP routes are mounted on the server root. Stream routes are subscribed on
an in-process broker that is reachable over a websocket at the stream path.
With --watch, route folders are re-scanned when files change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.ErrOrStderr(), flags, opts, cmd.Flags().Changed("watch"), cmd.Flags().Changed("strict"))
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (overrides config)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-scan route folders on change")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail on the first route error")

	return cmd
}

// server bundles the hosts and loaders built from a config.
type server struct {
	cfg     *config.Config
	logger  *slog.Logger
	mux     *mux.Mux
	broker  *stream.Broker
	gateway *stream.Gateway
	loaders []hostLoader
}

type hostLoader struct {
	loader *router.Loader
	host   any
}

func newServer(cfg *config.Config, logger *slog.Logger, extra ...router.Option) (*server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := router.NewMetrics(router.WithRegistry(registry))

	s := &server{
		cfg:    cfg,
		logger: logger,
		broker: stream.NewBroker(stream.WithLogger(logger)),
	}
	s.gateway = stream.NewGateway(s.broker)
	s.mux = mux.New(
		mux.WithMiddleware(
			middleware.RequestID,
			middleware.RealIP,
			mux.Tracing(),
			mux.Metrics(mux.WithMetricsRegistry(registry)),
			accessLog(logger),
			middleware.Recoverer,
		),
		mux.WithRoutes(func(r chi.Router) {
			r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				io.WriteString(w, "ok")
			})
			r.Handle(cfg.Server.MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			r.Handle(cfg.Server.StreamPath, s.gateway)
		}),
	)

	opts := append(router.ConfigOptions(cfg),
		router.WithLogger(logger),
		router.WithMetrics(metrics),
	)
	opts = append(opts, extra...)

	hosts := map[router.Framework]any{
		router.HTTP:   s.mux,
		router.Stream: s.broker,
	}
	for _, fw := range []router.Framework{router.HTTP, router.Stream} {
		root, err := cfg.Folder(string(fw))
		if err != nil {
			logger.Debug("no route folder configured", "framework", fw)
			continue
		}
		l, err := router.NewLoader(root, fw, opts...)
		if err != nil {
			return nil, err
		}
		s.loaders = append(s.loaders, hostLoader{loader: l, host: hosts[fw]})
	}
	return s, nil
}

// load performs the initial scan of every configured folder.
func (s *server) load(ctx context.Context) error {
	for _, hl := range s.loaders {
		report, err := hl.loader.Load(ctx, hl.host)
		if stderrors.Is(err, router.ErrRootNotFound) {
			s.logger.Warn("routes root does not exist", "root", hl.loader.Root())
			continue
		}
		if err != nil {
			return errors.New("E203").
				WithLocation(hl.loader.Root()).
				Wrap(err)
		}
		s.logger.Info("routes loaded",
			"framework", hl.loader.Framework(),
			"routes", len(hl.loader.Table()),
			"failures", len(report.Failures),
		)
	}
	return nil
}

func runServe(ctx context.Context, out io.Writer, flags *globalFlags, opts *serveOptions, watchSet, strictSet bool) error {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if watchSet {
		cfg.Watch = opts.watch
	}
	if strictSet {
		cfg.Strict = opts.strict
	}

	// Stream route modules read their channel names from the environment.
	for key, value := range map[string]string{
		config.EnvInputChannel:  cfg.Stream.InputChannel,
		config.EnvOutputChannel: cfg.Stream.OutputChannel,
	} {
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	logger := newLogger(out, flags.verbose)
	s, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	if err := s.load(ctx); err != nil {
		return err
	}
	defer s.gateway.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("E301").WithDetail(cfg.Server.Addr).Wrap(err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Watch {
		for _, hl := range s.loaders {
			hl := hl
			g.Go(func() error {
				err := hl.loader.Watch(ctx, hl.host)
				if stderrors.Is(err, router.ErrRootNotFound) {
					return nil
				}
				return err
			})
		}
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// accessLog logs one line per request.
func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

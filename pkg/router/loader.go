package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/vango-dev/fsroute/internal/dev"
	"github.com/vango-dev/fsroute/pkg/module"
	"github.com/vango-dev/fsroute/pkg/routepath"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultHandlerName is the export looked up in every route module.
	DefaultHandlerName = "router"

	// DefaultPackage is the root segment module paths are anchored at.
	DefaultPackage = "app"
)

// Option configures a Loader.
type Option func(*Loader)

// WithHandlerName sets the export to bind (default "router").
func WithHandlerName(name string) Option {
	return func(l *Loader) {
		l.handlerName = name
	}
}

// WithCatalog sets the module catalog (default module.Default).
func WithCatalog(c *module.Catalog) Option {
	return func(l *Loader) {
		l.catalog = c
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithStrict makes the first per-file error abort the scan.
func WithStrict(strict bool) Option {
	return func(l *Loader) {
		l.strict = strict
	}
}

// WithSanitize toggles segment sanitization (default on).
func WithSanitize(sanitize bool) Option {
	return func(l *Loader) {
		l.translator.Sanitize = sanitize
	}
}

// WithExtension sets the route file extension (default ".go").
func WithExtension(ext string) Option {
	return func(l *Loader) {
		l.extension = ext
	}
}

// WithPackage sets the segment module paths are anchored at (default "app").
// See routepath.Anchor.
func WithPackage(pkg string) Option {
	return func(l *Loader) {
		l.pkg = pkg
	}
}

// WithAnchor sets the module path prefix explicitly, bypassing WithPackage.
func WithAnchor(anchor string) Option {
	return func(l *Loader) {
		l.anchor = anchor
		l.anchorSet = true
	}
}

// WithIgnore sets ignore patterns for the scan and the watcher
// (default dev.DefaultIgnore).
func WithIgnore(patterns ...string) Option {
	return func(l *Loader) {
		l.ignore = patterns
	}
}

// WithDebounce sets the watcher debounce (default 100ms).
func WithDebounce(d time.Duration) Option {
	return func(l *Loader) {
		l.debounce = d
	}
}

// WithMetrics records every scan in m.
func WithMetrics(m *Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

// WithTracer sets the tracer (default the global otel provider).
func WithTracer(tracer trace.Tracer) Option {
	return func(l *Loader) {
		l.tracer = tracer
	}
}

// WithOnReload is called after every scan triggered by Watch.
func WithOnReload(fn func(*Report, error)) Option {
	return func(l *Loader) {
		l.onReload = fn
	}
}

// Loader scans a routes root and keeps the host in sync with it.
//
// The loader remembers what it bound. Each Load computes the routes the
// tree yields now, diffs them against the previous scan and only applies
// the difference, so loading twice binds nothing new. Loads are serialized.
type Loader struct {
	root      string
	framework Framework

	handlerName string
	catalog     *module.Catalog
	logger      *slog.Logger
	strict      bool
	translator  routepath.Translator
	extension   string
	pkg         string
	anchor      string
	anchorSet   bool
	ignore      []string
	debounce    time.Duration
	metrics     *Metrics
	tracer      trace.Tracer
	onReload    func(*Report, error)

	mu    sync.Mutex
	table Table
}

// NewLoader creates a loader for the routes under root. It fails for an
// unsupported framework.
func NewLoader(root string, framework Framework, opts ...Option) (*Loader, error) {
	if !framework.Valid() {
		return nil, &UnsupportedFrameworkError{Framework: framework}
	}

	l := &Loader{
		root:        filepath.Clean(root),
		framework:   framework.Canonical(),
		handlerName: DefaultHandlerName,
		catalog:     module.Default,
		logger:      slog.Default(),
		translator:  routepath.Translator{Sanitize: true},
		extension:   DefaultExtension,
		pkg:         DefaultPackage,
		ignore:      dev.DefaultIgnore,
		debounce:    dev.DefaultDebounce,
		table:       make(Table),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.catalog == nil {
		l.catalog = module.Default
	}
	if l.tracer == nil {
		l.tracer = defaultTracer()
	}
	if !l.anchorSet {
		l.anchor = routepath.Anchor(l.root, l.pkg)
	}
	l.logger = l.logger.With("framework", string(l.framework))

	return l, nil
}

// Root returns the routes root.
func (l *Loader) Root() string { return l.root }

// Framework returns the loader's framework.
func (l *Loader) Framework() Framework { return l.framework }

// Table returns a copy of the routes currently bound.
func (l *Loader) Table() Table {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.Clone()
}

// Routes returns the routes currently bound, sorted by path.
func (l *Loader) Routes() []Route {
	return l.Table().Routes()
}

// LoadRoutes scans root once and binds every route module's handler into
// app. See Loader.Load.
func LoadRoutes(ctx context.Context, app any, root string, framework Framework, opts ...Option) (*Report, error) {
	l, err := NewLoader(root, framework, opts...)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, app)
}

// Load scans the root and applies the difference to app.
//
// Files whose module is not registered are logged and reported, and the
// scan continues. Other per-file errors (wrong handler type, duplicate
// route path, binding failures) are reported the same way unless the
// loader is strict, in which case the first one is returned. Bindings made
// before such an error stay in place.
func (l *Loader) Load(ctx context.Context, app any) (report *Report, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, span := l.startSpan(ctx)
	start := time.Now()
	report = &Report{Framework: l.framework, Root: l.root}
	defer func() {
		report.Duration = time.Since(start)
		l.metrics.observe(report, len(l.table), err)
		endSpan(span, report, err)
	}()

	if err := ctx.Err(); err != nil {
		return report, err
	}

	next, err := l.collect(report)
	if err != nil {
		return report, err
	}

	if err := l.apply(ctx, app, l.table.Diff(next), report); err != nil {
		return report, err
	}

	l.logger.Debug("routes loaded",
		"root", l.root,
		"added", len(report.Diff.Added),
		"removed", len(report.Diff.Removed),
		"changed", len(report.Diff.Changed),
		"failures", len(report.Failures),
		"skipped", report.Skipped,
	)
	return report, nil
}

// collect builds the table the tree yields now.
func (l *Loader) collect(report *Report) (Table, error) {
	files, err := NewScanner(l.root).ScanWithOptions(ScanOptions{
		Extension: l.extension,
		Ignore:    l.ignore,
	})
	if err != nil {
		return nil, err
	}
	report.Scanned = len(files)

	next := make(Table, len(files))
	for _, file := range files {
		modPath := routepath.ModulePath(file.Path, l.root, l.anchor)

		mod, err := l.catalog.Import(modPath)
		if err != nil {
			l.logger.Warn("failed to import module", "module", modPath, "file", file.Rel, "error", err)
			report.Failures = append(report.Failures, Failure{File: file.Rel, Module: modPath, Err: err})
			continue
		}

		handler, ok := mod.Lookup(l.handlerName)
		if !ok {
			l.logger.Debug("module has no handler", "module", modPath, "handler", l.handlerName)
			report.Skipped++
			continue
		}

		route := Route{
			Path:     l.translator.Derive(file.Path, l.root),
			File:     file.Rel,
			Module:   modPath,
			Revision: mod.Revision,
			Handler:  handler,
		}

		if prev, dup := next[route.Path]; dup {
			err := fmt.Errorf("%w: %s is already bound by %s", ErrDuplicateRoute, route.Path, prev.File)
			if ferr := l.fail(report, route, err); ferr != nil {
				return nil, ferr
			}
			continue
		}
		if err := CheckHandler(handler, l.framework); err != nil {
			if ferr := l.fail(report, route, err); ferr != nil {
				return nil, ferr
			}
			continue
		}

		next[route.Path] = route
	}
	return next, nil
}

// apply binds diff into app, keeping l.table equal to what is bound.
func (l *Loader) apply(ctx context.Context, app any, diff Diff, report *Report) error {
	for _, route := range diff.Removed {
		err := Unregister(app, route.Path, l.framework)
		delete(l.table, route.Path)
		if err != nil {
			if ferr := l.fail(report, route, err); ferr != nil {
				return ferr
			}
			continue
		}
		report.Diff.Removed = append(report.Diff.Removed, route)
		l.logger.Info("route removed", "path", route.Path, "module", route.Module)
	}

	for _, route := range diff.Changed {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !replacesOnRebind(app, l.framework) {
			if err := Unregister(app, route.Path, l.framework); err != nil && !errors.Is(err, ErrUnbindUnsupported) {
				delete(l.table, route.Path)
				if ferr := l.fail(report, route, err); ferr != nil {
					return ferr
				}
				continue
			}
		}
		if err := Register(app, route.Path, route.Handler, l.framework); err != nil {
			delete(l.table, route.Path)
			if ferr := l.fail(report, route, err); ferr != nil {
				return ferr
			}
			continue
		}
		l.table[route.Path] = route
		report.Diff.Changed = append(report.Diff.Changed, route)
		l.logger.Info("registered route", "path", route.Path, "module", route.Module, "reload", true)
	}

	for _, route := range diff.Added {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := Register(app, route.Path, route.Handler, l.framework); err != nil {
			if ferr := l.fail(report, route, err); ferr != nil {
				return ferr
			}
			continue
		}
		l.table[route.Path] = route
		report.Diff.Added = append(report.Diff.Added, route)
		l.logger.Info("registered route", "path", route.Path, "module", route.Module)
	}
	return nil
}

// fail records a per-file error. In strict mode it returns the error to
// abort with.
func (l *Loader) fail(report *Report, route Route, err error) error {
	report.Failures = append(report.Failures, Failure{File: route.File, Module: route.Module, Err: err})
	if l.strict {
		return fmt.Errorf("%s: %w", route.File, err)
	}
	l.logger.Error("route failed", "path", route.Path, "module", route.Module, "error", err)
	return nil
}

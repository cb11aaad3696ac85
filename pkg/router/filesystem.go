package router

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vango-dev/fsroute/internal/config"
	"github.com/vango-dev/fsroute/internal/dev"
)

// ConfigOptions translates the loader settings of cfg into options.
func ConfigOptions(cfg *config.Config) []Option {
	opts := []Option{
		WithHandlerName(cfg.Handler),
		WithPackage(cfg.Package),
		WithExtension(cfg.Extension),
		WithStrict(cfg.Strict),
		WithSanitize(cfg.SanitizeEnabled()),
		WithDebounce(cfg.Debounce),
	}
	if len(cfg.Ignore) > 0 {
		opts = append(opts, WithIgnore(cfg.Ignore...))
	}
	return opts
}

// LoadFilesystemRoutes reads the routes root for framework from the config
// file at configPath ("<framework>_folder") and loads it into app. A
// missing root directory is logged and is not an error. Options given here
// override the ones derived from the file.
func LoadFilesystemRoutes(ctx context.Context, app any, framework Framework, configPath string, opts ...Option) (*Loader, error) {
	if !framework.Valid() {
		return nil, &UnsupportedFrameworkError{Framework: framework}
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	root, err := cfg.Folder(string(framework))
	if err != nil {
		return nil, err
	}

	l, err := NewLoader(root, framework, append(ConfigOptions(cfg), opts...)...)
	if err != nil {
		return nil, err
	}

	if _, err := l.Load(ctx, app); err != nil {
		if errors.Is(err, ErrRootNotFound) {
			l.logger.Warn("routes root does not exist", "root", root)
			return l, nil
		}
		return l, err
	}
	return l, nil
}

// Watch re-scans root into app whenever a route file changes, until ctx is
// cancelled. Only the difference of each re-scan is applied.
func Watch(ctx context.Context, app any, root string, framework Framework, opts ...Option) error {
	l, err := NewLoader(root, framework, opts...)
	if err != nil {
		return err
	}
	return l.Watch(ctx, app)
}

// Watch re-scans the loader's root into app whenever a route file changes,
// until ctx is cancelled, then returns nil.
//
// Bursts of events are debounced and re-scans never overlap: events that
// arrive during a re-scan result in exactly one more.
func (l *Loader) Watch(ctx context.Context, app any) error {
	if info, err := os.Stat(l.root); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotFound, l.root)
	}

	w := dev.NewWatcher(dev.WatcherConfig{
		Paths:      []string{l.root},
		Ignore:     l.ignore,
		Extensions: []string{l.extension},
		Debounce:   l.debounce,
		Logger:     l.logger,
	})

	w.OnChange(func(changes []dev.Change) {
		l.logger.Info("reloading routes", "root", l.root, "changes", len(changes))

		report, err := l.Load(ctx, app)
		if err != nil && ctx.Err() == nil {
			l.logger.Error("reload failed", "root", l.root, "error", err)
		}
		if l.onReload != nil {
			l.onReload(report, err)
		}
	})

	l.logger.Info("watching routes", "root", l.root)
	if err := w.Start(ctx); err != nil {
		return err
	}
	l.logger.Debug("stopped watching routes", "root", l.root)
	return nil
}

package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/fsroute/pkg/routepath"
	"github.com/vango-dev/fsroute/pkg/stream"
)

// HTTPHost is a host for the http framework. chi.Router and *mux.Mux
// implement it.
type HTTPHost interface {
	Mount(pattern string, h http.Handler)
}

// StreamHost is a host for the stream framework. *stream.Broker implements
// it.
type StreamHost interface {
	Subscribe(topic string, h stream.Handler)
}

// CLIHost is a host for the cli framework. *cobra.Command implements it.
type CLIHost interface {
	AddCommand(cmds ...*cobra.Command)
}

type httpUnmounter interface {
	Unmount(pattern string)
}

type streamUnsubscriber interface {
	Unsubscribe(topic string)
}

type cliRemover interface {
	Commands() []*cobra.Command
	RemoveCommand(cmds ...*cobra.Command)
}

// BindingReplacer is implemented by hosts whose bind call overwrites an
// existing binding at the same path. The loader rebinds changed routes on
// such hosts without unbinding them first. *mux.Mux and *stream.Broker
// implement it.
type BindingReplacer interface {
	ReplacesBinding() bool
}

// replacesOnRebind reports whether Register on app swaps an existing
// binding in place. Register drops a same-named cobra command before adding
// the new one, so cli hosts that can remove commands always qualify.
func replacesOnRebind(app any, framework Framework) bool {
	if framework.Canonical() == CLI {
		_, ok := app.(cliRemover)
		return ok
	}
	r, ok := app.(BindingReplacer)
	return ok && r.ReplacesBinding()
}

// Register binds handler into app at path according to framework.
//
//	http:   app.Mount(path, handler)
//	stream: app.Subscribe(routepath.Topic(path), handler)        /a/b  → a.b
//	cli:    app.AddCommand(handler) named routepath.CommandName  /a/b/ → a_b
//
// The tags "fastapi", "faststream" and "typer" are aliases of the three
// above. Any other framework returns an *UnsupportedFrameworkError and binds
// nothing. A panic raised by the host is returned as ErrBindPanic.
func Register(app any, path string, handler any, framework Framework) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBindPanic, r)
		}
	}()

	switch framework.Canonical() {
	case HTTP:
		host, ok := app.(HTTPHost)
		if !ok {
			return hostMismatch(app, framework)
		}
		h, err := httpHandler(handler)
		if err != nil {
			return err
		}
		host.Mount(path, h)
		return nil

	case Stream:
		host, ok := app.(StreamHost)
		if !ok {
			return hostMismatch(app, framework)
		}
		h, err := streamHandler(handler)
		if err != nil {
			return err
		}
		topic := routepath.Topic(path)
		if topic == "" {
			return fmt.Errorf("%w: topic for %q", ErrEmptyBinding, path)
		}
		host.Subscribe(topic, h)
		return nil

	case CLI:
		host, ok := app.(CLIHost)
		if !ok {
			return hostMismatch(app, framework)
		}
		cmd, ok := handler.(*cobra.Command)
		if !ok || cmd == nil {
			return handlerMismatch(handler, framework)
		}
		name := routepath.CommandName(path)
		if name == "" {
			return fmt.Errorf("%w: command for %q", ErrEmptyBinding, path)
		}
		if remover, ok := app.(cliRemover); ok {
			removeCommand(remover, name)
		}
		cmd.Use = renameUse(cmd.Use, name)
		host.AddCommand(cmd)
		return nil

	default:
		return &UnsupportedFrameworkError{Framework: framework}
	}
}

// Unregister removes the binding Register made for path. Hosts without a
// way to remove bindings return ErrUnbindUnsupported.
func Unregister(app any, path string, framework Framework) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBindPanic, r)
		}
	}()

	switch framework.Canonical() {
	case HTTP:
		host, ok := app.(httpUnmounter)
		if !ok {
			return fmt.Errorf("%w: %T has no Unmount", ErrUnbindUnsupported, app)
		}
		host.Unmount(path)
		return nil

	case Stream:
		host, ok := app.(streamUnsubscriber)
		if !ok {
			return fmt.Errorf("%w: %T has no Unsubscribe", ErrUnbindUnsupported, app)
		}
		host.Unsubscribe(routepath.Topic(path))
		return nil

	case CLI:
		host, ok := app.(cliRemover)
		if !ok {
			return fmt.Errorf("%w: %T has no RemoveCommand", ErrUnbindUnsupported, app)
		}
		removeCommand(host, routepath.CommandName(path))
		return nil

	default:
		return &UnsupportedFrameworkError{Framework: framework}
	}
}

// BindingName returns what a route path is bound as under framework: the
// path itself for http, its topic for stream and its command name for cli.
func BindingName(path string, framework Framework) string {
	switch framework.Canonical() {
	case Stream:
		return routepath.Topic(path)
	case CLI:
		return routepath.CommandName(path)
	default:
		return path
	}
}

// CheckHandler reports whether handler can be bound under framework.
func CheckHandler(handler any, framework Framework) error {
	var err error
	switch framework.Canonical() {
	case HTTP:
		_, err = httpHandler(handler)
	case Stream:
		_, err = streamHandler(handler)
	case CLI:
		if cmd, ok := handler.(*cobra.Command); !ok || cmd == nil {
			err = handlerMismatch(handler, framework)
		}
	default:
		err = &UnsupportedFrameworkError{Framework: framework}
	}
	return err
}

func httpHandler(handler any) (http.Handler, error) {
	switch h := handler.(type) {
	case http.Handler:
		return h, nil
	case func(http.ResponseWriter, *http.Request):
		return http.HandlerFunc(h), nil
	default:
		return nil, handlerMismatch(handler, HTTP)
	}
}

func streamHandler(handler any) (stream.Handler, error) {
	switch h := handler.(type) {
	case stream.Handler:
		return h, nil
	case func(context.Context, stream.Message) (any, error):
		return stream.HandlerFunc(h), nil
	default:
		return nil, handlerMismatch(handler, Stream)
	}
}

func removeCommand(host cliRemover, name string) {
	for _, c := range host.Commands() {
		if c.Name() == name {
			host.RemoveCommand(c)
		}
	}
}

// renameUse replaces the first word of a cobra Use line, keeping the
// argument synopsis.
func renameUse(use, name string) string {
	if i := strings.IndexByte(strings.TrimSpace(use), ' '); i >= 0 {
		return name + strings.TrimSpace(use)[i:]
	}
	return name
}

func hostMismatch(app any, framework Framework) error {
	return fmt.Errorf("%w: %T cannot host %s routes", ErrHostMismatch, app, framework)
}

func handlerMismatch(handler any, framework Framework) error {
	return fmt.Errorf("%w: %T is not a %s handler", ErrHandlerType, handler, framework)
}

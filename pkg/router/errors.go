package router

import (
	"errors"
	"fmt"

	"github.com/vango-dev/fsroute/pkg/module"
)

var (
	// ErrUnsupportedFramework matches every *UnsupportedFrameworkError.
	ErrUnsupportedFramework = errors.New("unsupported framework")

	// ErrHostMismatch is returned when the host does not have the method
	// the framework binds through.
	ErrHostMismatch = errors.New("host does not support framework")

	// ErrHandlerType is returned when an exported handler has the wrong type
	// for the framework.
	ErrHandlerType = errors.New("handler has wrong type")

	// ErrDuplicateRoute is returned for the second file that derives a route
	// path already taken in the same scan.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrBindPanic wraps a panic raised by the host while binding.
	ErrBindPanic = errors.New("host panicked while binding")

	// ErrRootNotFound is returned when the routes root does not exist.
	ErrRootNotFound = errors.New("routes root not found")

	// ErrEmptyBinding is returned when the root route is bound to a
	// framework that needs a non-empty topic or command name.
	ErrEmptyBinding = errors.New("route path yields an empty binding name")

	// ErrUnbindUnsupported is returned by Unregister when the host cannot
	// remove bindings.
	ErrUnbindUnsupported = errors.New("host cannot unbind routes")
)

// UnsupportedFrameworkError is returned for framework tags other than
// http, stream and cli.
type UnsupportedFrameworkError struct {
	Framework Framework
}

func (e *UnsupportedFrameworkError) Error() string {
	return fmt.Sprintf("unsupported framework: %q", string(e.Framework))
}

// Is reports whether target is ErrUnsupportedFramework.
func (e *UnsupportedFrameworkError) Is(target error) bool {
	return target == ErrUnsupportedFramework
}

func isImportFailure(err error) bool {
	return errors.Is(err, module.ErrModuleNotFound)
}

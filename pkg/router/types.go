package router

import (
	"fmt"
	"time"

	"github.com/vango-dev/fsroute/internal/config"
)

// Framework selects how a handler is bound into its host.
type Framework string

const (
	// HTTP mounts an http.Handler on a host with Mount(pattern, handler).
	HTTP Framework = "http"

	// Stream subscribes a stream.Handler on a host with
	// Subscribe(topic, handler). The topic is the route path with "/"
	// replaced by ".".
	Stream Framework = "stream"

	// CLI adds a *cobra.Command to a host with AddCommand. The command name
	// is the route path with "/" replaced by "_".
	CLI Framework = "cli"
)

// Frameworks lists every supported framework tag.
var Frameworks = []Framework{HTTP, Stream, CLI}

// Canonical maps the aliases "fastapi", "faststream" and "typer" to HTTP,
// Stream and CLI. Other tags are returned unchanged.
func (f Framework) Canonical() Framework {
	return Framework(config.CanonicalFramework(string(f)))
}

// Valid reports whether f is a supported framework tag or alias.
func (f Framework) Valid() bool {
	switch f.Canonical() {
	case HTTP, Stream, CLI:
		return true
	}
	return false
}

func (f Framework) String() string {
	return string(f)
}

// ParseFramework validates s as a framework tag and returns its canonical
// form.
func ParseFramework(s string) (Framework, error) {
	f := Framework(s)
	if !f.Valid() {
		return "", &UnsupportedFrameworkError{Framework: f}
	}
	return f.Canonical(), nil
}

// RouteFile is a source file found under the routes root.
type RouteFile struct {
	// Path is the file path as walked (root joined with the relative path).
	Path string

	// Rel is the slash-separated path relative to the root.
	Rel string
}

// Route is a handler bound (or about to be bound) at a route path.
type Route struct {
	// Path is the derived route path, e.g. "/users/{user_id}".
	Path string

	// File is the source file the route was derived from.
	File string

	// Module is the dotted module path the handler was imported from.
	Module string

	// Revision is the module revision the handler was taken from.
	Revision uint64

	// Handler is the exported value bound into the host.
	Handler any
}

// Failure records a file that could not be turned into a bound route.
type Failure struct {
	File   string
	Module string
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.File, f.Module, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Report summarizes one scan.
type Report struct {
	Framework Framework
	Root      string

	// Diff is what the scan applied to the host. Routes that failed to
	// bind are not part of it.
	Diff Diff

	// Failures holds per-file errors, import failures included.
	Failures []Failure

	// Scanned is the number of source files considered.
	Scanned int

	// Skipped counts modules that exist but do not export the handler.
	Skipped int

	Duration time.Duration
}

// ImportFailures returns the failures caused by unregistered modules.
func (r *Report) ImportFailures() []Failure {
	var out []Failure
	for _, f := range r.Failures {
		if isImportFailure(f.Err) {
			out = append(out, f)
		}
	}
	return out
}

// Changed reports whether the scan bound or unbound anything.
func (r *Report) Changed() bool {
	return !r.Diff.Empty()
}

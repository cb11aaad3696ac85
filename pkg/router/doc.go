// Package router binds route modules found on disk into a host application.
//
// A routes root is a directory tree of Go files. Every file maps to a route
// path derived from its location and to a dotted module path under which
// the package that owns the file registers its exports (see pkg/module).
// The loader imports each module from the catalog, takes the exported
// handler (by default the export named "router") and binds it into the
// host according to a framework tag:
//
//	http    host.Mount("/users/{user_id}", handler)      http.Handler
//	stream  host.Subscribe("users.user_id", handler)     stream.Handler
//	cli     host.AddCommand(handler) named "users_list"  *cobra.Command
//
// # File Structure Convention
//
//	app/routes/http/
//	├── index.go               → /
//	├── hello/
//	│   └── world.go           → /hello/world
//	└── api/
//	    └── v1/
//	        └── users/
//	            ├── index.go       → /api/v1/users
//	            └── _user_id_/
//	                └── index.go   → /api/v1/users/{user_id}
//
// A segment spelled _name_ or containing [name] is a route parameter. Go
// packages cannot use brackets, so Go route trees use the underscore form.
//
// The framework tags "fastapi", "faststream" and "typer" are accepted as
// aliases of http, stream and cli.
//
// Each file's package registers itself in init:
//
//	func init() {
//	    module.Register("app.routes.http.hello.world", module.Exports{"router": Router()})
//	}
//
// # Loading
//
//	report, err := router.LoadRoutes(ctx, mux, "app/routes/http", router.HTTP)
//
// A file with no registered module is logged as an import failure and the
// scan continues. Loaders keep a table of what they bound, so re-running a
// scan only applies the difference; Watch does that on every file change.
//
// # Observability
//
// Scans are wrapped in a "router.Load" OpenTelemetry span, and NewMetrics
// exposes Prometheus counters for scans, bindings and failures.
package router

// Package module is the catalog of route modules.
//
// Route modules are ordinary Go packages linked into the binary. Each one
// registers what it exports under its dotted module path, usually from init:
//
//	func init() {
//	    module.Register("app.routes.http.hello.world", module.Exports{
//	        "router": newRouter(),
//	    })
//	}
//
// The router package discovers route files on disk, computes the same dotted
// path for every file and imports it from the catalog. A file whose module was
// never registered fails with ErrModuleNotFound.
package module

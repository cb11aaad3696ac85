// Package routes links every demo route module into the binary. Importing
// it registers the modules in module.Default.
package routes

import (
	_ "github.com/vango-dev/fsroute/app/routes/cli"
	_ "github.com/vango-dev/fsroute/app/routes/cli/users"
	_ "github.com/vango-dev/fsroute/app/routes/http/api"
	_ "github.com/vango-dev/fsroute/app/routes/http/api/v1/users"
	_ "github.com/vango-dev/fsroute/app/routes/http/api/v1/users/_user_id_"
	_ "github.com/vango-dev/fsroute/app/routes/http/hello"
	_ "github.com/vango-dev/fsroute/app/routes/stream"
	_ "github.com/vango-dev/fsroute/app/routes/stream/users"
)

package users

import (
	"context"

	streamroutes "github.com/vango-dev/fsroute/app/routes/stream"
	"github.com/vango-dev/fsroute/pkg/module"
	"github.com/vango-dev/fsroute/pkg/stream"
)

func init() {
	module.Register("app.routes.stream.users.register", module.Exports{"router": stream.HandlerFunc(register)})
}

// register answers the caller only; it does not publish.
func register(ctx context.Context, msg stream.Message) (any, error) {
	return streamroutes.Process(ctx, msg)
}

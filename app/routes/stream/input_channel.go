// Package streamroutes holds the demo stream route modules. A file's path
// under app/routes/stream is its topic: input_channel.go subscribes to
// "input_channel", users/register.go to "users.register".
package streamroutes

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vango-dev/fsroute/pkg/module"
	"github.com/vango-dev/fsroute/pkg/stream"
)

func init() {
	module.Register("app.routes.stream.input_channel", module.Exports{"router": Router()})
}

// User is the message published on the input channel.
type User struct {
	UserID int    `json:"user_id"`
	User   string `json:"user"`
}

// Validate checks the fields the processor relies on.
func (u User) Validate() error {
	if u.UserID <= 0 {
		return errors.New("user_id must be positive")
	}
	if u.User == "" {
		return errors.New("user is required")
	}
	return nil
}

// Process turns a registration into the output message.
func Process(_ context.Context, msg stream.Message) (any, error) {
	var u User
	if err := msg.Decode(&u); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return map[string]string{
		"message": fmt.Sprintf("User: %d - %s registered.", u.UserID, u.User),
	}, nil
}

// OutputChannel is read from OUTPUT_CHANNEL when a message is handled, so a
// .env loaded after init still applies.
func OutputChannel() string {
	if v := os.Getenv("OUTPUT_CHANNEL"); v != "" {
		return v
	}
	return "output_channel"
}

// Router processes registrations and publishes the result to the output
// channel.
func Router() stream.Handler {
	return stream.HandlerFunc(func(ctx context.Context, msg stream.Message) (any, error) {
		return stream.WithReply(OutputChannel(), stream.HandlerFunc(Process)).Handle(ctx, msg)
	})
}

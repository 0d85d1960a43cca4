// Package auditctx carries who initiated a change from the transport layer down to the services
// that write the board audit trail.
package auditctx

import "context"

// Sources of audited changes.
const (
	SourceAPI = "api"
	SourceCLI = "cli"
)

// Actor identifies the caller behind a change. UserID is empty for anonymous callers.
type Actor struct {
	UserID    string
	Username  string
	Source    string
	IPAddress string
	UserAgent string
}

type actorContextKey struct{}

// WithActor returns a derived context carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// FromContext extracts the actor stored by WithActor.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

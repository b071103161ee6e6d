package publishers

import "context"

// Publisher is a single vote event sink. Implementations holding network
// resources also implement io.Closer; Fanout.Close releases them.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

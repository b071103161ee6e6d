package watcher

import (
	"context"

	"github.com/samvad-hq/dblclient/pkg/async"
	"github.com/samvad-hq/dblclient/pkg/dbl"
	"github.com/samvad-hq/dblclient/pkg/publishers"
)

// API is the subset of the list client the watcher calls.
type API interface {
	GetVoters(botID string) (*async.Pending[[]dbl.SimpleUser], error)
	GetBot(botID string) (*async.Pending[dbl.Bot], error)
}

// Deduper remembers which votes were already announced.
type Deduper interface {
	SeenVote(key string) (bool, error)
	MarkVote(key string) error
}

// EventPublisher fans vote events out to the configured sinks and reports how many accepted it.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Recorder counts announced votes.
type Recorder interface {
	VotePublished(botID string)
}

type noopRecorder struct{}

func (noopRecorder) VotePublished(string) {}

type noopDeduper struct{}

func (noopDeduper) SeenVote(string) (bool, error) { return false, nil }
func (noopDeduper) MarkVote(string) error         { return nil }

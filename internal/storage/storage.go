// Package storage persists dedupe state for the vote watcher and the last
// reported stats snapshot.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/dblclient/internal/domain"
)

// Store tracks announced votes and the last reported stats snapshot.
type Store interface {
	Close() error
	SeenVote(key string) (bool, error)
	MarkVote(key string) error
	LoadStats() (domain.StatsSnapshot, bool, error)
	SaveStats(snapshot domain.StatsSnapshot) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	VoteTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	defaultVoteTTL         = 12 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.VoteTTL <= 0 {
		opts.VoteTTL = defaultVoteTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                   { return nil }
func (noopStore) SeenVote(string) (bool, error)                  { return false, nil }
func (noopStore) MarkVote(string) error                          { return nil }
func (noopStore) LoadStats() (domain.StatsSnapshot, bool, error) { return domain.StatsSnapshot{}, false, nil }
func (noopStore) SaveStats(domain.StatsSnapshot) error           { return nil }

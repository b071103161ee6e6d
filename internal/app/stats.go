package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/samvad-hq/dblclient/internal/domain"
	"github.com/samvad-hq/dblclient/internal/logger"
	"github.com/samvad-hq/dblclient/pkg/async"
	"github.com/samvad-hq/dblclient/pkg/decode"
)

// Stats reporter cycle results.
const (
	StatsPosted    = "posted"
	StatsUnchanged = "unchanged"
	StatsFailed    = "error"
)

// StatsAPI is the subset of the list client used to report server counts.
type StatsAPI interface {
	SetStats(serverCount int) (*async.Pending[decode.NoContent], error)
	SetShardStats(shardID, shardTotal, serverCount int) (*async.Pending[decode.NoContent], error)
	SetShardCounts(counts []int) (*async.Pending[decode.NoContent], error)
}

// SnapshotStore persists the last successfully reported snapshot.
type SnapshotStore interface {
	LoadStats() (domain.StatsSnapshot, bool, error)
	SaveStats(snapshot domain.StatsSnapshot) error
}

// StatsRecorder counts reporter cycles by result.
type StatsRecorder interface {
	StatsReported(result string)
}

// ReadStatsFile loads a snapshot written by the bot process.
func ReadStatsFile(path string) (domain.StatsSnapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.StatsSnapshot{}, fmt.Errorf("read stats file: %w", err)
	}
	var snap domain.StatsSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.StatsSnapshot{}, fmt.Errorf("decode stats file: %w", err)
	}
	if err := ValidateSnapshot(snap); err != nil {
		return domain.StatsSnapshot{}, err
	}
	return snap, nil
}

// ValidateSnapshot rejects snapshots that map to no stats call.
func ValidateSnapshot(s domain.StatsSnapshot) error {
	if (s.ShardID == nil) != (s.ShardCount == nil) {
		return errors.New("stats snapshot: shard_id and shard_count must be set together")
	}
	if len(s.Shards) > 0 && s.ShardID != nil {
		return errors.New("stats snapshot: shards cannot be combined with shard_id")
	}
	return nil
}

// PostStats sends the snapshot with the matching stats call and waits for the result.
func PostStats(ctx context.Context, api StatsAPI, s domain.StatsSnapshot) error {
	if err := ValidateSnapshot(s); err != nil {
		return err
	}

	var (
		p   *async.Pending[decode.NoContent]
		err error
	)
	switch {
	case len(s.Shards) > 0:
		p, err = api.SetShardCounts(s.Shards)
	case s.ShardID != nil:
		p, err = api.SetShardStats(*s.ShardID, *s.ShardCount, s.ServerCount)
	default:
		p, err = api.SetStats(s.ServerCount)
	}
	if err != nil {
		return err
	}
	_, err = p.Wait(ctx)
	return err
}

// StatsReporter posts the stats file whenever it differs from the last reported snapshot.
type StatsReporter struct {
	api      StatsAPI
	store    SnapshotStore
	path     string
	recorder StatsRecorder
	log      logger.Logger
}

// NewStatsReporter builds a reporter for the stats file at path.
func NewStatsReporter(api StatsAPI, store SnapshotStore, path string, recorder StatsRecorder, log logger.Logger) *StatsReporter {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &StatsReporter{api: api, store: store, path: path, recorder: recorder, log: log}
}

// ReportOnce runs one reporter cycle and returns its result.
func (r *StatsReporter) ReportOnce(ctx context.Context) (string, error) {
	result, err := r.report(ctx)
	if r.recorder != nil {
		r.recorder.StatsReported(result)
	}
	return result, err
}

func (r *StatsReporter) report(ctx context.Context) (string, error) {
	snap, err := ReadStatsFile(r.path)
	if err != nil {
		return StatsFailed, err
	}

	if r.store != nil {
		last, ok, err := r.store.LoadStats()
		if err != nil {
			r.log.WarnObj("last stats lookup failed", "stats_error", err.Error())
		} else if ok && last.Equal(snap) {
			return StatsUnchanged, nil
		}
	}

	if err := PostStats(ctx, r.api, snap); err != nil {
		return StatsFailed, fmt.Errorf("post stats: %w", err)
	}

	if r.store != nil {
		if err := r.store.SaveStats(snap); err != nil {
			r.log.WarnObj("saving stats snapshot failed", "stats_error", err.Error())
		}
	}
	r.log.InfoObj("stats posted", "stats_snapshot", snap)
	return StatsPosted, nil
}

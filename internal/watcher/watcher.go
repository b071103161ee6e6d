package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/dblclient/internal/domain"
	"github.com/samvad-hq/dblclient/internal/logger"
	"github.com/samvad-hq/dblclient/pkg/dbl"
	"github.com/samvad-hq/dblclient/pkg/publishers"
	"github.com/samvad-hq/dblclient/pkg/targets"
)

// Service polls voters for watched bots and announces new votes downstream.
type Service struct {
	api       API
	describer *Describer
	publisher EventPublisher
	deduper   Deduper
	recorder  Recorder
	log       logger.Logger
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRecorder sets the vote counter.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService wires a watcher with the API client, the event sinks and the seen-vote store.
func NewService(api API, pub EventPublisher, deduper Deduper, opts ...Option) *Service {
	s := &Service{
		api:       api,
		publisher: pub,
		deduper:   deduper,
		recorder:  noopRecorder{},
		log:       logger.NopLogger{},
		now:       time.Now,
	}
	if s.deduper == nil {
		s.deduper = noopDeduper{}
	}
	for _, opt := range opts {
		opt(s)
	}
	s.describer = NewDescriber(api, s.log)
	return s
}

// Run executes one polling pass for all targets.
func (s *Service) Run(ctx context.Context, watched []targets.Target) error {
	if s == nil || s.api == nil || s.publisher == nil {
		return fmt.Errorf("watcher service is not initialized")
	}
	if len(watched) == 0 {
		return fmt.Errorf("no targets configured for watching")
	}

	if errs := s.runAll(ctx, watched); len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runAll(ctx context.Context, watched []targets.Target) []error {
	var errs []error

	for i, t := range watched {
		if ctx.Err() != nil {
			return errs
		}

		if err := s.processTarget(ctx, t); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("target poll failed", "target_error", map[string]any{
				"bot_id": t.ID,
				"error":  err.Error(),
			})
		}

		if i < len(watched)-1 {
			if !sleep(ctx, t.RequestDelay()) {
				return errs
			}
		}
	}

	return errs
}

func (s *Service) processTarget(ctx context.Context, t targets.Target) error {
	p, err := s.api.GetVoters(t.ID)
	if err != nil {
		return fmt.Errorf("get voters for %s: %w", t.ID, err)
	}
	voters, err := p.Wait(ctx)
	if err != nil {
		return fmt.Errorf("get voters for %s: %w", t.ID, err)
	}

	fresh := s.filterNewVotes(t, voters)
	if len(fresh) == 0 {
		s.log.DebugObj("no new votes", "target_result", map[string]any{
			"bot_id":      t.ID,
			"voters_seen": len(voters),
		})
		return nil
	}

	info := s.describer.Describe(ctx, t)

	var errs []error
	published := 0
	for _, vote := range fresh {
		evt := publishers.NewVoteEvent(info.Name, info.Summary, vote)
		delivered, err := s.publisher.Publish(ctx, evt)
		if err != nil {
			errs = append(errs, fmt.Errorf("publish vote %s: %w", vote.Key(), err))
		}
		if delivered == 0 {
			continue
		}

		published++
		s.recorder.VotePublished(t.ID)
		if err := s.deduper.MarkVote(vote.Key()); err != nil {
			errs = append(errs, fmt.Errorf("mark vote %s: %w", vote.Key(), err))
		}
	}

	s.log.InfoObj("target poll completed", "target_result", map[string]any{
		"bot_id":          t.ID,
		"voters_seen":     len(voters),
		"new_votes":       len(fresh),
		"votes_published": published,
	})
	return errors.Join(errs...)
}

// filterNewVotes drops voters already announced and repeats within voters.
// Store lookup errors keep the vote.
func (s *Service) filterNewVotes(t targets.Target, voters []dbl.SimpleUser) []domain.Vote {
	observed := s.now().UTC()
	out := make([]domain.Vote, 0, len(voters))
	kept := make(map[string]struct{}, len(voters))
	for _, u := range voters {
		if u.ID == "" {
			s.log.WarnObj("voter without id skipped", "voter", map[string]any{
				"bot_id":   t.ID,
				"username": u.Username,
			})
			continue
		}
		vote := domain.Vote{
			BotID:      t.ID,
			UserID:     u.ID,
			Username:   u.Username,
			ObservedAt: observed,
		}
		key := vote.Key()
		if _, dup := kept[key]; dup {
			continue
		}
		seen, err := s.deduper.SeenVote(key)
		if err != nil {
			s.log.WarnObj("seen lookup failed", "dedupe_error", map[string]any{
				"vote":  key,
				"error": err.Error(),
			})
		} else if seen {
			continue
		}
		kept[key] = struct{}{}
		out = append(out, vote)
	}
	return out
}

// sleep waits for d or until ctx is done; it reports whether the full delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

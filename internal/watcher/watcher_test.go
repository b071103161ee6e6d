package watcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/dblclient/pkg/async"
	"github.com/samvad-hq/dblclient/pkg/dbl"
	"github.com/samvad-hq/dblclient/pkg/publishers"
	"github.com/samvad-hq/dblclient/pkg/targets"
)

// fakeAPI serves canned voters and bots per bot id.
type fakeAPI struct {
	voters    map[string][]dbl.SimpleUser
	bots      map[string]dbl.Bot
	votersErr error
	botCalls  int
}

func (f *fakeAPI) GetVoters(botID string) (*async.Pending[[]dbl.SimpleUser], error) {
	if f.votersErr != nil {
		return async.Rejected[[]dbl.SimpleUser](f.votersErr), nil
	}
	return async.Resolved(f.voters[botID]), nil
}

func (f *fakeAPI) GetBot(botID string) (*async.Pending[dbl.Bot], error) {
	f.botCalls++
	bot, ok := f.bots[botID]
	if !ok {
		return async.Rejected[dbl.Bot](&async.TransportError{Op: dbl.OpGetBot, Err: errors.New("404")}), nil
	}
	return async.Resolved(bot), nil
}

// fakePublisher records published events and can inject errors.
type fakePublisher struct {
	mu         sync.Mutex
	events     []publishers.Event
	failUserID string
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if evt.Vote.UserID == f.failUserID {
		return 0, errors.New("boom")
	}
	f.events = append(f.events, evt)
	return 1, nil
}

// fakeDeduper tracks seen keys.
type fakeDeduper struct {
	mu      sync.Mutex
	seen    map[string]bool
	failKey string
}

func (f *fakeDeduper) SeenVote(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == f.failKey {
		return false, errors.New("lookup failed")
	}
	return f.seen[key], nil
}

func (f *fakeDeduper) MarkVote(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	f.seen[key] = true
	return nil
}

type countingRecorder struct{ n int }

func (c *countingRecorder) VotePublished(string) { c.n++ }

func target(id string) targets.Target {
	return targets.Target{ID: id, SummaryLength: 20, RequestDelayMs: 1}
}

func TestServicePublishesFreshVotesOnly(t *testing.T) {
	api := &fakeAPI{
		voters: map[string][]dbl.SimpleUser{"1": {{ID: "10", Username: "old"}, {ID: "11", Username: "new"}}},
		bots:   map[string]dbl.Bot{"1": {ID: "1", Username: "Luca", LongDescription: "<p>A <b>music</b> bot</p>"}},
	}
	deduper := &fakeDeduper{seen: map[string]bool{"1:10": true}}
	pub := &fakePublisher{}
	rec := &countingRecorder{}

	svc := NewService(api, pub, deduper, WithRecorder(rec))
	if err := svc.Run(context.Background(), []targets.Target{target("1")}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.Vote.UserID != "11" || evt.Vote.Username != "new" || evt.Vote.BotID != "1" {
		t.Fatalf("unexpected vote %+v", evt.Vote)
	}
	if evt.BotName != "Luca" || evt.BotSummary != "A music bot" {
		t.Fatalf("unexpected bot info %q / %q", evt.BotName, evt.BotSummary)
	}
	if evt.Type != publishers.EventTypeVote || evt.ID == "" {
		t.Fatalf("event missing id or type: %+v", evt)
	}
	if !deduper.seen["1:11"] {
		t.Fatalf("MarkVote not called for new vote")
	}
	if rec.n != 1 {
		t.Fatalf("recorder count = %d", rec.n)
	}
}

func TestServiceDoesNotMarkFailedPublishes(t *testing.T) {
	api := &fakeAPI{
		voters: map[string][]dbl.SimpleUser{"1": {{ID: "bad"}, {ID: "good"}}},
		bots:   map[string]dbl.Bot{"1": {ID: "1", Username: "Luca"}},
	}
	deduper := &fakeDeduper{}
	svc := NewService(api, &fakePublisher{failUserID: "bad"}, deduper)

	err := svc.Run(context.Background(), []targets.Target{target("1")})
	if err == nil || !strings.Contains(err.Error(), "1:bad") {
		t.Fatalf("expected error mentioning failed vote, got %v", err)
	}
	if deduper.seen["1:bad"] {
		t.Fatalf("failed vote must not be marked seen")
	}
	if !deduper.seen["1:good"] {
		t.Fatalf("delivered vote should be marked seen")
	}
}

func TestServiceSkipsBotLookupWhenNothingNew(t *testing.T) {
	api := &fakeAPI{voters: map[string][]dbl.SimpleUser{"1": {{ID: "10"}}}}
	deduper := &fakeDeduper{seen: map[string]bool{"1:10": true}}
	svc := NewService(api, &fakePublisher{}, deduper)

	if err := svc.Run(context.Background(), []targets.Target{target("1")}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if api.botCalls != 0 {
		t.Fatalf("GetBot should not be called without new votes")
	}
}

func TestServiceFallsBackWhenBotLookupFails(t *testing.T) {
	api := &fakeAPI{voters: map[string][]dbl.SimpleUser{"7": {{ID: "10"}}}}
	pub := &fakePublisher{}
	svc := NewService(api, pub, nil)

	tgt := target("7")
	tgt.Name = "My Bot"
	if err := svc.Run(context.Background(), []targets.Target{tgt}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].BotName != "My Bot" || pub.events[0].BotSummary != "" {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestServiceAggregatesTargetErrors(t *testing.T) {
	api := &fakeAPI{votersErr: &async.TransportError{Op: dbl.OpGetVoters, Err: errors.New("down")}}
	svc := NewService(api, &fakePublisher{}, nil)

	err := svc.Run(context.Background(), []targets.Target{target("1"), target("2")})
	if !async.IsTransportError(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "get voters for 1") || !strings.Contains(err.Error(), "get voters for 2") {
		t.Fatalf("expected both targets in error, got %v", err)
	}
}

func TestServiceRunAllStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(&fakeAPI{}, &fakePublisher{}, nil)
	if errs := svc.runAll(ctx, []targets.Target{target("1")}); len(errs) != 0 {
		t.Fatalf("expected no errors on cancelled context, got %v", errs)
	}
}

func TestRunRejectsEmptyTargets(t *testing.T) {
	svc := NewService(&fakeAPI{}, &fakePublisher{}, nil)
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error when targets list empty")
	}
}

func TestFilterNewVotesKeepsLookupErrors(t *testing.T) {
	deduper := &fakeDeduper{seen: map[string]bool{"1:skip": true}, failKey: "1:error"}
	svc := NewService(&fakeAPI{}, &fakePublisher{}, deduper)

	filtered := svc.filterNewVotes(target("1"), []dbl.SimpleUser{{ID: "keep"}, {ID: "skip"}, {ID: "error"}})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 votes after filter, got %d", len(filtered))
	}
	if filtered[0].UserID != "keep" || filtered[1].UserID != "error" {
		t.Fatalf("unexpected filter result %#v", filtered)
	}
}

func TestServiceAnnouncesRepeatedVoterOnce(t *testing.T) {
	api := &fakeAPI{
		voters: map[string][]dbl.SimpleUser{"1": {
			{ID: "7", Username: "twice"},
			{ID: "7", Username: "twice"},
			{Username: "noid"},
			{Username: "noid2"},
			{ID: "8", Username: "once"},
		}},
		bots: map[string]dbl.Bot{"1": {ID: "1", Username: "Luca"}},
	}
	pub := &fakePublisher{}
	rec := &countingRecorder{}

	svc := NewService(api, pub, &fakeDeduper{}, WithRecorder(rec))
	if err := svc.Run(context.Background(), []targets.Target{target("1")}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var users []string
	for _, evt := range pub.events {
		users = append(users, evt.Vote.UserID)
	}
	if strings.Join(users, ",") != "7,8" {
		t.Fatalf("expected one event each for 7 and 8, got %v", users)
	}
	if rec.n != 2 {
		t.Fatalf("expected 2 recorded votes, got %d", rec.n)
	}
}

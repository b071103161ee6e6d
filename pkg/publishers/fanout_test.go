package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubPublisher struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}

type closingPublisher struct {
	stubPublisher
}

func (c *closingPublisher) Close() error {
	c.closed = true
	return nil
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	ok := &stubPublisher{id: "ok", typ: TypeHTTP}
	bad := &stubPublisher{id: "bad", typ: TypeSQS, err: errors.New("failed")}
	fanout := NewFanout([]Publisher{ok, nil, bad})

	if fanout.Size() != 2 {
		t.Fatalf("expected nil publishers to be dropped, size=%d", fanout.Size())
	}
	count, err := fanout.Publish(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil || !strings.Contains(err.Error(), `sqs sink "bad": failed`) {
		t.Fatalf("expected error naming the failed sink, got %v", err)
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("expected every sink to be called once, got ok=%d bad=%d", ok.calls, bad.calls)
	}
}

func TestFanoutEmpty(t *testing.T) {
	var fanout *Fanout
	if n, err := fanout.Publish(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("expected no-op, got %d %v", n, err)
	}
	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFanoutCloseReleasesClosers(t *testing.T) {
	c := &closingPublisher{stubPublisher{id: "pubsub", typ: TypeGCPPubSub}}
	fanout := NewFanout([]Publisher{&stubPublisher{id: "plain"}, c})
	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !c.closed {
		t.Fatalf("expected closer to be closed")
	}
}

func TestDefaultSinksBuildAll(t *testing.T) {
	sinks := DefaultSinks()
	want := []string{TypeGCPPubSub, TypeHTTP, TypeSNS, TypeSQS}
	if diff := cmp.Diff(want, sinks.Types()); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}

	pubs, err := sinks.BuildAll(context.Background(), []PublisherConfig{
		{ID: "http", Type: "HTTP", HTTP: &HTTPPublisherConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 1 || pubs[0].Type() != TypeHTTP {
		t.Fatalf("expected one http sink, got %v", pubs)
	}
}

func TestSinksBuildAllClosesOnFailure(t *testing.T) {
	built := &closingPublisher{stubPublisher{id: "first", typ: "closing"}}
	sinks := NewSinks()
	if err := sinks.Register("closing", func(context.Context, PublisherConfig, Logger) (Publisher, error) {
		return built, nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := sinks.BuildAll(context.Background(), []PublisherConfig{
		{ID: "first", Type: "closing"},
		{ID: "second", Type: "kafka"},
	}, nil)
	if err == nil || !strings.Contains(err.Error(), `unknown sink type "kafka" (known: closing)`) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
	if !built.closed {
		t.Fatalf("expected already built sink to be closed")
	}
}

func TestSinksRegisterRejectsBlank(t *testing.T) {
	sinks := NewSinks()
	if err := sinks.Register("  ", newHTTPPublisher); err == nil {
		t.Fatalf("expected error for blank type")
	}
	if err := sinks.Register("http", nil); err == nil {
		t.Fatalf("expected error for nil builder")
	}
}

type captureLogger struct {
	noopLogger
	keys []string
	objs []map[string]any
}

func (c *captureLogger) ErrorObj(_, key string, obj interface{}) {
	c.keys = append(c.keys, key)
	c.objs = append(c.objs, obj.(map[string]any))
}

func TestSinkLoggerTagsFailures(t *testing.T) {
	capture := &captureLogger{}
	pub := &sqsPublisher{
		id:     "queue",
		client: &fakeSQSClient{err: errors.New("boom")},
		log:    newSinkLogger(capture, "queue", TypeSQS),
	}
	evt := Event{ID: "evt-1"}
	evt.Vote.BotID = "42"

	if err := pub.Publish(context.Background(), evt); err == nil {
		t.Fatalf("expected publish error")
	}
	if len(capture.objs) != 1 || capture.keys[0] != "publisher_error" {
		t.Fatalf("expected one publisher_error entry, got %v", capture.keys)
	}
	got := capture.objs[0]
	if got["publisher_type"] != TypeSQS || got["event_id"] != "evt-1" || got["bot_id"] != "42" || got["error"] != "boom" {
		t.Fatalf("unexpected fields %v", got)
	}
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samvad-hq/dblclient/pkg/async"
)

var _ async.Observer = (*Metrics)(nil)

func TestObserverTracksRequests(t *testing.T) {
	m := New()

	m.RequestStarted("getBot")
	m.RequestStarted("getBot")
	if got := testutil.ToFloat64(m.RequestsInFlight); got != 2 {
		t.Fatalf("in flight = %v, want 2", got)
	}

	m.RequestFinished("getBot", async.OutcomeOK, 20*time.Millisecond)
	m.RequestFinished("getBot", async.OutcomeTransportError, time.Second)

	if got := testutil.ToFloat64(m.RequestsInFlight); got != 0 {
		t.Fatalf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("getBot", async.OutcomeOK)); got != 1 {
		t.Fatalf("ok count = %v", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("getBot", async.OutcomeTransportError)); got != 1 {
		t.Fatalf("transport error count = %v", got)
	}
	if n := testutil.CollectAndCount(m.RequestDuration); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}
}

func TestDaemonCounters(t *testing.T) {
	m := New()
	m.VotePublished("1")
	m.VotePublished("1")
	m.StatsReported("posted")

	if got := testutil.ToFloat64(m.VotesPublished.WithLabelValues("1")); got != 2 {
		t.Fatalf("votes = %v", got)
	}
	if got := testutil.ToFloat64(m.StatsReports.WithLabelValues("posted")); got != 1 {
		t.Fatalf("stats reports = %v", got)
	}
}

func TestServerExposesMetricsAndHealth(t *testing.T) {
	m := New()
	m.RequestFinished("hasVoted", async.OutcomeOK, time.Millisecond)
	srv := httptest.NewServer(NewServer("", m))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `dbl_requests_total{op="hasVoted",outcome="ok"} 1`) {
		t.Fatalf("metrics output missing request counter:\n%s", body)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samvad-hq/dblclient/pkg/dbl"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const selfID = "264811613708746752"

type recorded struct {
	method string
	path   string
	query  string
	body   string
}

// useServer points newClient at an httptest server and returns the request log.
func useServer(t *testing.T, handler http.HandlerFunc) *[]recorded {
	t.Helper()
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqs = append(reqs, recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(body)})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	orig := newClient
	newClient = func(ctx context.Context) (*dbl.Client, error) {
		return dbl.New("token", selfID, dbl.WithBaseURL(srv.URL), dbl.WithBaseContext(ctx))
	}
	t.Cleanup(func() { newClient = orig })
	return &reqs
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		for _, c := range rootCmd.Commands() {
			resetFlags(c)
		}
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

func jsonResponse(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestVotedPrintsBoolean(t *testing.T) {
	reqs := useServer(t, jsonResponse(`{"voted":1}`))

	out, err := execute(t, "voted", "95579865788456960")
	if err != nil {
		t.Fatalf("voted: %v", err)
	}
	if strings.TrimSpace(out) != "true" {
		t.Fatalf("output = %q", out)
	}
	got := (*reqs)[0]
	if got.path != "/bots/"+selfID+"/check" || got.query != "userId=95579865788456960" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestStatsDefaultsToOwnBot(t *testing.T) {
	reqs := useServer(t, jsonResponse(`{"server_count":42,"shards":[]}`))

	out, err := execute(t, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats dbl.BotStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, out)
	}
	if stats.ServerCount != 42 {
		t.Fatalf("server count = %d", stats.ServerCount)
	}
	if (*reqs)[0].path != "/bots/"+selfID+"/stats" {
		t.Fatalf("unexpected path %s", (*reqs)[0].path)
	}
}

func TestBotsBuildsSearchQuery(t *testing.T) {
	reqs := useServer(t, jsonResponse(`{"results":[],"limit":5,"offset":0,"count":0,"total":0}`))

	if _, err := execute(t, "bots", "--search", "lib=discord.py", "--limit", "5"); err != nil {
		t.Fatalf("bots: %v", err)
	}
	q := (*reqs)[0].query
	if !strings.Contains(q, "search=lib%3A+discord.py") || !strings.Contains(q, "limit=5") {
		t.Fatalf("unexpected query %s", q)
	}
}

func TestPostStatsVariants(t *testing.T) {
	cases := []struct {
		args []string
		body string
	}{
		{[]string{"post-stats", "-s", "42"}, `{"server_count":42}`},
		{[]string{"post-stats", "-s", "10", "--shard-id", "0", "--shard-count", "2"}, `{"shard_id":0,"shard_total":2,"server_count":10}`},
		{[]string{"post-stats", "--shards", "3,4"}, `{"shards":[3,4]}`},
	}
	for _, tc := range cases {
		t.Run(strings.Join(tc.args[1:], " "), func(t *testing.T) {
			reqs := useServer(t, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
			out, err := execute(t, tc.args...)
			if err != nil {
				t.Fatalf("post-stats: %v", err)
			}
			if !strings.Contains(out, "stats posted") {
				t.Fatalf("output = %q", out)
			}
			got := (*reqs)[0]
			if got.method != http.MethodPost || got.path != "/bots/"+selfID+"/stats" {
				t.Fatalf("unexpected request %+v", got)
			}
			if got.body != tc.body {
				t.Fatalf("body = %s, want %s", got.body, tc.body)
			}
		})
	}
}

func TestPostStatsRequiresCount(t *testing.T) {
	reqs := useServer(t, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	if _, err := execute(t, "post-stats"); err == nil {
		t.Fatalf("expected error without --server-count")
	}
	if len(*reqs) != 0 {
		t.Fatalf("no request expected")
	}
}

func TestBotNotFoundReturnsError(t *testing.T) {
	useServer(t, func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) })
	if _, err := execute(t, "bot", "999"); err == nil {
		t.Fatalf("expected error for 404")
	}
}

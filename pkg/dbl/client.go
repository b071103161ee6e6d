// Package dbl is an asynchronous client for the Discord Bot List API.
//
// Every operation validates its arguments, builds a request and returns an
// *async.Pending immediately; the network round trip and decoding happen on
// a separate goroutine:
//
//	c, err := dbl.New(token, botID)
//	if err != nil {
//		return err
//	}
//	p, err := c.HasVoted("123")
//	if err != nil {
//		return err // invalid id, nothing was sent
//	}
//	voted, err := p.Wait(ctx)
//
// Failures arrive through the Pending as *async.TransportError (network or
// HTTP status) or *decode.Error (unexpected body).
package dbl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samvad-hq/dblclient/pkg/async"
	"github.com/samvad-hq/dblclient/pkg/decode"
	"github.com/samvad-hq/dblclient/pkg/httpclient"
)

// Operation names, used as request labels.
const (
	OpSetStats  = "set_stats"
	OpGetStats  = "get_stats"
	OpGetVoters = "get_voters"
	OpGetBot    = "get_bot"
	OpGetBots   = "get_bots"
	OpGetUser   = "get_user"
	OpHasVoted  = "has_voted"
)

// Client is bound to one API token and one bot identity. It is safe for
// concurrent use.
type Client struct {
	botID         string
	builder       *httpclient.Builder
	exec          *async.Executor
	searchEncoder SearchEncoder
}

// New creates a client that authenticates with token and reports stats for botID.
func New(token, botID string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrInvalidArgument)
	}
	botID = strings.TrimSpace(botID)
	if err := validateID("bot", botID); err != nil {
		return nil, err
	}

	o := options{
		baseURL:       DefaultBaseURL,
		timeout:       DefaultTimeout,
		searchEncoder: DefaultSearchEncoder,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	builder, err := httpclient.NewBuilder(o.baseURL)
	if err != nil {
		return nil, fmt.Errorf("configure base url: %w", err)
	}

	inner := o.transport
	if inner == nil && o.restyClient != nil {
		inner = httpclient.NewRestyTransportFromClient(o.restyClient)
	}
	if inner == nil {
		inner = httpclient.NewRestyTransport(o.timeout)
	}

	exec, err := async.NewExecutor(
		httpclient.NewAuthTransport(inner, token),
		async.WithLogger(o.log),
		async.WithObserver(o.observer),
		async.WithBaseContext(o.baseCtx),
	)
	if err != nil {
		return nil, fmt.Errorf("init executor: %w", err)
	}

	return &Client{
		botID:         botID,
		builder:       builder,
		exec:          exec,
		searchEncoder: o.searchEncoder,
	}, nil
}

// BotID returns the bot identity the client reports stats for.
func (c *Client) BotID() string { return c.botID }

// SetStats reports the total server count.
func (c *Client) SetStats(serverCount int) (*async.Pending[decode.NoContent], error) {
	if err := validateCount("server count", serverCount); err != nil {
		return nil, err
	}
	return c.postStats(statsPayload{ServerCount: &serverCount})
}

// SetShardStats reports the server count of a single shard.
func (c *Client) SetShardStats(shardID, shardTotal, serverCount int) (*async.Pending[decode.NoContent], error) {
	if err := validateCount("shard id", shardID); err != nil {
		return nil, err
	}
	if shardTotal <= 0 || shardID >= shardTotal {
		return nil, fmt.Errorf("%w: shard id %d out of range for %d shards", ErrInvalidArgument, shardID, shardTotal)
	}
	if err := validateCount("server count", serverCount); err != nil {
		return nil, err
	}
	return c.postStats(statsPayload{
		ShardID:     &shardID,
		ShardTotal:  &shardTotal,
		ServerCount: &serverCount,
	})
}

// SetShardCounts reports per-shard server counts, indexed by shard id.
func (c *Client) SetShardCounts(counts []int) (*async.Pending[decode.NoContent], error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: shard counts are empty", ErrInvalidArgument)
	}
	for i, n := range counts {
		if err := validateCount(fmt.Sprintf("shard %d server count", i), n); err != nil {
			return nil, err
		}
	}
	shards := append([]int(nil), counts...)
	return c.postStats(statsPayload{Shards: shards})
}

type statsPayload struct {
	ShardID     *int  `json:"shard_id,omitempty"`
	ShardTotal  *int  `json:"shard_total,omitempty"`
	ServerCount *int  `json:"server_count,omitempty"`
	Shards      []int `json:"shards,omitempty"`
}

func (c *Client) postStats(body statsPayload) (*async.Pending[decode.NoContent], error) {
	req, err := c.builder.PostJSON(OpSetStats, []string{"bots", c.botID, "stats"}, body)
	if err != nil {
		return nil, err
	}
	return async.Execute(c.exec, req, decode.JSON[decode.NoContent]())
}

// GetStats fetches the stats last reported for botID.
func (c *Client) GetStats(botID string) (*async.Pending[BotStats], error) {
	if err := validateID("bot", botID); err != nil {
		return nil, err
	}
	req, err := c.builder.Get(OpGetStats, []string{"bots", botID, "stats"}, nil)
	if err != nil {
		return nil, err
	}
	return async.Execute(c.exec, req, decode.JSON[BotStats]())
}

// GetVoters fetches the users who recently voted for botID.
func (c *Client) GetVoters(botID string) (*async.Pending[[]SimpleUser], error) {
	if err := validateID("bot", botID); err != nil {
		return nil, err
	}
	req, err := c.builder.Get(OpGetVoters, []string{"bots", botID, "votes"}, nil)
	if err != nil {
		return nil, err
	}
	return async.Execute(c.exec, req, decode.JSON[[]SimpleUser](decode.RequireEach("id")))
}

// GetBot fetches a bot listing.
func (c *Client) GetBot(botID string) (*async.Pending[Bot], error) {
	if err := validateID("bot", botID); err != nil {
		return nil, err
	}
	req, err := c.builder.Get(OpGetBot, []string{"bots", botID}, nil)
	if err != nil {
		return nil, err
	}
	return async.Execute(c.exec, req, decode.JSON[Bot](decode.Require("id")))
}

// GetBots searches bot listings.
func (c *Client) GetBots(search BotSearch) (*async.Pending[BotResult], error) {
	if err := search.validate(); err != nil {
		return nil, err
	}
	req, err := c.builder.Get(OpGetBots, []string{"bots"}, search.query(c.searchEncoder))
	if err != nil {
		return nil, err
	}
	return async.Execute(c.exec, req, decode.JSON[BotResult](decode.Require("results")))
}

// GetUser fetches a user profile.
func (c *Client) GetUser(userID string) (*async.Pending[User], error) {
	if err := validateID("user", userID); err != nil {
		return nil, err
	}
	req, err := c.builder.Get(OpGetUser, []string{"users", userID}, nil)
	if err != nil {
		return nil, err
	}
	return async.Execute(c.exec, req, decode.JSON[User](decode.Require("id")))
}

// HasVoted reports whether userID voted for this client's bot.
func (c *Client) HasVoted(userID string) (*async.Pending[bool], error) {
	if err := validateID("user", userID); err != nil {
		return nil, err
	}
	req, err := c.builder.Get(OpHasVoted, []string{"bots", c.botID, "check"}, url.Values{"userId": {userID}})
	if err != nil {
		return nil, err
	}
	return async.Execute(c.exec, req, decode.Bool("voted"))
}

package domain

import "time"

// Domain contains core models shared by the daemon components.

// Vote is one upvote observed for a watched bot.
type Vote struct {
	BotID      string    `json:"bot_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	ObservedAt time.Time `json:"observed_at"`
}

// Key identifies the vote in the seen store.
func (v Vote) Key() string {
	return v.BotID + ":" + v.UserID
}

// StatsSnapshot is the server count set last reported for the configured bot.
// Exactly one of ServerCount or Shards is meaningful; ShardID/ShardCount qualify a single-shard report.
type StatsSnapshot struct {
	ServerCount int   `json:"server_count,omitempty"`
	ShardID     *int  `json:"shard_id,omitempty"`
	ShardCount  *int  `json:"shard_count,omitempty"`
	Shards      []int `json:"shards,omitempty"`
}

// Equal reports whether two snapshots would produce the same stats payload.
func (s StatsSnapshot) Equal(o StatsSnapshot) bool {
	if s.ServerCount != o.ServerCount || len(s.Shards) != len(o.Shards) {
		return false
	}
	if !intPtrEqual(s.ShardID, o.ShardID) || !intPtrEqual(s.ShardCount, o.ShardCount) {
		return false
	}
	for i := range s.Shards {
		if s.Shards[i] != o.Shards[i] {
			return false
		}
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

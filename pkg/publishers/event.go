package publishers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/dblclient/internal/domain"
)

// EventTypeVote marks an event announcing a new upvote.
const EventTypeVote = "vote"

// Event represents the payload published downstream.
type Event struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	BotName     string      `json:"bot_name,omitempty"`
	BotSummary  string      `json:"bot_summary,omitempty"`
	Vote        domain.Vote `json:"vote"`
	PublishedAt time.Time   `json:"published_at"`
}

// NewVoteEvent constructs an Event for a vote on the named bot.
func NewVoteEvent(botName, botSummary string, vote domain.Vote) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        EventTypeVote,
		BotName:     botName,
		BotSummary:  botSummary,
		Vote:        vote,
		PublishedAt: time.Now().UTC(),
	}
}

// attributes returns the routing attributes attached by queue and topic sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type": e.Type,
		"bot_id":     e.Vote.BotID,
	}
}

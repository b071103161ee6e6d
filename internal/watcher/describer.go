package watcher

import (
	"context"
	"fmt"

	"github.com/samvad-hq/dblclient/internal/logger"
	"github.com/samvad-hq/dblclient/pkg/dbl"
	"github.com/samvad-hq/dblclient/pkg/targets"
)

// BotInfo is the display data attached to vote events.
type BotInfo struct {
	Name    string
	Summary string
}

// Describer looks up a bot's listing and turns its long description into a plain-text summary.
type Describer struct {
	api API
	log logger.Logger
}

// NewDescriber constructs a Describer backed by api.
func NewDescriber(api API, log logger.Logger) *Describer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Describer{api: api, log: log}
}

// Describe returns the bot's name and summary. Lookup failures fall back to the
// configured target name so that votes are still announced.
func (d *Describer) Describe(ctx context.Context, t targets.Target) BotInfo {
	info := BotInfo{Name: t.Name}
	if info.Name == "" {
		info.Name = t.ID
	}

	bot, err := d.fetch(ctx, t.ID)
	if err != nil {
		d.log.WarnObj("bot lookup failed", "describe_error", map[string]any{
			"bot_id": t.ID,
			"error":  err.Error(),
		})
		return info
	}

	if t.Name == "" && bot.Username != "" {
		info.Name = bot.Username
	}
	info.Summary = bot.Summary(t.SummaryLength)
	return info
}

func (d *Describer) fetch(ctx context.Context, botID string) (dbl.Bot, error) {
	p, err := d.api.GetBot(botID)
	if err != nil {
		return dbl.Bot{}, fmt.Errorf("get bot %s: %w", botID, err)
	}
	bot, err := p.Wait(ctx)
	if err != nil {
		return dbl.Bot{}, fmt.Errorf("get bot %s: %w", botID, err)
	}
	return bot, nil
}

package publishers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Builder constructs a sink from its validated config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Sinks maps sink types to their builders. Register everything before the
// first Build call; the set is not guarded for concurrent registration.
type Sinks struct {
	builders map[string]Builder
}

// NewSinks returns an empty sink set.
func NewSinks() *Sinks {
	return &Sinks{builders: make(map[string]Builder)}
}

// DefaultSinks knows every sink type shipped with this package.
func DefaultSinks() *Sinks {
	s := NewSinks()
	_ = s.Register(TypeHTTP, newHTTPPublisher)
	_ = s.Register(TypeSQS, newSQSPublisher)
	_ = s.Register(TypeSNS, newSNSPublisher)
	_ = s.Register(TypeGCPPubSub, newGCPPubSubPublisher)
	return s
}

// Register binds a builder to a sink type, replacing any previous binding.
func (s *Sinks) Register(typ string, builder Builder) error {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" {
		return errors.New("sink type is required")
	}
	if builder == nil {
		return fmt.Errorf("sink %q: nil builder", typ)
	}
	s.builders[typ] = builder
	return nil
}

// Types lists the registered sink types in sorted order.
func (s *Sinks) Types() []string {
	out := make([]string, 0, len(s.builders))
	for typ := range s.builders {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Build constructs the sink described by cfg.
func (s *Sinks) Build(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	typ := strings.ToLower(strings.TrimSpace(cfg.Type))
	if typ == "" {
		return nil, fmt.Errorf("publisher %q has no type configured", cfg.ID)
	}
	builder, ok := s.builders[typ]
	if !ok {
		return nil, fmt.Errorf("publisher %q: unknown sink type %q (known: %s)", cfg.ID, cfg.Type, strings.Join(s.Types(), ", "))
	}
	return builder(ctx, cfg, log)
}

// BuildAll constructs every sink in cfgs. On failure the sinks built so far
// are closed before the error is returned.
func (s *Sinks) BuildAll(ctx context.Context, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		pub, err := s.Build(ctx, cfg, log)
		if err != nil {
			if cerr := closeAll(pubs); cerr != nil {
				err = errors.Join(err, cerr)
			}
			return nil, err
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

package targets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samvad-hq/dblclient/pkg/dbl"
	"gopkg.in/yaml.v3"
)

// Package targets loads the set of bots whose votes are watched (YAML/JSON).

const (
	defaultSummaryLength  = 280
	defaultRequestDelayMs = 500
)

// Target is one watched bot.
type Target struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Enabled        *bool  `json:"enabled" yaml:"enabled"`
	SummaryLength  int    `json:"summary_length" yaml:"summary_length"`
	RequestDelayMs int    `json:"request_delay_ms" yaml:"request_delay_ms"`
}

type fileRegistry struct {
	Targets []Target `json:"targets" yaml:"targets"`
}

// Registry holds the loaded targets in file order.
type Registry struct {
	targets []Target
	idx     map[string]Target
}

// Load reads the targets registry from file.
func Load(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("targets file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}

	reg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(reg.Targets) == 0 {
		return nil, errors.New("targets file contains no targets entries")
	}
	return New(reg.Targets)
}

// New validates targets and builds a Registry.
func New(targets []Target) (*Registry, error) {
	r := &Registry{
		targets: make([]Target, 0, len(targets)),
		idx:     make(map[string]Target, len(targets)),
	}
	for i := range targets {
		t := sanitizeTarget(targets[i])
		if err := dbl.ValidateID("target", t.ID); err != nil {
			return nil, fmt.Errorf("targets[%d]: %w", i, err)
		}
		if _, exists := r.idx[t.ID]; exists {
			return nil, fmt.Errorf("duplicate target id %q", t.ID)
		}
		r.targets = append(r.targets, t)
		r.idx[t.ID] = t
	}
	return r, nil
}

// Single builds a registry watching only botID.
func Single(botID string) (*Registry, error) {
	return New([]Target{{ID: botID}})
}

func parseRegistry(data []byte, ext string) (fileRegistry, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return fileRegistry{}, errors.New("targets file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (fileRegistry, error) {
	var reg fileRegistry
	if err := fn(data, &reg); err != nil {
		return fileRegistry{}, fmt.Errorf("decode %s targets: %w", name, err)
	}
	return reg, nil
}

func sanitizeTarget(t Target) Target {
	t.ID = strings.TrimSpace(t.ID)
	t.Name = strings.TrimSpace(t.Name)
	if t.Enabled == nil {
		def := true
		t.Enabled = &def
	}
	if t.SummaryLength <= 0 {
		t.SummaryLength = defaultSummaryLength
	}
	if t.RequestDelayMs <= 0 {
		t.RequestDelayMs = defaultRequestDelayMs
	}
	return t
}

// All returns a copy of every target.
func (r *Registry) All() []Target {
	if r == nil {
		return nil
	}
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Enabled returns the targets that are switched on.
func (r *Registry) Enabled() []Target {
	var out []Target
	for _, t := range r.All() {
		if t.EnabledValue() {
			out = append(out, t)
		}
	}
	return out
}

// ByID returns the target for the given bot id.
func (r *Registry) ByID(id string) (Target, bool) {
	if r == nil {
		return Target{}, false
	}
	t, ok := r.idx[strings.TrimSpace(id)]
	return t, ok
}

// EnabledValue returns enabled flag defaulting to true.
func (t Target) EnabledValue() bool {
	if t.Enabled == nil {
		return true
	}
	return *t.Enabled
}

// RequestDelay returns the pause taken after polling this target.
func (t Target) RequestDelay() time.Duration {
	if t.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(t.RequestDelayMs) * time.Millisecond
}

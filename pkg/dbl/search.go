package dbl

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// SearchEncoder renders search filters into the value of the "search" query
// parameter. The filter grammar belongs to the service, so it is replaceable
// through WithSearchEncoder.
type SearchEncoder func(filters map[string]any) string

// DefaultSearchEncoder joins "key: value" pairs with a single space, ordered
// by key so the same filters always produce the same query.
func DefaultSearchEncoder(filters map[string]any) string {
	if len(filters) == 0 {
		return ""
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, filters[k]))
	}
	return strings.Join(parts, " ")
}

// BotSearch describes a bot listing query. Zero values are omitted from the
// request and the service defaults apply.
type BotSearch struct {
	Filters map[string]any
	Sort    string
	Limit   int
	Offset  int
	Fields  []string
}

func (s BotSearch) validate() error {
	if s.Limit < 0 || s.Limit > maxSearchLimit {
		return fmt.Errorf("%w: limit must be between 0 and %d (got %d)", ErrInvalidArgument, maxSearchLimit, s.Limit)
	}
	if err := validateCount("offset", s.Offset); err != nil {
		return err
	}
	for k := range s.Filters {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: search filter key is empty", ErrInvalidArgument)
		}
	}
	return nil
}

func (s BotSearch) query(enc SearchEncoder) url.Values {
	q := url.Values{}
	if len(s.Filters) > 0 {
		if enc == nil {
			enc = DefaultSearchEncoder
		}
		if v := enc(s.Filters); v != "" {
			q.Set("search", v)
		}
	}
	if s.Sort = strings.TrimSpace(s.Sort); s.Sort != "" {
		q.Set("sort", s.Sort)
	}
	if s.Limit > 0 {
		q.Set("limit", strconv.Itoa(s.Limit))
	}
	if s.Offset > 0 {
		q.Set("offset", strconv.Itoa(s.Offset))
	}
	fields := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) > 0 {
		q.Set("fields", strings.Join(fields, ","))
	}
	return q
}

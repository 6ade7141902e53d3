// internal/service/listening/extractor.go

package listening

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Extractor pulls items, text, cursors and timestamps out of loosely shaped
// search pages. Each list is probed in order and the first usable value wins.
type Extractor struct {
	ItemKeys       []string
	TextKeys       []string
	CursorKeys     []string
	MetaCursorKeys []string
	CreatedAtKeys  []string
}

// DefaultExtractor returns the key lists used for twitter-api45 style pages
func DefaultExtractor() Extractor {
	return Extractor{
		ItemKeys:       []string{"tweets", "timeline", "results", "data", "items"},
		TextKeys:       []string{"text", "full_text", "content", "tweet_text"},
		CursorKeys:     []string{"cursor", "next_cursor", "next", "nextCursor", "continuation", "continuation_token"},
		MetaCursorKeys: []string{"cursor", "next_cursor", "next"},
		CreatedAtKeys:  []string{"created_at", "createdAt", "timestamp", "date"},
	}
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RubyDate,
	"2006-01-02 15:04:05",
}

// Items returns the raw item list of a page body. A list body is returned
// as is; an object body yields the first candidate key holding a list.
func (e Extractor) Items(body any) []any {
	switch v := body.(type) {
	case []any:
		return v
	case map[string]any:
		for _, key := range e.ItemKeys {
			if list, ok := v[key].([]any); ok {
				return list
			}
		}
	}
	return nil
}

// Text returns the first non-blank string under a text key, or ""
func (e Extractor) Text(item any) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	return firstString(obj, e.TextKeys)
}

// Cursor returns the pagination cursor of a page body. Top-level keys are
// tried before the "meta" object.
func (e Extractor) Cursor(body any) (string, bool) {
	obj, ok := body.(map[string]any)
	if !ok {
		return "", false
	}

	if c := firstString(obj, e.CursorKeys); c != "" {
		return c, true
	}

	if meta, ok := obj["meta"].(map[string]any); ok {
		if c := firstString(meta, e.MetaCursorKeys); c != "" {
			return c, true
		}
	}

	return "", false
}

// CreatedAt returns the creation time of an item, or the zero time when no
// candidate key holds a recognizable timestamp
func (e Extractor) CreatedAt(item any) time.Time {
	obj, ok := item.(map[string]any)
	if !ok {
		return time.Time{}
	}

	for _, key := range e.CreatedAtKeys {
		switch v := obj[key].(type) {
		case string:
			if t, ok := parseTimestamp(strings.TrimSpace(v)); ok {
				return t
			}
		case json.Number:
			if secs, err := v.Int64(); err == nil && secs > 0 {
				return unixTime(secs)
			}
		case float64:
			if v > 0 {
				return unixTime(int64(v))
			}
		}
	}

	return time.Time{}
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return unixTime(secs), true
	}
	return time.Time{}, false
}

// unixTime accepts seconds or milliseconds since the epoch
func unixTime(v int64) time.Time {
	if v > 1e12 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

func firstString(obj map[string]any, keys []string) string {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

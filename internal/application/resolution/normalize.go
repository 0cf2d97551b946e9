// Package resolution turns outfit item references into display-ready view-models,
// fetching whatever the per-owner item cache cannot answer in a single batch.
package resolution

import (
	"reflect"
	"strings"

	"github.com/AtRiskMedia/outfitstack-go/internal/domain/entities/wardrobe"
)

// NormalizeIDs sanitizes an untrusted item ID list. Anything that is not a slice
// or array yields an empty result; entries that are not strings or are blank
// after trimming are dropped. Surviving entries are trimmed and keep their order.
func NormalizeIDs(raw any) []string {
	switch list := raw.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, 0, len(list))
		for _, s := range list {
			if id := strings.TrimSpace(s); id != "" {
				out = append(out, id)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, v := range list {
			if id := normalizeEntry(v); id != "" {
				out = append(out, id)
			}
		}
		return out
	}

	v := reflect.ValueOf(raw)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return []string{}
	}
	out := make([]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if id := normalizeEntry(v.Index(i).Interface()); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func normalizeEntry(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// ExtractAllIDs unions the normalized IDs of every outfit, each ID once, in the
// order it is first seen.
func ExtractAllIDs(outfits []*wardrobe.OutfitSuggestion) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, outfit := range outfits {
		if outfit == nil {
			continue
		}
		for _, id := range NormalizeIDs(outfit.ItemIDs) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// dedupe returns ids without repeats, first occurrence wins.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

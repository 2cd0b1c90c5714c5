package search

import (
	"strings"

	"github.com/sworl/mill/internal/catalog"
)

// MaxResults bounds the number of matches collected by a single Search call.
const MaxResults = 100

// Tag is one #key:value predicate from a query. Tags only ever match text
// assets, against their Type ("type") or Subtype ("subtype") metadata.
type Tag struct {
	Key   string
	Value string
}

// Filters is the resolved predicate set applied to each asset.
type Filters struct {
	// AssetType restricts matches to one kind; KindAny matches every kind
	AssetType catalog.Kind

	// Tags are ANDed tag predicates
	Tags []Tag

	// Terms are ANDed case-insensitive substring terms
	Terms []string
}

// ParseQuery resolves a compact query string into Filters. Tokens are
// space-separated: "!i"/"!s"/"!t" (or reversed) set the asset-type filter
// (last one wins), "#key:value" adds a tag predicate, anything else is a
// free-text term. Empty tokens and a bare "!" are ignored.
func ParseQuery(query string) Filters {
	var f Filters
	for _, tok := range strings.Split(query, " ") {
		switch {
		case tok == "" || tok == "!":
			continue
		case tok == "!i" || tok == "i!":
			f.AssetType = catalog.KindImage
		case tok == "!s" || tok == "s!":
			f.AssetType = catalog.KindSound
		case tok == "!t" || tok == "t!":
			f.AssetType = catalog.KindText
		case strings.HasPrefix(tok, "#"):
			parts := strings.Split(tok[1:], ":")
			if len(parts) == 2 {
				f.Tags = append(f.Tags, Tag{Key: parts[0], Value: parts[1]})
			}
		default:
			f.Terms = append(f.Terms, tok)
		}
	}
	return f
}

// ParseTerms splits a free-text string into terms, ignoring empty tokens.
func ParseTerms(terms string) []string {
	var out []string
	for _, tok := range strings.Split(terms, " ") {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// Matches reports whether the asset satisfies every active predicate.
func (f *Filters) Matches(a *catalog.Asset) bool {
	// check type
	if f.AssetType != catalog.KindAny && a.Kind != f.AssetType {
		return false
	}
	// check tags: only text assets carry matchable metadata
	if len(f.Tags) > 0 {
		if a.Kind != catalog.KindText {
			return false
		}
		for _, t := range f.Tags {
			if t.Key == "type" && a.Type != t.Value {
				return false
			}
			if t.Key == "subtype" && a.Subtype != t.Value {
				return false
			}
		}
	}
	// check terms: substring of path, or of description for text assets
	for _, term := range f.Terms {
		term = strings.ToLower(term)
		if strings.Contains(strings.ToLower(a.Path), term) {
			continue
		}
		if a.Kind == catalog.KindText && a.Description != "" &&
			strings.Contains(strings.ToLower(a.Description), term) {
			continue
		}
		return false
	}
	return true
}

// Result is one search match with its owning pack and creator.
type Result struct {
	// Name is the beautified display name of the asset
	Name string

	Asset   *catalog.Asset
	Pack    *catalog.Pack
	Creator *catalog.Creator
}

// Search enumerates matching assets in creator-then-pack-then-asset order,
// stopping once limit results have been collected. A non-positive limit
// selects MaxResults. The enumeration is a pure function of the graph and
// the filters: re-running it on an unchanged catalog yields the identical
// ordered result set.
func Search(creators []catalog.Creator, filters Filters, limit int) []Result {
	if limit <= 0 {
		limit = MaxResults
	}

	var results []Result
	for ci := range creators {
		c := &creators[ci]
		for pi := range c.Packs {
			p := &c.Packs[pi]
			for ai := range p.Assets {
				a := &p.Assets[ai]
				if !filters.Matches(a) {
					continue
				}
				name := a.Path
				if idx := strings.LastIndex(name, "/"); idx >= 0 {
					name = name[idx+1:]
				}
				results = append(results, Result{
					Name:    catalog.BeautifyName(name),
					Asset:   a,
					Pack:    p,
					Creator: c,
				})
				if len(results) >= limit {
					return results
				}
			}
		}
	}
	return results
}

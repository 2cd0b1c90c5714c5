package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// parenPattern matches parenthesized suffixes in pack names, e.g. "(4K Edition)".
var parenPattern = regexp.MustCompile(`\([^)]+\)`)

// BeautifyName turns a file path segment into a display name: separators
// become spaces, the extension is stripped, and each word is capitalized.
func BeautifyName(name string) string {
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	if idx := strings.Index(name, "."); idx > 0 {
		name = name[:idx]
	}
	words := strings.Split(name, " ")
	for i, w := range words {
		if len(w) >= 2 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// FormatDuration converts a duration in seconds into a compact clock string
// (65 -> "1:05", 3909 -> "1:05:09").
func FormatDuration(seconds int) string {
	hr := seconds / 3600
	min := (seconds - 3600*hr) / 60
	sec := seconds % 60
	if hr > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hr, min, sec)
	}
	return fmt.Sprintf("%d:%02d", min, sec)
}

// GroupName normalizes a pack display name for grouping: trailing "HD"/"4K"
// tokens and any parenthesized suffix are stripped, so packs with cosmetically
// different names share one selectable group.
func GroupName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, "HD") || strings.HasSuffix(name, "4K") {
		name = strings.TrimSpace(name[:len(name)-2])
	}
	return strings.TrimSpace(parenPattern.ReplaceAllString(name, ""))
}

// CombinePacks merges packs with the same normalized name. The returned map
// is keyed by group name; each value keeps the packs in input order.
func CombinePacks(packs []Pack) map[string][]Pack {
	groups := make(map[string][]Pack)
	for _, p := range packs {
		name := GroupName(p.Name)
		groups[name] = append(groups[name], p)
	}
	return groups
}

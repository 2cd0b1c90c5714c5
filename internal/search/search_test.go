package search

import (
	"reflect"
	"testing"

	"github.com/sworl/mill/internal/catalog"
)

func testCreators() []catalog.Creator {
	return []catalog.Creator{
		{Name: "Acme", Packs: []catalog.Pack{
			{ID: 1, Name: "Castle", Path: "https://x/acme/castle", Assets: []catalog.Asset{
				{Kind: catalog.KindImage, Path: "Foo/BarBaz.webp"},
				{Kind: catalog.KindImage, Path: "towers/north.webp"},
				{Kind: catalog.KindSound, Path: "gate/creak.ogg", Duration: 12},
			}},
		}},
		{Name: "Bellows", Packs: []catalog.Pack{
			{ID: 2, Name: "Pages", PackID: "packA", Path: "https://git/packA.git", Assets: []catalog.Asset{
				{Kind: catalog.KindText, Path: "packA/npc/guard.md", Description: "A tired watchman", Type: "npc", Subtype: "human"},
				{Kind: catalog.KindText, Path: "packA/npc/mage.md", Type: "npc", Subtype: "elf"},
				{Kind: catalog.KindText, Path: "packA/loc/tavern.md"},
			}},
		}},
	}
}

func TestParseQuery(t *testing.T) {
	f := ParseQuery("!i castle  #type:npc tower")
	if f.AssetType != catalog.KindImage {
		t.Errorf("AssetType = %v, want KindImage", f.AssetType)
	}
	if !reflect.DeepEqual(f.Terms, []string{"castle", "tower"}) {
		t.Errorf("Terms = %v", f.Terms)
	}
	if len(f.Tags) != 1 || f.Tags[0] != (Tag{Key: "type", Value: "npc"}) {
		t.Errorf("Tags = %v", f.Tags)
	}
}

func TestParseQuery_TypeTokens(t *testing.T) {
	tests := []struct {
		query string
		want  catalog.Kind
	}{
		{"!i", catalog.KindImage},
		{"i!", catalog.KindImage},
		{"!s", catalog.KindSound},
		{"s!", catalog.KindSound},
		{"!t", catalog.KindText},
		{"t!", catalog.KindText},
		{"!", catalog.KindAny},
		{"", catalog.KindAny},
		{"!i !s", catalog.KindSound}, // last one wins
		{"!s !i !t", catalog.KindText},
	}
	for _, tt := range tests {
		if got := ParseQuery(tt.query).AssetType; got != tt.want {
			t.Errorf("ParseQuery(%q).AssetType = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestParseQuery_MalformedTags(t *testing.T) {
	f := ParseQuery("#novalue #a:b:c")
	if len(f.Tags) != 0 {
		t.Errorf("Tags = %v, want none for malformed tag tokens", f.Tags)
	}
	if len(f.Terms) != 0 {
		t.Errorf("Terms = %v, malformed tags are not terms", f.Terms)
	}
}

func TestMatches_Terms(t *testing.T) {
	a := catalog.Asset{Kind: catalog.KindImage, Path: "Foo/BarBaz.webp"}

	f := Filters{Terms: []string{"foo", "bar"}}
	if !f.Matches(&a) {
		t.Error("both terms present in path, want match")
	}

	f = Filters{Terms: []string{"foo", "qux"}}
	if f.Matches(&a) {
		t.Error("missing term, want no match")
	}
}

func TestMatches_DescriptionForText(t *testing.T) {
	text := catalog.Asset{Kind: catalog.KindText, Path: "npc/guard.md", Description: "A tired Watchman"}
	img := catalog.Asset{Kind: catalog.KindImage, Path: "npc/guard.webp"}

	f := Filters{Terms: []string{"watchman"}}
	if !f.Matches(&text) {
		t.Error("term in description of text asset, want match")
	}
	if f.Matches(&img) {
		t.Error("images have no description, want no match")
	}
}

func TestMatches_Tags(t *testing.T) {
	guard := catalog.Asset{Kind: catalog.KindText, Path: "npc/guard.md", Type: "npc", Subtype: "human"}
	sound := catalog.Asset{Kind: catalog.KindSound, Path: "npc/guard.ogg"}
	plain := catalog.Asset{Kind: catalog.KindText, Path: "loc/tavern.md"}

	f := Filters{Tags: []Tag{{Key: "type", Value: "npc"}}}
	if !f.Matches(&guard) {
		t.Error("matching type tag, want match")
	}
	if f.Matches(&sound) {
		t.Error("tag predicates never match non-text assets")
	}
	if f.Matches(&plain) {
		t.Error("text asset without metadata should not match a tag predicate")
	}

	f = Filters{Tags: []Tag{{Key: "type", Value: "npc"}, {Key: "subtype", Value: "elf"}}}
	if f.Matches(&guard) {
		t.Error("subtype mismatch, want no match")
	}
}

func TestMatches_TypeFilter(t *testing.T) {
	img := catalog.Asset{Kind: catalog.KindImage, Path: "a.webp"}

	f := Filters{AssetType: catalog.KindSound}
	if f.Matches(&img) {
		t.Error("kind mismatch, want no match")
	}
	f = Filters{AssetType: catalog.KindAny}
	if !f.Matches(&img) {
		t.Error("KindAny should match every kind")
	}
}

func TestSearch_Order(t *testing.T) {
	creators := testCreators()
	results := Search(creators, Filters{}, 0)

	if len(results) != 6 {
		t.Fatalf("len(results) = %d, want 6", len(results))
	}
	// creator-then-pack-then-asset order
	wantPaths := []string{
		"Foo/BarBaz.webp", "towers/north.webp", "gate/creak.ogg",
		"packA/npc/guard.md", "packA/npc/mage.md", "packA/loc/tavern.md",
	}
	for i, want := range wantPaths {
		if results[i].Asset.Path != want {
			t.Errorf("results[%d].Path = %q, want %q", i, results[i].Asset.Path, want)
		}
	}
	if results[0].Creator.Name != "Acme" || results[3].Creator.Name != "Bellows" {
		t.Errorf("creator attribution wrong: %q/%q", results[0].Creator.Name, results[3].Creator.Name)
	}
}

func TestSearch_Idempotent(t *testing.T) {
	creators := testCreators()
	f := ParseQuery("!t npc")

	first := Search(creators, f, 0)
	second := Search(creators, f, 0)

	if len(first) != len(second) {
		t.Fatalf("result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Asset.Path != second[i].Asset.Path {
			t.Errorf("results[%d] differ: %q vs %q", i, first[i].Asset.Path, second[i].Asset.Path)
		}
	}
}

func TestSearch_Limit(t *testing.T) {
	creators := testCreators()

	results := Search(creators, Filters{}, 2)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[1].Asset.Path != "towers/north.webp" {
		t.Errorf("enumeration should stop early in order, got %q", results[1].Asset.Path)
	}
}

func TestSearch_BeautifiedNames(t *testing.T) {
	creators := []catalog.Creator{
		{Name: "Acme", Packs: []catalog.Pack{
			{ID: 1, Name: "P", Assets: []catalog.Asset{
				{Kind: catalog.KindImage, Path: "maps/old_castle-gate.webp"},
			}},
		}},
	}
	results := Search(creators, Filters{}, 0)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Name != "Old Castle Gate" {
		t.Errorf("Name = %q, want %q", results[0].Name, "Old Castle Gate")
	}
}

func TestParseTerms(t *testing.T) {
	if got := ParseTerms("  foo  bar "); !reflect.DeepEqual(got, []string{"foo", "bar"}) {
		t.Errorf("ParseTerms = %v", got)
	}
	if got := ParseTerms(""); got != nil {
		t.Errorf("ParseTerms(\"\") = %v, want nil", got)
	}
}

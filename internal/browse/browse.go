package browse

import (
	"slices"
	"sort"
	"strings"

	"github.com/sworl/mill/internal/catalog"
	"github.com/sworl/mill/internal/search"
)

// PageSize is the number of assets materialized per page.
const PageSize = 100

// PageExhausted is the page cursor sentinel meaning "no more pages".
const PageExhausted = -1

// Filters is the browse state that outlives a single browser session: it is
// owned by the long-lived host and handed to each new Browser.
type Filters struct {
	// Creator is an index into the sorted creator list; -1 means all
	Creator int

	// Packs restricts matches to the given pack ids; empty means all
	Packs []int

	// Type restricts matches to one asset kind; KindAny means all
	Type catalog.Kind

	// Terms is the free-text search string
	Terms string
}

// NewFilters returns filters matching everything.
func NewFilters() *Filters {
	return &Filters{Creator: -1}
}

// Entry is one materialized asset of a page.
type Entry struct {
	Asset   *catalog.Asset
	Pack    *catalog.Pack
	Creator *catalog.Creator
}

// PackGroup is one selectable entry of the pack selector: packs whose
// normalized names collide are combined, their ids becoming a set.
type PackGroup struct {
	Name       string `json:"name"`
	IDs        []int  `json:"ids"`
	AssetCount int    `json:"asset_count"`
}

// Browser walks the filtered catalog one page at a time. It borrows a
// read-only reference to the creator graph for the duration of one session
// and never mutates it.
type Browser struct {
	creators []catalog.Creator
	filters  *Filters
	page     int
}

// New creates a browser over the given graph. Creators are sorted by name
// (case-insensitive) so creator indexes are stable for selector UIs. The
// filters object is borrowed, not copied: the host keeps ownership and the
// state persists across browser sessions.
func New(creators []catalog.Creator, filters *Filters) *Browser {
	if filters == nil {
		filters = NewFilters()
	}
	sorted := slices.Clone(creators)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return &Browser{creators: sorted, filters: filters, page: 0}
}

// Creators returns the sorted creator list backing the browser.
func (b *Browser) Creators() []catalog.Creator {
	return b.creators
}

// Filters returns the browse state the browser operates on.
func (b *Browser) Filters() *Filters {
	return b.filters
}

// Page returns the current page cursor (PageExhausted once enumeration is done).
func (b *Browser) Page() int {
	return b.page
}

// SetTerms replaces the free-text filter and resets pagination.
func (b *Browser) SetTerms(terms string) {
	b.filters.Terms = terms
	b.page = 0
}

// SetCreator selects a creator by sorted index (-1 = all) and resets both
// the pack selection and pagination.
func (b *Browser) SetCreator(idx int) {
	if idx < -1 || idx >= len(b.creators) {
		idx = -1
	}
	b.filters.Creator = idx
	b.filters.Packs = nil
	b.page = 0
}

// SetPacks restricts matches to the given pack ids and resets pagination.
func (b *Browser) SetPacks(ids []int) {
	b.filters.Packs = ids
	b.page = 0
}

// ToggleType sets the asset-type filter, or clears it when the same type is
// applied twice, and resets pagination.
func (b *Browser) ToggleType(kind catalog.Kind) {
	if b.filters.Type == kind {
		b.filters.Type = catalog.KindAny
	} else {
		b.filters.Type = kind
	}
	b.page = 0
}

// NextPage evaluates the filters over the full catalog and materializes the
// next page of matches. All prior matches are still walked: cost is linear
// in total matches, which keeps the enumeration restartable without held
// cursor state. A call yielding zero entries sets the cursor to
// PageExhausted; further calls are no-ops.
func (b *Browser) NextPage() []Entry {
	if b.page == PageExhausted {
		return nil
	}

	filters := search.Filters{
		AssetType: b.filters.Type,
		Terms:     search.ParseTerms(b.filters.Terms),
	}

	creators := b.creators
	if b.filters.Creator >= 0 && b.filters.Creator < len(b.creators) {
		creators = b.creators[b.filters.Creator : b.filters.Creator+1]
	}

	lo := b.page * PageSize
	hi := lo + PageSize

	var entries []Entry
	assetIdx := 0
	for ci := range creators {
		c := &creators[ci]
		for pi := range c.Packs {
			p := &c.Packs[pi]
			if len(b.filters.Packs) > 0 && !slices.Contains(b.filters.Packs, p.ID) {
				continue
			}
			for ai := range p.Assets {
				a := &p.Assets[ai]
				if !filters.Matches(a) {
					continue
				}
				if assetIdx >= lo && assetIdx < hi {
					entries = append(entries, Entry{Asset: a, Pack: p, Creator: c})
				}
				assetIdx++
			}
		}
	}

	if len(entries) == 0 {
		b.page = PageExhausted
		return nil
	}
	b.page++
	return entries
}

// PackGroups returns the pack selector entries for the currently selected
// creator, sorted by group name. An unselected creator yields no groups.
func (b *Browser) PackGroups() []PackGroup {
	if b.filters.Creator < 0 || b.filters.Creator >= len(b.creators) {
		return nil
	}
	combined := catalog.CombinePacks(b.creators[b.filters.Creator].Packs)

	names := make([]string, 0, len(combined))
	for name := range combined {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	groups := make([]PackGroup, 0, len(names))
	for _, name := range names {
		g := PackGroup{Name: name}
		for _, p := range combined[name] {
			g.IDs = append(g.IDs, p.ID)
			g.AssetCount += len(p.Assets)
		}
		groups = append(groups, g)
	}
	return groups
}

package catalog

import "time"

// Kind discriminates the asset variants. The zero value KindAny is only
// meaningful as a type filter ("match everything"), never on a parsed asset.
type Kind int

const (
	KindAny   Kind = 0
	KindImage Kind = 1
	KindSound Kind = 2
	KindText  Kind = 3
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindSound:
		return "sound"
	case KindText:
		return "text"
	default:
		return "any"
	}
}

// Asset is one downloadable entry of a pack. Kind selects which of the
// optional fields are meaningful: Duration for sounds, Description/Type/
// Subtype for text assets.
type Asset struct {
	// Kind is the variant discriminator (image, sound or text)
	Kind Kind

	// Path is the asset's relative location within its pack (unique per pack)
	Path string

	// Duration is the sound length in seconds (sounds only)
	Duration int

	// Description is an optional free-text summary (text assets only)
	Description string

	// Type is an optional tag (text assets only)
	Type string

	// Subtype is an optional tag, meaningful only when Type is set
	Subtype string
}

// Pack is a named collection of assets from one storage location.
type Pack struct {
	// ID is the catalog-unique numeric identifier
	ID int

	// Name is the display name
	Name string

	// Path is the base storage URL or git-style remote
	Path string

	// SAS is an optional storage access-signature query suffix
	SAS string

	// PackID is derived from the last path segment of git-style remotes and
	// is used to match locally materialized files back to their pack
	PackID string

	// Assets is the ordered asset list; never empty after parsing
	Assets []Asset
}

// AssetCount returns the number of assets in the pack.
func (p *Pack) AssetCount() int {
	return len(p.Assets)
}

// Creator is a publisher of one or more packs.
type Creator struct {
	// Name is the publisher name
	Name string

	// Packs is the ordered pack list; never empty after parsing
	Packs []Pack
}

// AssetCount returns the number of assets across all packs of the creator.
func (c *Creator) AssetCount() int {
	total := 0
	for i := range c.Packs {
		total += len(c.Packs[i].Assets)
	}
	return total
}

// Catalog is the full creator graph returned by one fetch, paired with the
// time it was fetched. Catalogs are immutable after publish: a refresh
// replaces the whole value, it never mutates one in place.
type Catalog struct {
	Creators  []Creator
	FetchedAt time.Time
}

// Empty reports whether the catalog holds no creators.
func (c Catalog) Empty() bool {
	return len(c.Creators) == 0
}

// FindPackByID returns the pack across all creators whose PackID matches,
// together with its creator, or nil when no pack matches.
func FindPackByID(creators []Creator, packID string) (*Creator, *Pack) {
	if packID == "" {
		return nil, nil
	}
	for ci := range creators {
		for pi := range creators[ci].Packs {
			if creators[ci].Packs[pi].PackID == packID {
				return &creators[ci], &creators[ci].Packs[pi]
			}
		}
	}
	return nil, nil
}

// FindPackByPathSuffix returns the first pack whose storage path ends with
// the given suffix, or nil when no pack matches.
func FindPackByPathSuffix(creators []Creator, suffix string) (*Creator, *Pack) {
	if suffix == "" {
		return nil, nil
	}
	for ci := range creators {
		for pi := range creators[ci].Packs {
			p := &creators[ci].Packs[pi]
			if len(p.Path) >= len(suffix) && p.Path[len(p.Path)-len(suffix):] == suffix {
				return &creators[ci], p
			}
		}
	}
	return nil, nil
}

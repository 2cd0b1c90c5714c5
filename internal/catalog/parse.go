package catalog

import (
	"encoding/json"
	"strings"
)

// Parsing of raw catalog data. These functions are total: malformed or
// unrecognized input degrades to omission (no asset, pack dropped, creator
// dropped), never to an error.

// rawAssetObject is the structured form of an asset entry.
type rawAssetObject struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	Duration int    `json:"duration"`
	Meta     *struct {
		Description string `json:"description"`
		Type        string `json:"type"`
		Subtype     string `json:"subtype"`
	} `json:"meta"`
}

// rawPack is the wire shape of a pack entry.
type rawPack struct {
	ID     int               `json:"id"`
	Name   string            `json:"name"`
	Path   string            `json:"path"`
	SAS    string            `json:"sas"`
	Assets []json.RawMessage `json:"assets"`
}

// rawCreator is the wire shape of a creator entry.
type rawCreator struct {
	Publisher string            `json:"publisher"`
	Packs     []json.RawMessage `json:"packs"`
}

// extensionKinds maps known file extensions to asset kinds.
var extensionKinds = map[string]Kind{
	"webp": KindImage,
	"ogg":  KindSound,
	"mp3":  KindSound,
	"md":   KindText,
}

// ParseAsset parses one raw asset entry, either a bare path string or a
// structured object. An explicit "snd"/"md" type wins over the extension;
// unrecognized entries yield ok=false.
func ParseAsset(raw json.RawMessage) (Asset, bool) {
	// Bare path string: classify by extension
	var path string
	if err := json.Unmarshal(raw, &path); err == nil {
		ext := path
		if idx := strings.LastIndex(path, "."); idx >= 0 {
			ext = path[idx+1:]
		}
		kind, ok := extensionKinds[strings.ToLower(ext)]
		if !ok {
			return Asset{}, false
		}
		return Asset{Kind: kind, Path: path}, true
	}

	// Structured object: explicit type field takes priority
	var obj rawAssetObject
	if err := json.Unmarshal(raw, &obj); err != nil || obj.Path == "" {
		return Asset{}, false
	}
	switch obj.Type {
	case "snd":
		dur := obj.Duration
		if dur < 0 {
			dur = 0
		}
		return Asset{Kind: KindSound, Path: obj.Path, Duration: dur}, true
	case "md":
		a := Asset{Kind: KindText, Path: obj.Path}
		if obj.Meta != nil {
			a.Description = obj.Meta.Description
			a.Type = obj.Meta.Type
			a.Subtype = obj.Meta.Subtype
		}
		return a, true
	}
	return Asset{}, false
}

// ParsePack parses one raw pack entry. Assets that fail to parse are silently
// dropped; a pack left with zero assets yields ok=false because it carries no
// useful content.
func ParsePack(raw json.RawMessage) (Pack, bool) {
	var rp rawPack
	if err := json.Unmarshal(raw, &rp); err != nil {
		return Pack{}, false
	}

	pack := Pack{ID: rp.ID, Name: rp.Name, Path: rp.Path, SAS: rp.SAS}
	if strings.HasSuffix(rp.Path, ".git") {
		last := rp.Path[strings.LastIndex(rp.Path, "/")+1:]
		pack.PackID = strings.TrimSuffix(last, ".git")
	}

	for _, ra := range rp.Assets {
		if asset, ok := ParseAsset(ra); ok {
			pack.Assets = append(pack.Assets, asset)
		}
	}
	if len(pack.Assets) == 0 {
		return Pack{}, false
	}
	return pack, true
}

// ParseCreator parses one raw creator entry, dropping empty packs. A creator
// left with zero packs yields ok=false.
func ParseCreator(raw json.RawMessage) (Creator, bool) {
	var rc rawCreator
	if err := json.Unmarshal(raw, &rc); err != nil {
		return Creator{}, false
	}

	creator := Creator{Name: rc.Publisher}
	for _, rp := range rc.Packs {
		if pack, ok := ParsePack(rp); ok {
			creator.Packs = append(creator.Packs, pack)
		}
	}
	if len(creator.Packs) == 0 {
		return Creator{}, false
	}
	return creator, true
}

// ImportCreators parses a raw top-level creator list. Nil or malformed input
// yields an empty list, never an error.
func ImportCreators(raw json.RawMessage) []Creator {
	if len(raw) == 0 {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	var creators []Creator
	for _, rc := range list {
		if creator, ok := ParseCreator(rc); ok {
			creators = append(creators, creator)
		}
	}
	return creators
}

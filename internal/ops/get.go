package ops

import (
	"context"
	"strconv"
	"strings"

	"github.com/sworl/mill/internal/catalog"
	"github.com/sworl/mill/internal/errors"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	Pack     string // packId, or a numeric catalog id
	Path     string // asset path within the pack
	Download bool   // materialize the asset into the vault
}

// GetOutput describes one asset, with its vault location when downloaded.
type GetOutput struct {
	SearchItem
	PackID    int    `json:"pack_id"`
	LocalPath string `json:"local_path,omitempty"`
}

// Get looks up a single asset by pack and path. With Download set, image
// and sound assets are fetched from the pack's storage backend and text
// assets through the download endpoint, in both cases landing under the
// vault's download prefix.
func Get(ctx context.Context, a *App, input GetInput) (*GetOutput, error) {
	packRef := strings.TrimSpace(input.Pack)
	path := strings.TrimSpace(input.Path)
	if packRef == "" || path == "" {
		return nil, errors.NewInvalidRequest("pack and path are required")
	}

	creators, err := a.Cache.GetCreators(ctx)
	if err != nil {
		return nil, err
	}

	creator, pack := findPack(creators, packRef)
	if pack == nil {
		return nil, errors.NewNotFound(packRef)
	}

	for i := range pack.Assets {
		asset := &pack.Assets[i]
		if asset.Path != path {
			continue
		}
		out := &GetOutput{
			SearchItem: SearchItem{
				Name:    catalog.BeautifyName(lastSegment(asset.Path)),
				Creator: creator.Name,
				Pack:    pack.Name,
				Kind:    asset.Kind.String(),
				Path:    asset.Path,
				URL:     a.absoluteURL(asset.ResolveURL(pack, a.Session(), a.now())),
				Thumb:   asset.ThumbURL(pack),
			},
			PackID: pack.ID,
		}
		if asset.Kind == catalog.KindSound {
			out.Duration = catalog.FormatDuration(asset.Duration)
		}
		if asset.Kind == catalog.KindText {
			out.Description = asset.Description
		}
		if input.Download {
			local, err := a.Downloader.Binary(ctx, out.URL)
			if err != nil {
				return nil, err
			}
			out.LocalPath = local
		}
		return out, nil
	}
	return nil, errors.NewNotFound(packRef + "/" + path)
}

// findPack resolves a pack reference: a packId first, then a numeric
// catalog id.
func findPack(creators []catalog.Creator, ref string) (*catalog.Creator, *catalog.Pack) {
	if creator, pack := catalog.FindPackByID(creators, ref); pack != nil {
		return creator, pack
	}
	id, err := strconv.Atoi(ref)
	if err != nil {
		return nil, nil
	}
	for ci := range creators {
		for pi := range creators[ci].Packs {
			if creators[ci].Packs[pi].ID == id {
				return &creators[ci], &creators[ci].Packs[pi]
			}
		}
	}
	return nil, nil
}

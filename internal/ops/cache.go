package ops

import (
	"context"
)

// ClearCacheOutput confirms the cache was discarded.
type ClearCacheOutput struct {
	Cleared bool `json:"cleared"`
}

// ClearCache discards the in-memory catalog and its persisted snapshot.
// The next catalog read refetches from the service.
func ClearCache(a *App) (*ClearCacheOutput, error) {
	a.Cache.Clear()
	return &ClearCacheOutput{Cleared: true}, nil
}

// RefreshOutput summarizes the freshly fetched catalog.
type RefreshOutput struct {
	Creators int `json:"creators"`
	Packs    int `json:"packs"`
	Assets   int `json:"assets"`
}

// Refresh forces a catalog refetch and reports what came back.
func Refresh(ctx context.Context, a *App) (*RefreshOutput, error) {
	a.Cache.Clear()
	creators, err := a.Cache.GetCreators(ctx)
	if err != nil {
		return nil, err
	}

	out := &RefreshOutput{Creators: len(creators)}
	for i := range creators {
		out.Packs += len(creators[i].Packs)
		out.Assets += creators[i].AssetCount()
	}
	return out, nil
}

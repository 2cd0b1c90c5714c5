package ops

import (
	"github.com/sworl/mill/internal/db"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Limit int // default 20
}

// HistoryOutput lists recorded downloads, newest first.
type HistoryOutput struct {
	Items []db.Download `json:"items"`
}

// History returns the most recent entries of the download ledger. Without
// a configured store the ledger is empty.
func History(a *App, input HistoryInput) (*HistoryOutput, error) {
	if a.Store == nil {
		return &HistoryOutput{}, nil
	}
	items, err := db.RecentDownloads(a.Store, input.Limit)
	if err != nil {
		return nil, err
	}
	return &HistoryOutput{Items: items}, nil
}

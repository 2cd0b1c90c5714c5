// Package download materializes remote assets into the vault. Downloads are
// idempotent: an already-present file is never refetched or rewritten.
package download

import (
	"context"
	"database/sql"
	"net/url"
	"strings"
	"time"

	"github.com/sworl/mill/internal/client"
	"github.com/sworl/mill/internal/db"
	"github.com/sworl/mill/internal/errors"
	"github.com/sworl/mill/internal/vault"
)

// Fetcher is the transport the downloader pulls bytes through.
type Fetcher interface {
	DownloadBinary(ctx context.Context, url string) ([]byte, error)
	ServerURL() string
}

// Downloader maps remote URLs to vault paths and fetches their content.
type Downloader struct {
	fetcher Fetcher
	vault   vault.Vault
	prefix  string
	store   *sql.DB
	now     func() time.Time
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithStore records completed downloads in the given database's ledger.
func WithStore(store *sql.DB) Option {
	return func(d *Downloader) { d.store = store }
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(d *Downloader) { d.now = now }
}

// New creates a downloader writing under the given vault prefix. The prefix
// is normalized to end with a slash.
func New(fetcher Fetcher, v vault.Vault, prefix string, opts ...Option) *Downloader {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	d := &Downloader{
		fetcher: fetcher,
		vault:   v,
		prefix:  prefix,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Prefix returns the normalized vault prefix downloads land under.
func (d *Downloader) Prefix() string {
	return d.prefix
}

// LocalPath derives the vault-relative destination for a remote URL.
//   - Storage-backend URLs map to the prefix plus the blob path, with the
//     access-signature query stripped.
//   - Catalog-service download URLs map to the prefix plus the file query
//     parameter; a service URL without one is an error.
//   - Anything else maps to the prefix plus the URL path.
func (d *Downloader) LocalPath(rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, client.RemoteBase) {
		rest := strings.TrimPrefix(rawURL, client.RemoteBase)
		rest = strings.TrimPrefix(rest, "/")
		if i := strings.LastIndex(rest, "?"); i >= 0 {
			rest = rest[:i]
		}
		return d.prefix + rest, nil
	}
	if strings.HasPrefix(rawURL, d.fetcher.ServerURL()) {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", errors.NewInvalidRequest("malformed URL: " + rawURL)
		}
		file := u.Query().Get("file")
		if file == "" {
			return "", errors.NewInvalidRequest("service URL without file parameter: " + rawURL)
		}
		return d.prefix + strings.TrimPrefix(file, "/"), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.NewInvalidRequest("malformed URL: " + rawURL)
	}
	return d.prefix + strings.TrimPrefix(u.Path, "/"), nil
}

// Binary downloads the URL into the vault and returns the vault-relative
// path. When the destination already exists the network is skipped and the
// existing path is returned.
func (d *Downloader) Binary(ctx context.Context, rawURL string) (string, error) {
	path, err := d.LocalPath(rawURL)
	if err != nil {
		return "", err
	}
	if d.vault.Exists(path) {
		return path, nil
	}
	data, err := d.fetcher.DownloadBinary(ctx, rawURL)
	if err != nil {
		return "", err
	}
	if err := d.vault.WriteBinary(path, data); err != nil {
		return "", err
	}
	d.record(rawURL, path, int64(len(data)))
	return path, nil
}

// record appends a ledger entry. Best-effort: ledger failures never fail
// the download that produced the file.
func (d *Downloader) record(url, path string, bytes int64) {
	if d.store == nil {
		return
	}
	_ = db.RecordDownload(d.store, url, path, bytes, d.now())
}

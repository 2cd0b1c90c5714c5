// Package resolve rewrites asset references embedded in downloaded markdown.
// Reference tokens come in two shapes: [[target]] links to an asset without
// fetching it, ![[target]] embeds it and triggers a download. Resolution is
// best-effort per token: a miss or a failed download leaves that token
// untouched and processing continues.
package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sworl/mill/internal/catalog"
	"github.com/sworl/mill/internal/errors"
)

// refPattern matches one reference token: an optional embed mark followed by
// a double-bracketed target.
var refPattern = regexp.MustCompile(`(!?)\[\[([^\]]+)\]\]`)

// Binaries materializes remote binaries into the vault.
type Binaries interface {
	Binary(ctx context.Context, url string) (string, error)
	Prefix() string
}

// Texts fetches markdown content from the catalog service.
type Texts interface {
	DownloadText(ctx context.Context, uri string) (string, error)
	ServerURL() string
}

// Catalogs supplies the creator graph references are resolved against.
type Catalogs interface {
	GetCreators(ctx context.Context) ([]catalog.Creator, error)
}

// Resolver resolves markdown reference tokens against the catalog.
type Resolver struct {
	bins    Binaries
	texts   Texts
	catalog Catalogs
	session func() string
	now     func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// New creates a resolver. The session callback is read per resolution so a
// login takes effect without rebuilding the resolver.
func New(bins Binaries, texts Texts, catalogs Catalogs, session func() string, opts ...Option) *Resolver {
	r := &Resolver{
		bins:    bins,
		texts:   texts,
		catalog: catalogs,
		session: session,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve scans the markdown for reference tokens and processes each one
// left to right. Replacements are applied by token position, so duplicate
// identical tokens each resolve independently. The rewritten text is always
// returned, even when some tokens could not be resolved.
func (r *Resolver) Resolve(ctx context.Context, markdown string) string {
	matches := refPattern.FindAllStringSubmatchIndex(markdown, -1)
	if len(matches) == 0 {
		return markdown
	}

	creators, err := r.catalog.GetCreators(ctx)
	if err != nil {
		return markdown
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		embed := m[3] > m[2]
		target := markdown[m[4]:m[5]]

		out.WriteString(markdown[last:m[0]])
		out.WriteString(r.resolveToken(ctx, creators, markdown[m[0]:m[1]], embed, target))
		last = m[1]
	}
	out.WriteString(markdown[last:])
	return out.String()
}

// resolveToken returns the replacement text for one token, or the original
// token text when nothing applies.
func (r *Resolver) resolveToken(ctx context.Context, creators []catalog.Creator, token string, embed bool, target string) string {
	prefix := r.bins.Prefix()

	// A vault-local reference: the asset lives (or will live) under the
	// download prefix. Embeds fetch the binary from the pack's storage
	// backend; plain links already point at a local path and stay as-is.
	if strings.HasPrefix(target, prefix) {
		rest := strings.TrimPrefix(target, prefix)
		segments := strings.SplitN(rest, "/", 3)
		if len(segments) < 3 {
			return token
		}
		base := segments[0] + "/" + segments[1]
		_, pack := catalog.FindPackByPathSuffix(creators, base)
		if pack != nil && embed {
			url := pack.Path + strings.TrimPrefix(rest, base)
			if pack.SAS != "" {
				url += "?" + pack.SAS
			}
			_, _ = r.bins.Binary(ctx, url)
		}
		return token
	}

	// A pack-relative reference: the first segment names a packId. Embeds
	// download through the asset endpoint and point at the downloaded file;
	// plain links are rewritten under the prefix without downloading, the
	// content materializing only when the user opens it.
	packID := strings.SplitN(strings.TrimPrefix(target, "/"), "/", 2)[0]
	_, pack := catalog.FindPackByID(creators, packID)
	if pack == nil {
		return token
	}

	var path string
	if embed {
		url := fmt.Sprintf("%s/assets/download-asset/%s/%d?file=%s&ms=%d",
			r.texts.ServerURL(), catalog.SessionOrDemo(r.session()), pack.ID, target, r.now().UnixMilli())
		p, err := r.bins.Binary(ctx, url)
		if err != nil {
			return token
		}
		path = p
	} else {
		path = r.bins.Prefix() + strings.TrimPrefix(target, "/")
	}

	mark := ""
	if embed {
		mark = "!"
	}
	return mark + "[[" + path + "]]"
}

// DownloadMarkdown fetches markdown from the catalog service and resolves
// its references. The literal placeholder SESSIONID in the URI is replaced
// with the current session before the request.
func (r *Resolver) DownloadMarkdown(ctx context.Context, uri string) (string, error) {
	uri = strings.ReplaceAll(uri, "SESSIONID", catalog.SessionOrDemo(r.session()))
	text, err := r.texts.DownloadText(ctx, uri)
	if err != nil {
		return "", err
	}
	return r.Resolve(ctx, text), nil
}

// DownloadPage hydrates a markdown file that just materialized under the
// download prefix: the path's first segment below the prefix names a packId,
// and the full prefix-stripped path must match one of the pack's assets. On
// a match the page content is fetched and resolved. Anything else is a miss.
func (r *Resolver) DownloadPage(ctx context.Context, localPath string) (string, error) {
	prefix := r.bins.Prefix()
	if !strings.HasSuffix(localPath, ".md") || !strings.HasPrefix(localPath, prefix) {
		return "", errors.NewNoMatch(localPath)
	}
	rest := strings.TrimPrefix(localPath, prefix)
	packID := strings.SplitN(rest, "/", 2)[0]

	creators, err := r.catalog.GetCreators(ctx)
	if err != nil {
		return "", err
	}
	_, pack := catalog.FindPackByID(creators, packID)
	if pack == nil {
		return "", errors.NewNoMatch(localPath)
	}

	for i := range pack.Assets {
		a := &pack.Assets[i]
		if a.Path != rest {
			continue
		}
		uri := fmt.Sprintf("/assets/download-asset/%s/%d?file=%s&ms=%d",
			catalog.SessionOrDemo(r.session()), pack.ID, a.Path, r.now().UnixMilli())
		return r.DownloadMarkdown(ctx, uri)
	}
	return "", errors.NewNoMatch(localPath)
}

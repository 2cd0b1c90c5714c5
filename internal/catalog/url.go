package catalog

import (
	"fmt"
	"strings"
	"time"
)

// DemoSession is the fixed identifier used by download endpoints when no
// valid session is configured.
const DemoSession = "demo-user"

// SessionIDLength is the exact length of a valid session identifier.
const SessionIDLength = 26

// SessionOrDemo returns the session id when it has the expected length,
// DemoSession otherwise.
func SessionOrDemo(sessionID string) string {
	if len(sessionID) == SessionIDLength {
		return sessionID
	}
	return DemoSession
}

// ResolveURL returns the asset's absolute fetch URL. For image and sound
// assets this is the pack storage path plus the asset path, with the pack's
// access signature appended when present. For text assets it is a
// server-relative download endpoint parameterized by session, pack id and
// asset path, with a cache-busting timestamp.
//
// The result is a pure function of (asset, pack, sessionID, now).
func (a *Asset) ResolveURL(p *Pack, sessionID string, now time.Time) string {
	switch a.Kind {
	case KindImage, KindSound:
		url := p.Path + "/" + a.Path
		if p.SAS != "" {
			url += "?" + p.SAS
		}
		return url
	case KindText:
		return fmt.Sprintf("/assets/download-asset/%s/%d?file=%s&ms=%d",
			SessionOrDemo(sessionID), p.ID, a.Path, now.UnixMilli())
	default:
		return ""
	}
}

// ThumbURL returns the thumbnail URL for an image asset: the asset URL with
// its extension replaced by a _thumb.webp suffix. Non-image assets have no
// thumbnail and yield an empty string.
func (a *Asset) ThumbURL(p *Pack) string {
	if a.Kind != KindImage {
		return ""
	}
	path := a.Path
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		path = path[:idx]
	}
	url := p.Path + "/" + path + "_thumb.webp"
	if p.SAS != "" {
		url += "?" + p.SAS
	}
	return url
}

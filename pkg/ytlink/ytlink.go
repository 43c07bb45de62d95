// Package ytlink classifies and normalizes YouTube and YouTube Music links.
package ytlink

import (
	"fmt"
	"net/url"
	"strings"

	"tunebridge/internal/core"
)

// ResourceType identifies what kind of resource a YouTube-family URL
// addresses. Classification is a pure function of URL structure; Unknown is
// the catch-all, never an error.
type ResourceType int

const (
	// Unknown is the fallback for URLs that carry no recognizable resource.
	Unknown ResourceType = iota
	// Video is a single video resource.
	Video
	// Playlist is a user-curated playlist resource.
	Playlist
	// Album is an auto-generated album playlist resource.
	Album
)

// String returns the lowercase name of the resource type.
func (t ResourceType) String() string {
	switch t {
	case Video:
		return "video"
	case Playlist:
		return "playlist"
	case Album:
		return "album"
	default:
		return "unknown"
	}
}

// Resource is the classification result: the resource id and its type.
type Resource struct {
	ID   string
	Type ResourceType
}

const (
	// radioMixPrefix marks list ids that are radio-continuation mixes. A
	// watch link carrying one is still a single-video request.
	radioMixPrefix = "RD"
	// autoAlbumPrefix marks list ids of auto-generated album playlists.
	autoAlbumPrefix = "OLAK5uy_"
	// shortLinkHost serves youtu.be short links with the video id in the path.
	shortLinkHost = "youtu.be"
	// canonicalHost is the host every music/mobile subdomain normalizes to.
	canonicalHost = "www.youtube.com"
)

// allowedHosts is the set of hosts the validator and classifier accept.
var allowedHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// trackingParams are volatile query parameters stripped by NormalizeURL so
// cosmetically different URLs for the same resource classify identically.
var trackingParams = []string{"si", "feature", "index", "t", "pp", "start_radio"}

// Classify maps a raw URL onto a typed resource. It never fails: malformed
// or unrecognizable input yields an Unknown resource with an empty id.
//
// The list parameter is overloaded by the source platform for three distinct
// semantics (radio continuation, auto-generated album, genuine playlist)
// distinguished only by an id prefix convention, so the rule order below
// must not be rearranged.
func Classify(rawURL string) Resource {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Resource{Type: Unknown}
	}

	host := strings.ToLower(u.Hostname())
	path := strings.Trim(u.Path, "/")
	query := u.Query()

	// Short links carry the video id as the path.
	if host == shortLinkHost {
		if path == "" {
			return Resource{Type: Unknown}
		}
		return Resource{ID: firstSegment(path), Type: Video}
	}

	videoID := query.Get("v")
	listID := query.Get("list")

	// Canonical watch path.
	if path == "watch" && videoID != "" {
		switch {
		case strings.HasPrefix(listID, autoAlbumPrefix):
			return Resource{ID: listID, Type: Album}
		case listID != "" && !strings.HasPrefix(listID, radioMixPrefix):
			return Resource{ID: listID, Type: Playlist}
		default:
			// No list, or a radio-seeded mix: a single-video request.
			return Resource{ID: videoID, Type: Video}
		}
	}

	// Playlist path.
	if path == "playlist" && listID != "" {
		if strings.HasPrefix(listID, autoAlbumPrefix) {
			return Resource{ID: listID, Type: Album}
		}
		return Resource{ID: listID, Type: Playlist}
	}

	// YouTube Music album browse pages: /browse/<albumID>.
	if segs := strings.Split(path, "/"); len(segs) >= 2 && segs[0] == "browse" {
		return Resource{ID: segs[len(segs)-1], Type: Album}
	}

	// Last resort: a bare v parameter anywhere still identifies a video.
	if videoID != "" {
		return Resource{ID: videoID, Type: Video}
	}

	return Resource{Type: Unknown}
}

// NormalizeURL strips volatile tracking query parameters and rewrites
// music/mobile subdomain hosts to the canonical web host, so equivalent URLs
// classify and cache identically. Malformed input is returned unchanged.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	host := strings.ToLower(u.Hostname())
	if host == "music.youtube.com" || host == "m.youtube.com" || host == "youtube.com" {
		u.Host = canonicalHost
	}

	query := u.Query()
	for _, param := range trackingParams {
		query.Del(param)
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// Validate gates the conversion entry point: it accepts only YouTube-family
// hosts whose URL shape yields a classifiable resource. It performs no
// network calls.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", core.ErrInvalidURL, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if !allowedHosts[host] {
		return fmt.Errorf("%w: unsupported host %q", core.ErrInvalidURL, host)
	}

	if Classify(rawURL).Type == Unknown {
		return fmt.Errorf("%w: no resource id in %q", core.ErrInvalidURL, rawURL)
	}

	return nil
}

// firstSegment returns the path up to the first slash, dropping trailing
// segments youtu.be sometimes appends.
func firstSegment(path string) string {
	if idx := strings.IndexByte(path, '/'); idx != -1 {
		return path[:idx]
	}
	return path
}

package core

import (
	"context"
	"time"
)

// TrackDescriptor is the normalized, in-memory representation of a single
// source video. TrackName and ArtistName are derived by heuristic title
// parsing and are best-effort, not authoritative.
type TrackDescriptor struct {
	SourceID      string
	TrackName     string
	ArtistName    string
	ThumbnailURL  string
	OriginalTitle string
}

// PlaylistTrackDescriptor is one member of a resolved playlist or album.
// Position is the item's ordinal slot in the source playlist; unavailable
// items are skipped but still consume a slot, so positions may have gaps.
type PlaylistTrackDescriptor struct {
	TrackDescriptor
	Position int
}

// PlaylistDescriptor is the normalized representation of a playlist or
// auto-generated album. Tracks preserves source ordering.
type PlaylistDescriptor struct {
	Title       string
	Description string
	Tracks      []PlaylistTrackDescriptor
	TotalCount  int
}

// MatchedTrack is the candidate chosen from the target catalog. Its name and
// artist come from the catalog and may differ from the descriptor that
// produced it.
type MatchedTrack struct {
	TargetURL    string
	TrackName    string
	ArtistName   string
	AlbumName    string
	ThumbnailURL string
}

// ConversionRecord is the persisted outcome of a successful conversion,
// keyed uniquely by the literal source URL string. Records are created once
// and never mutated.
type ConversionRecord struct {
	SourceURL    string
	TargetURL    string
	TrackName    string
	ArtistName   string
	AlbumName    string
	ThumbnailURL string
	CreatedAt    time.Time
}

// MetadataResolver resolves a source URL into normalized metadata.
type MetadataResolver interface {
	ResolveTrack(ctx context.Context, url string) (*TrackDescriptor, error)
	ResolvePlaylist(ctx context.Context, url string) (*PlaylistDescriptor, error)
}

// TrackMatcher finds the best candidate for a track on the target catalog.
// A nil result with a nil error means the catalog had no candidate at all.
type TrackMatcher interface {
	FindBestMatch(ctx context.Context, trackName, artistName string) (*MatchedTrack, error)
}

// ConversionStore persists conversion records keyed by source URL.
type ConversionStore interface {
	FindBySourceURL(ctx context.Context, sourceURL string) (*ConversionRecord, error)
	Create(ctx context.Context, record *ConversionRecord) (*ConversionRecord, error)
	Recent(ctx context.Context, limit int) ([]ConversionRecord, error)
}

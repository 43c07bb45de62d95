// Package youtube resolves YouTube-family links into normalized track and
// playlist metadata through a tiered fallback chain.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tunebridge/internal/core"
	"tunebridge/pkg/titleparse"
	"tunebridge/pkg/ytlink"
)

// topicChannelSuffix marks YouTube's auto-generated artist channels. The
// suffix is noise when the channel stands in for the artist name.
const topicChannelSuffix = " - Topic"

// trackTier is one strategy in the single-video resolution chain. A tier
// returns (nil, err) to fall through to the next tier.
type trackTier struct {
	name  string
	fetch func(ctx context.Context, rawURL string, res ytlink.Resource) (*core.TrackDescriptor, error)
}

// Resolver orchestrates link classification and the metadata tiers. Each
// call re-derives the resource type from the URL rather than trusting the
// caller, because the track and playlist entry points must agree on the same
// classification.
type Resolver struct {
	config *core.YouTubeConfig
	logger *zap.Logger
	data   *DataAPIClient
	embed  *OEmbedClient
	tiers  []trackTier
}

// NewResolver creates a resolver. Without an API key the authoritative tier
// is skipped and playlist resolution is unavailable.
func NewResolver(config *core.YouTubeConfig, logger *zap.Logger) *Resolver {
	r := &Resolver{
		config: config,
		logger: logger,
		embed:  NewOEmbedClient(config.RequestTimeout),
	}

	if config.APIKey != "" {
		r.data = NewDataAPIClient(config.APIKey, config.RequestTimeout)
	}

	// Tier order is fixed: authoritative catalog first, public embed
	// second. Adding a future tier is a list insertion.
	r.tiers = []trackTier{
		{name: "data_api", fetch: r.trackFromDataAPI},
		{name: "oembed", fetch: r.trackFromOEmbed},
	}

	return r
}

// ResolveTrack resolves a single-video URL into a TrackDescriptor, trying
// each tier in order and short-circuiting on first success. If every tier
// fails the error is core.ErrNotFound.
func (r *Resolver) ResolveTrack(ctx context.Context, rawURL string) (*core.TrackDescriptor, error) {
	res := ytlink.Classify(rawURL)

	for _, tier := range r.tiers {
		descriptor, err := tier.fetch(ctx, rawURL, res)
		if err != nil {
			// Intermediate tier failures are absorbed, logged only.
			r.logger.Debug("Resolution tier failed, falling through",
				zap.String("tier", tier.name),
				zap.String("url", rawURL),
				zap.Error(err))
			continue
		}
		return descriptor, nil
	}

	return nil, fmt.Errorf("%w: all resolution tiers exhausted for %q", core.ErrNotFound, rawURL)
}

// ResolvePlaylist resolves a playlist or album URL. The authoritative tier
// is mandatory here: no embed-based enumeration exists, so its failure is
// terminal immediately.
func (r *Resolver) ResolvePlaylist(ctx context.Context, rawURL string) (*core.PlaylistDescriptor, error) {
	res := ytlink.Classify(rawURL)
	if res.Type != ytlink.Playlist && res.Type != ytlink.Album {
		return nil, fmt.Errorf("%w: %q is not a playlist or album link", core.ErrNotFound, rawURL)
	}

	if r.data == nil {
		return nil, errors.New("playlist resolution requires a configured API key")
	}

	snippet, err := r.data.Playlist(ctx, res.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrNotFound, err)
	}

	items, err := r.data.PlaylistItems(ctx, res.ID, r.config.MaxPlaylistPages)
	if err != nil {
		return nil, fmt.Errorf("playlist enumeration failed: %w", err)
	}

	descriptor := &core.PlaylistDescriptor{
		Title:       snippet.Title,
		Description: snippet.Description,
		TotalCount:  len(items),
	}

	// Unavailable items are skipped but still consume their position slot,
	// so surviving tracks keep their original ordinal in the source list.
	for position, item := range items {
		if item.unavailable() {
			r.logger.Debug("Skipping unavailable playlist item",
				zap.String("playlistID", res.ID),
				zap.Int("position", position),
				zap.String("title", item.Title))
			continue
		}

		track, artist := titleparse.Parse(item.Title, cleanChannelName(item.VideoOwnerChannelTitle))
		descriptor.Tracks = append(descriptor.Tracks, core.PlaylistTrackDescriptor{
			TrackDescriptor: core.TrackDescriptor{
				SourceID:      item.ResourceID.VideoID,
				TrackName:     track,
				ArtistName:    artist,
				ThumbnailURL:  item.Thumbnails.bestURL(),
				OriginalTitle: item.Title,
			},
			Position: position,
		})
	}

	return descriptor, nil
}

// trackFromDataAPI is the authoritative tier: item metadata by id, keyed by
// the configured credential.
func (r *Resolver) trackFromDataAPI(ctx context.Context, rawURL string, res ytlink.Resource) (*core.TrackDescriptor, error) {
	if r.data == nil {
		return nil, errors.New("no API key configured")
	}
	if res.Type != ytlink.Video {
		return nil, fmt.Errorf("resource type %s is not a single video", res.Type)
	}

	snippet, err := r.data.Video(ctx, res.ID)
	if err != nil {
		return nil, err
	}

	track, artist := titleparse.Parse(snippet.Title, cleanChannelName(snippet.ChannelTitle))
	return &core.TrackDescriptor{
		SourceID:      res.ID,
		TrackName:     track,
		ArtistName:    artist,
		ThumbnailURL:  snippet.Thumbnails.bestURL(),
		OriginalTitle: snippet.Title,
	}, nil
}

// trackFromOEmbed is the public embed tier. It uses the normalized URL so
// music-subdomain links hit the embed endpoint in canonical form.
func (r *Resolver) trackFromOEmbed(ctx context.Context, rawURL string, res ytlink.Resource) (*core.TrackDescriptor, error) {
	resp, err := r.embed.Fetch(ctx, ytlink.NormalizeURL(rawURL))
	if err != nil {
		return nil, err
	}

	track, artist := titleparse.Parse(resp.Title, cleanChannelName(resp.AuthorName))
	return &core.TrackDescriptor{
		SourceID:      res.ID,
		TrackName:     track,
		ArtistName:    artist,
		ThumbnailURL:  resp.ThumbnailURL,
		OriginalTitle: resp.Title,
	}, nil
}

// cleanChannelName drops the auto-generated Topic suffix from channel names
// before they stand in for artist names.
func cleanChannelName(channel string) string {
	return strings.TrimSpace(strings.TrimSuffix(channel, topicChannelSuffix))
}

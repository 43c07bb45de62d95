// Package converter drives the conversion pipeline: validate, check the
// cache, resolve metadata, match on the target catalog, persist.
package converter

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tunebridge/internal/core"
	"tunebridge/pkg/ytlink"
)

// Converter is the idempotency boundary of the pipeline. Repeated requests
// for the same literal source URL return the stored record without touching
// either platform again.
type Converter struct {
	resolver core.MetadataResolver
	matcher  core.TrackMatcher
	store    core.ConversionStore
	logger   *zap.Logger
	inflight singleflight.Group
}

// New creates a converter over the given collaborators.
func New(resolver core.MetadataResolver, matcher core.TrackMatcher, store core.ConversionStore, logger *zap.Logger) *Converter {
	return &Converter{
		resolver: resolver,
		matcher:  matcher,
		store:    store,
		logger:   logger,
	}
}

// GetOrCreateConversion returns the conversion record for sourceURL,
// computing and persisting it on first sight. The record is keyed by the
// original URL string as supplied by the caller; failures are never cached.
func (c *Converter) GetOrCreateConversion(ctx context.Context, sourceURL string) (*core.ConversionRecord, error) {
	if err := ytlink.Validate(sourceURL); err != nil {
		return nil, err
	}

	existing, err := c.store.FindBySourceURL(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}
	if existing != nil && existing.TargetURL != "" {
		c.logger.Debug("Conversion served from cache", zap.String("sourceURL", sourceURL))
		return existing, nil
	}

	// Concurrent requests for the same uncached URL share one resolution
	// chain; the sqlite unique constraint backstops racing processes.
	result, err, _ := c.inflight.Do(sourceURL, func() (interface{}, error) {
		return c.convert(ctx, sourceURL)
	})
	if err != nil {
		return nil, err
	}

	return result.(*core.ConversionRecord), nil
}

// ResolvePreview resolves metadata only, without matching or persisting.
func (c *Converter) ResolvePreview(ctx context.Context, sourceURL string) (*core.TrackDescriptor, error) {
	if err := ytlink.Validate(sourceURL); err != nil {
		return nil, err
	}
	return c.resolver.ResolveTrack(ctx, sourceURL)
}

// ResolvePlaylist expands a playlist or album link into its track list.
func (c *Converter) ResolvePlaylist(ctx context.Context, sourceURL string) (*core.PlaylistDescriptor, error) {
	if err := ytlink.Validate(sourceURL); err != nil {
		return nil, err
	}
	return c.resolver.ResolvePlaylist(ctx, sourceURL)
}

// RecentConversions lists the latest stored records.
func (c *Converter) RecentConversions(ctx context.Context, limit int) ([]core.ConversionRecord, error) {
	return c.store.Recent(ctx, limit)
}

func (c *Converter) convert(ctx context.Context, sourceURL string) (*core.ConversionRecord, error) {
	// A request that lost the singleflight race can start a fresh flight
	// after the winner already persisted; re-check before resolving.
	existing, err := c.store.FindBySourceURL(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}
	if existing != nil && existing.TargetURL != "" {
		return existing, nil
	}

	descriptor, err := c.resolver.ResolveTrack(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	match, err := c.matcher.FindBestMatch(ctx, descriptor.TrackName, descriptor.ArtistName)
	if err != nil {
		return nil, fmt.Errorf("match attempt failed: %w", err)
	}
	if match == nil {
		return nil, fmt.Errorf("%w for %q by %q",
			core.ErrNoMatch, descriptor.TrackName, descriptor.ArtistName)
	}

	record, err := c.store.Create(ctx, &core.ConversionRecord{
		SourceURL:    sourceURL,
		TargetURL:    match.TargetURL,
		TrackName:    match.TrackName,
		ArtistName:   match.ArtistName,
		AlbumName:    match.AlbumName,
		ThumbnailURL: match.ThumbnailURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist conversion: %w", err)
	}

	c.logger.Info("Conversion created",
		zap.String("sourceURL", sourceURL),
		zap.String("targetURL", record.TargetURL),
		zap.String("track", record.TrackName),
		zap.String("artist", record.ArtistName))

	return record, nil
}

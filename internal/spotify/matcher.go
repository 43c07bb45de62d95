// Package spotify matches normalized track metadata against the Spotify
// catalog using multi-formulation search and a similarity tie-break.
package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"tunebridge/internal/core"
	"tunebridge/pkg/fuzzy"
)

// Candidate is one search result before the tie-break is applied.
type Candidate struct {
	Name         string
	Artists      []string
	AlbumName    string
	TargetURL    string
	ThumbnailURL string
}

// searcher abstracts one authenticated search session so the formulation
// loop and tie-break stay testable without HTTP.
type searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// Matcher finds the best Spotify candidate for a track. Each FindBestMatch
// call performs its own client-credentials token exchange; tokens are not
// cached across calls.
type Matcher struct {
	config  *core.SpotifyConfig
	logger  *zap.Logger
	connect func(ctx context.Context) (searcher, error)
}

// NewMatcher creates a matcher backed by the Spotify Web API.
func NewMatcher(config *core.SpotifyConfig, logger *zap.Logger) *Matcher {
	m := &Matcher{
		config: config,
		logger: logger,
	}
	m.connect = m.newSession
	return m
}

// FindBestMatch tries four query formulations in order and applies the
// tie-break to the first formulation that yields candidates. A nil result
// with a nil error means the catalog had nothing at all: an expected
// outcome, not a fault.
func (m *Matcher) FindBestMatch(ctx context.Context, trackName, artistName string) (*core.MatchedTrack, error) {
	session, err := m.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify session failed: %w", err)
	}

	for _, query := range buildFormulations(trackName, artistName) {
		candidates, err := session.Search(ctx, query)
		if err != nil {
			// A failed request advances to the next formulation, same as
			// an empty result set.
			m.logger.Debug("Search formulation failed",
				zap.String("query", query),
				zap.Error(err))
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		chosen := selectCandidate(candidates, trackName, artistName)
		m.logger.Debug("Selected candidate",
			zap.String("query", query),
			zap.String("candidate", chosen.Name),
			zap.Float64("titleSimilarity", fuzzy.Similarity(chosen.Name, trackName)))

		return &core.MatchedTrack{
			TargetURL:    chosen.TargetURL,
			TrackName:    chosen.Name,
			ArtistName:   joinArtists(chosen.Artists),
			AlbumName:    chosen.AlbumName,
			ThumbnailURL: chosen.ThumbnailURL,
		}, nil
	}

	return nil, nil
}

// buildFormulations returns the ordered query formulations: exact phrases,
// field-scoped phrases, unscoped conjunction, track name alone.
// Formulations that need an artist are dropped when none is known.
func buildFormulations(trackName, artistName string) []string {
	if artistName == "" {
		return []string{
			fmt.Sprintf("%q", trackName),
			trackName,
		}
	}

	return []string{
		fmt.Sprintf("%q %q", trackName, artistName),
		fmt.Sprintf("track:%q artist:%q", trackName, artistName),
		fmt.Sprintf("%s %s", trackName, artistName),
		trackName,
	}
}

// selectCandidate applies the tie-break: the first candidate whose name
// overlaps the query track name, or any of whose credited artists overlaps
// the query artist, wins. When no candidate passes either test the
// top-ranked one is kept as a last resort; the formulation loop never
// advances past a non-empty result set.
func selectCandidate(candidates []Candidate, trackName, artistName string) Candidate {
	for _, candidate := range candidates {
		if fuzzy.Overlaps(candidate.Name, trackName) {
			return candidate
		}
		for _, artist := range candidate.Artists {
			if fuzzy.Overlaps(artist, artistName) {
				return candidate
			}
		}
	}
	return candidates[0]
}

func joinArtists(artists []string) string {
	switch len(artists) {
	case 0:
		return ""
	case 1:
		return artists[0]
	}

	joined := artists[0]
	for _, artist := range artists[1:] {
		joined += ", " + artist
	}
	return joined
}

// newSession performs the client-credentials exchange and wraps the
// resulting client in one search session.
func (m *Matcher) newSession(ctx context.Context) (searcher, error) {
	authConfig := &clientcredentials.Config{
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	token, err := authConfig.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("client-credentials exchange failed: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	return &apiSession{
		client:        spotify.New(httpClient),
		maxCandidates: m.config.MaxCandidates,
	}, nil
}

// apiSession adapts the Spotify Web API client to the searcher interface.
type apiSession struct {
	client        *spotify.Client
	maxCandidates int
}

func (s *apiSession) Search(ctx context.Context, query string) ([]Candidate, error) {
	results, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(s.maxCandidates))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if results.Tracks == nil {
		return nil, nil
	}

	candidates := make([]Candidate, 0, len(results.Tracks.Tracks))
	for i := range results.Tracks.Tracks {
		track := &results.Tracks.Tracks[i]

		artists := make([]string, 0, len(track.Artists))
		for _, artist := range track.Artists {
			artists = append(artists, artist.Name)
		}

		thumbnail := ""
		if len(track.Album.Images) > 0 {
			thumbnail = track.Album.Images[0].URL
		}

		candidates = append(candidates, Candidate{
			Name:         track.Name,
			Artists:      artists,
			AlbumName:    track.Album.Name,
			TargetURL:    track.ExternalURLs["spotify"],
			ThumbnailURL: thumbnail,
		})
	}

	return candidates, nil
}

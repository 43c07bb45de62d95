package spotify

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tunebridge/internal/core"
)

func testMatcherConfig() *core.SpotifyConfig {
	return &core.SpotifyConfig{
		ClientID:       "id",
		ClientSecret:   "secret",
		RequestTimeout: 5 * time.Second,
		MaxCandidates:  10,
	}
}

// fakeSession records queries and serves canned result sets per formulation
// index.
type fakeSession struct {
	queries []string
	results [][]Candidate
	errs    []error
}

func (f *fakeSession) Search(_ context.Context, query string) ([]Candidate, error) {
	idx := len(f.queries)
	f.queries = append(f.queries, query)

	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	if idx < len(f.results) {
		return f.results[idx], err
	}
	return nil, err
}

func newFakeMatcher(session *fakeSession) *Matcher {
	m := NewMatcher(testMatcherConfig(), zap.NewNop())
	m.connect = func(context.Context) (searcher, error) {
		return session, nil
	}
	return m
}

func TestBuildFormulations(t *testing.T) {
	got := buildFormulations("Track", "Artist")
	want := []string{
		`"Track" "Artist"`,
		`track:"Track" artist:"Artist"`,
		"Track Artist",
		"Track",
	}

	if len(got) != len(want) {
		t.Fatalf("buildFormulations() returned %d formulations, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("formulation[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildFormulations_NoArtist(t *testing.T) {
	got := buildFormulations("Track", "")
	if len(got) != 2 {
		t.Fatalf("buildFormulations() with no artist returned %d formulations, want 2", len(got))
	}
	if got[len(got)-1] != "Track" {
		t.Errorf("last formulation = %q, want bare track name", got[len(got)-1])
	}
}

func TestSelectCandidate(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Candidate
		trackName  string
		artistName string
		expected   string
	}{
		{
			name: "First candidate with overlapping name wins",
			candidates: []Candidate{
				{Name: "Unrelated Song", Artists: []string{"Someone Else"}},
				{Name: "Track (Remastered)", Artists: []string{"Other"}},
			},
			trackName:  "Track",
			artistName: "Artist",
			expected:   "Track (Remastered)",
		},
		{
			name: "Artist overlap suffices",
			candidates: []Candidate{
				{Name: "Different Title", Artists: []string{"The Artist Band"}},
			},
			trackName:  "Track",
			artistName: "Artist",
			expected:   "Different Title",
		},
		{
			name: "Scan order decides between qualifying candidates",
			candidates: []Candidate{
				{Name: "Track live", Artists: []string{"Nobody"}},
				{Name: "Track", Artists: []string{"Artist"}},
			},
			trackName:  "Track",
			artistName: "Artist",
			expected:   "Track live",
		},
		{
			name: "Top-ranked fallback when nothing overlaps",
			candidates: []Candidate{
				{Name: "Completely Different", Artists: []string{"Nobody"}},
				{Name: "Also Different", Artists: []string{"No One"}},
			},
			trackName:  "Track",
			artistName: "Artist",
			expected:   "Completely Different",
		},
		{
			name: "Case and punctuation ignored",
			candidates: []Candidate{
				{Name: "TRACK!", Artists: []string{"X"}},
			},
			trackName:  "track",
			artistName: "Artist",
			expected:   "TRACK!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectCandidate(tt.candidates, tt.trackName, tt.artistName)
			if got.Name != tt.expected {
				t.Errorf("selectCandidate() = %q, want %q", got.Name, tt.expected)
			}
		})
	}
}

func TestFindBestMatch_FirstFormulationWins(t *testing.T) {
	session := &fakeSession{
		results: [][]Candidate{
			{{Name: "Track", Artists: []string{"Artist"}, AlbumName: "Album",
				TargetURL: "https://open.spotify.com/track/1"}},
		},
	}
	matcher := newFakeMatcher(session)

	match, err := matcher.FindBestMatch(context.Background(), "Track", "Artist")
	if err != nil {
		t.Fatalf("FindBestMatch() unexpected error: %v", err)
	}
	if match == nil {
		t.Fatal("FindBestMatch() = nil, want a match")
	}

	if len(session.queries) != 1 {
		t.Errorf("made %d search calls, want 1 (no advance past a non-empty result)", len(session.queries))
	}
	if match.TargetURL != "https://open.spotify.com/track/1" {
		t.Errorf("TargetURL = %q", match.TargetURL)
	}
	if match.ArtistName != "Artist" {
		t.Errorf("ArtistName = %q, want %q", match.ArtistName, "Artist")
	}
}

func TestFindBestMatch_AdvancesOnEmptyAndError(t *testing.T) {
	session := &fakeSession{
		results: [][]Candidate{
			nil, // formulation 1: empty
			nil, // formulation 2: request error
			{{Name: "Track", Artists: []string{"Artist"}}},
		},
		errs: []error{nil, errors.New("rate limited"), nil},
	}
	matcher := newFakeMatcher(session)

	match, err := matcher.FindBestMatch(context.Background(), "Track", "Artist")
	if err != nil {
		t.Fatalf("FindBestMatch() unexpected error: %v", err)
	}
	if match == nil {
		t.Fatal("FindBestMatch() = nil, want a match from the third formulation")
	}
	if len(session.queries) != 3 {
		t.Errorf("made %d search calls, want 3", len(session.queries))
	}
}

func TestFindBestMatch_NoResultsIsNotAnError(t *testing.T) {
	session := &fakeSession{}
	matcher := newFakeMatcher(session)

	match, err := matcher.FindBestMatch(context.Background(), "Obscure", "Unknown")
	if err != nil {
		t.Fatalf("FindBestMatch() exhausted formulations must not error, got: %v", err)
	}
	if match != nil {
		t.Errorf("FindBestMatch() = %+v, want nil", match)
	}

	if len(session.queries) != 4 {
		t.Errorf("made %d search calls, want all 4 formulations", len(session.queries))
	}
}

func TestFindBestMatch_SessionFailurePropagates(t *testing.T) {
	matcher := NewMatcher(testMatcherConfig(), zap.NewNop())
	matcher.connect = func(context.Context) (searcher, error) {
		return nil, errors.New("token endpoint unreachable")
	}

	_, err := matcher.FindBestMatch(context.Background(), "Track", "Artist")
	if err == nil {
		t.Fatal("FindBestMatch() expected error when the token exchange fails")
	}
}

func TestFindBestMatch_MultipleArtistsJoined(t *testing.T) {
	session := &fakeSession{
		results: [][]Candidate{
			{{Name: "Track", Artists: []string{"Artist", "Guest"}}},
		},
	}
	matcher := newFakeMatcher(session)

	match, err := matcher.FindBestMatch(context.Background(), "Track", "Artist")
	if err != nil {
		t.Fatalf("FindBestMatch() unexpected error: %v", err)
	}
	if match.ArtistName != "Artist, Guest" {
		t.Errorf("ArtistName = %q, want %q", match.ArtistName, "Artist, Guest")
	}
}

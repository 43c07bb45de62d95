package ytlink

import (
	"errors"
	"testing"

	"tunebridge/internal/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		expectedID   string
		expectedType ResourceType
	}{
		{
			name:         "Short link",
			url:          "https://youtu.be/dQw4w9WgXcQ",
			expectedID:   "dQw4w9WgXcQ",
			expectedType: Video,
		},
		{
			name:         "Short link with tracking parameter",
			url:          "https://youtu.be/dQw4w9WgXcQ?si=AbCdEf123",
			expectedID:   "dQw4w9WgXcQ",
			expectedType: Video,
		},
		{
			name:         "Plain watch link",
			url:          "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expectedID:   "dQw4w9WgXcQ",
			expectedType: Video,
		},
		{
			name:         "Watch link with radio mix list stays a video",
			url:          "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=RDdQw4w9WgXcQ&start_radio=1",
			expectedID:   "dQw4w9WgXcQ",
			expectedType: Video,
		},
		{
			name:         "Watch link with auto-generated album list",
			url:          "https://www.youtube.com/watch?v=abc123&list=OLAK5uy_kXJ9qwe",
			expectedID:   "OLAK5uy_kXJ9qwe",
			expectedType: Album,
		},
		{
			name:         "Watch link with genuine playlist list",
			url:          "https://www.youtube.com/watch?v=abc123&list=PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf",
			expectedID:   "PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf",
			expectedType: Playlist,
		},
		{
			name:         "Playlist path",
			url:          "https://www.youtube.com/playlist?list=PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf",
			expectedID:   "PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf",
			expectedType: Playlist,
		},
		{
			name:         "Playlist path with album prefix",
			url:          "https://music.youtube.com/playlist?list=OLAK5uy_kXJ9qwe",
			expectedID:   "OLAK5uy_kXJ9qwe",
			expectedType: Album,
		},
		{
			name:         "Music browse album page",
			url:          "https://music.youtube.com/browse/MPREb_9nqEki4ZDpp",
			expectedID:   "MPREb_9nqEki4ZDpp",
			expectedType: Album,
		},
		{
			name:         "Bare v parameter on unusual path",
			url:          "https://www.youtube.com/embed?v=dQw4w9WgXcQ",
			expectedID:   "dQw4w9WgXcQ",
			expectedType: Video,
		},
		{
			name:         "Music subdomain watch link",
			url:          "https://music.youtube.com/watch?v=abc123",
			expectedID:   "abc123",
			expectedType: Video,
		},
		{
			name:         "Homepage",
			url:          "https://www.youtube.com/",
			expectedType: Unknown,
		},
		{
			name:         "Malformed URL",
			url:          "http://%zz",
			expectedType: Unknown,
		},
		{
			name:         "Empty short link path",
			url:          "https://youtu.be/",
			expectedType: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.url)
			if got.ID != tt.expectedID {
				t.Errorf("Classify() ID = %q, want %q", got.ID, tt.expectedID)
			}
			if got.Type != tt.expectedType {
				t.Errorf("Classify() Type = %v, want %v", got.Type, tt.expectedType)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "Strips si tracking parameter",
			url:      "https://youtu.be/dQw4w9WgXcQ?si=AbCdEf123",
			expected: "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name:     "Rewrites music subdomain",
			url:      "https://music.youtube.com/watch?v=abc123",
			expected: "https://www.youtube.com/watch?v=abc123",
		},
		{
			name:     "Rewrites mobile subdomain and strips feature",
			url:      "https://m.youtube.com/watch?v=abc123&feature=share",
			expected: "https://www.youtube.com/watch?v=abc123",
		},
		{
			name:     "Keeps list and v, drops index and t",
			url:      "https://www.youtube.com/watch?v=abc&list=PL123&index=4&t=42",
			expected: "https://www.youtube.com/watch?list=PL123&v=abc",
		},
		{
			name:     "Malformed input returned unchanged",
			url:      "http://%zz",
			expected: "http://%zz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.url); got != tt.expected {
				t.Errorf("NormalizeURL() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNormalizeURLClassifiesSame(t *testing.T) {
	// Cosmetic variants of the same resource must classify identically
	// after normalization.
	variants := []string{
		"https://music.youtube.com/watch?v=abc123&si=xyz",
		"https://m.youtube.com/watch?v=abc123&feature=share",
		"https://www.youtube.com/watch?v=abc123",
	}

	want := Classify(variants[len(variants)-1])
	for _, v := range variants {
		got := Classify(NormalizeURL(v))
		if got != want {
			t.Errorf("Classify(NormalizeURL(%q)) = %+v, want %+v", v, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "Valid watch link", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{name: "Valid short link", url: "https://youtu.be/dQw4w9WgXcQ"},
		{name: "Valid music playlist", url: "https://music.youtube.com/playlist?list=PL123"},
		{name: "Unsupported host", url: "https://vimeo.com/12345", wantErr: true},
		{name: "Spotify link", url: "https://open.spotify.com/track/123", wantErr: true},
		{name: "No resource id", url: "https://www.youtube.com/feed/subscriptions", wantErr: true},
		{name: "Unsupported scheme", url: "ftp://www.youtube.com/watch?v=abc", wantErr: true},
		{name: "Empty string", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate(%q) expected error, got nil", tt.url)
				}
				if !errors.Is(err, core.ErrInvalidURL) {
					t.Errorf("Validate(%q) error = %v, want ErrInvalidURL", tt.url, err)
				}
			} else if err != nil {
				t.Errorf("Validate(%q) unexpected error: %v", tt.url, err)
			}
		})
	}
}

// Package titleparse splits raw video titles into track and artist names.
package titleparse

import (
	"regexp"
	"strings"
)

const (
	// artistTrackSeparator splits "Artist - Track" style titles.
	artistTrackSeparator = " - "
	// trackArtistSeparator splits "Track by Artist" style titles.
	trackArtistSeparator = " by "
	// splitParts is the number of parts a separator split produces.
	splitParts = 2
)

// decorationRegexes strip decorative suffixes from track names, regardless
// of bracket style. Applied case-insensitively to the track name only.
var decorationRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[\(\[]\s*official\s+(music\s+)?video\s*[\)\]]`),
	regexp.MustCompile(`(?i)[\(\[]\s*official\s+audio\s*[\)\]]`),
	regexp.MustCompile(`(?i)[\(\[]\s*official\s+visualizer\s*[\)\]]`),
	regexp.MustCompile(`(?i)[\(\[]\s*lyric\s+video\s*[\)\]]`),
	regexp.MustCompile(`(?i)[\(\[]\s*lyrics\s*[\)\]]`),
	regexp.MustCompile(`(?i)[\(\[]\s*(hd|hq|4k)\s*[\)\]]`),
	regexp.MustCompile(`(?i)\s*-\s*official\b.*$`),
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Parse derives (trackName, artistName) from a raw video title and its
// channel name. It is pure, total, and deterministic.
//
// Titles with multiple " - " occurrences assign everything after the first
// hyphen to the track name, which can mis-split multi-hyphen track titles
// like "Artist - Track - Remix". That is a known heuristic limit of the
// split and is preserved deliberately.
func Parse(title, channelName string) (trackName, artistName string) {
	switch {
	case strings.Contains(title, artistTrackSeparator):
		parts := strings.SplitN(title, artistTrackSeparator, splitParts)
		artistName = strings.TrimSpace(parts[0])
		trackName = strings.TrimSpace(parts[1])
	case strings.Contains(title, trackArtistSeparator):
		parts := strings.SplitN(title, trackArtistSeparator, splitParts)
		trackName = strings.TrimSpace(parts[0])
		artistName = strings.TrimSpace(parts[1])
	default:
		// No separator: the channel stands in for the artist.
		trackName = strings.TrimSpace(title)
		artistName = strings.TrimSpace(channelName)
	}

	trackName = stripDecorations(trackName)
	return trackName, artistName
}

// stripDecorations removes official-video markers, lyric markers, and
// quality tags from a track name and collapses the remaining whitespace.
func stripDecorations(name string) string {
	for _, re := range decorationRegexes {
		name = re.ReplaceAllString(name, "")
	}
	name = whitespaceRegex.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

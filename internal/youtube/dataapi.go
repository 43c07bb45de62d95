package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultDataAPIBaseURL is the YouTube Data API v3 endpoint.
	DefaultDataAPIBaseURL = "https://www.googleapis.com/youtube/v3"
	// maxPageResults is the page size for playlist membership pagination.
	maxPageResults = 50

	// privateVideoTitle and deletedVideoTitle mark unavailable playlist
	// items in Data API responses.
	privateVideoTitle = "Private video"
	deletedVideoTitle = "Deleted video"
)

// DataAPIClient talks to the authoritative Data API v3 using an API key.
type DataAPIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewDataAPIClient creates a Data API client keyed by apiKey.
func NewDataAPIClient(apiKey string, timeout time.Duration) *DataAPIClient {
	return &DataAPIClient{
		apiKey:  apiKey,
		baseURL: DefaultDataAPIBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// -- API response types (internal) ------------------------------------------

type thumbnail struct {
	URL string `json:"url"`
}

type thumbnails struct {
	Default  thumbnail `json:"default"`
	Medium   thumbnail `json:"medium"`
	High     thumbnail `json:"high"`
	Standard thumbnail `json:"standard"`
	MaxRes   thumbnail `json:"maxres"`
}

// bestURL prefers the largest rendition the API returned.
func (t thumbnails) bestURL() string {
	for _, tn := range []thumbnail{t.MaxRes, t.Standard, t.High, t.Medium, t.Default} {
		if tn.URL != "" {
			return tn.URL
		}
	}
	return ""
}

type videoListResponse struct {
	Items []videoResource `json:"items"`
}

type videoResource struct {
	ID      string       `json:"id"`
	Snippet videoSnippet `json:"snippet"`
}

type videoSnippet struct {
	Title        string     `json:"title"`
	ChannelTitle string     `json:"channelTitle"`
	Thumbnails   thumbnails `json:"thumbnails"`
}

type playlistListResponse struct {
	Items []playlistResource `json:"items"`
}

type playlistResource struct {
	Snippet playlistSnippet `json:"snippet"`
}

type playlistSnippet struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type playlistItemsResponse struct {
	Items         []playlistItemResource `json:"items"`
	NextPageToken string                 `json:"nextPageToken"`
}

type playlistItemResource struct {
	Snippet playlistItemSnippet `json:"snippet"`
}

type playlistItemSnippet struct {
	Title                  string     `json:"title"`
	VideoOwnerChannelTitle string     `json:"videoOwnerChannelTitle"`
	Thumbnails             thumbnails `json:"thumbnails"`
	ResourceID             resourceID `json:"resourceId"`
}

type resourceID struct {
	VideoID string `json:"videoId"`
}

// unavailable reports whether the item is a private or deleted placeholder.
// Such items are skipped during enumeration but still consume their
// position slot.
func (s playlistItemSnippet) unavailable() bool {
	return s.Title == privateVideoTitle || s.Title == deletedVideoTitle
}

// -- Lookups -----------------------------------------------------------------

// Video fetches a single video's snippet by id.
func (c *DataAPIClient) Video(ctx context.Context, videoID string) (*videoSnippet, error) {
	endpoint := fmt.Sprintf("%s/videos?part=snippet&id=%s&key=%s",
		c.baseURL, url.QueryEscape(videoID), url.QueryEscape(c.apiKey))

	var resp videoListResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("video lookup failed: %w", err)
	}

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %q not present in catalog", videoID)
	}

	return &resp.Items[0].Snippet, nil
}

// Playlist fetches a playlist's snippet by id.
func (c *DataAPIClient) Playlist(ctx context.Context, playlistID string) (*playlistSnippet, error) {
	endpoint := fmt.Sprintf("%s/playlists?part=snippet&id=%s&key=%s",
		c.baseURL, url.QueryEscape(playlistID), url.QueryEscape(c.apiKey))

	var resp playlistListResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("playlist lookup failed: %w", err)
	}

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("playlist %q not present in catalog", playlistID)
	}

	return &resp.Items[0].Snippet, nil
}

// PlaylistItems enumerates all member items of a playlist, looping while a
// continuation token is returned. maxPages caps the pagination loop so a
// malformed upstream token stream cannot spin forever.
func (c *DataAPIClient) PlaylistItems(ctx context.Context, playlistID string, maxPages int) ([]playlistItemSnippet, error) {
	var items []playlistItemSnippet
	pageToken := ""

	for page := 0; maxPages <= 0 || page < maxPages; page++ {
		endpoint := fmt.Sprintf("%s/playlistItems?part=snippet&playlistId=%s&maxResults=%d&key=%s",
			c.baseURL, url.QueryEscape(playlistID), maxPageResults, url.QueryEscape(c.apiKey))
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var resp playlistItemsResponse
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, fmt.Errorf("playlist items page failed: %w", err)
		}

		for _, item := range resp.Items {
			items = append(items, item.Snippet)
		}

		if resp.NextPageToken == "" {
			return items, nil
		}
		pageToken = resp.NextPageToken
	}

	return items, nil
}

func (c *DataAPIClient) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("data API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode data API response: %w", err)
	}

	return nil
}

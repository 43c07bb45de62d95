package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultOEmbedURL is the public YouTube oEmbed API endpoint. It requires no
// credential and serves single resources only.
const DefaultOEmbedURL = "https://www.youtube.com/oembed"

// OEmbedResponse is the public embed descriptor for a single resource.
type OEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// OEmbedClient fetches public embed descriptors, URL-keyed.
type OEmbedClient struct {
	endpoint string
	client   *http.Client
}

// NewOEmbedClient creates an oEmbed client with the given request timeout.
func NewOEmbedClient(timeout time.Duration) *OEmbedClient {
	return &OEmbedClient{
		endpoint: DefaultOEmbedURL,
		client:   &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the embed descriptor for resourceURL.
func (c *OEmbedClient) Fetch(ctx context.Context, resourceURL string) (*OEmbedResponse, error) {
	reqURL := fmt.Sprintf("%s?url=%s&format=json", c.endpoint, url.QueryEscape(resourceURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oEmbed API returned status %d", resp.StatusCode)
	}

	var oembedResp OEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&oembedResp); err != nil {
		return nil, fmt.Errorf("failed to decode oEmbed response: %w", err)
	}

	return &oembedResp, nil
}

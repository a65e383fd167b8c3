package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/cmpocmkp/kptube-go/internal/pipeline"
)

const dataAPIBaseURL = "https://www.googleapis.com/youtube/v3"

// Client lists recent channel uploads through the YouTube Data API v3:
// channel → uploads playlist → playlist items → video snippets.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    dataAPIBaseURL,
	}
}

type channelListResponse struct {
	Items []struct {
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// ListRecentVideos returns the channel's videos published within the
// lookback window, newest first.
func (c *Client) ListRecentVideos(ctx context.Context, channelID string, lookback time.Duration) ([]pipeline.VideoListing, error) {
	var channels channelListResponse
	err := c.getJSON(ctx, "/channels", url.Values{
		"part": {"contentDetails"},
		"id":   {channelID},
	}, &channels)
	if err != nil {
		return nil, fmt.Errorf("channel lookup: %w", err)
	}
	if len(channels.Items) == 0 {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}
	uploadsPlaylist := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads

	cutoff := time.Now().Add(-lookback)

	var listings []pipeline.VideoListing
	pageToken := ""
	for {
		params := url.Values{
			"part":       {"snippet,contentDetails"},
			"playlistId": {uploadsPlaylist},
			"maxResults": {"50"},
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page playlistItemsResponse
		if err := c.getJSON(ctx, "/playlistItems", params, &page); err != nil {
			return nil, fmt.Errorf("playlist items: %w", err)
		}

		ids := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			if item.ContentDetails.VideoID != "" {
				ids = append(ids, item.ContentDetails.VideoID)
			}
		}

		if len(ids) > 0 {
			batch, err := c.videoSnippets(ctx, ids)
			if err != nil {
				return nil, err
			}
			listings = append(listings, FilterWindow(batch, cutoff)...)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	sort.Slice(listings, func(i, j int) bool {
		return listings[i].PublishedAt.After(listings[j].PublishedAt)
	})
	return listings, nil
}

// videoSnippets resolves full snippets for a batch of video IDs.
func (c *Client) videoSnippets(ctx context.Context, ids []string) ([]pipeline.VideoListing, error) {
	joined := ids[0]
	for _, id := range ids[1:] {
		joined += "," + id
	}

	var videos videoListResponse
	err := c.getJSON(ctx, "/videos", url.Values{
		"part": {"snippet"},
		"id":   {joined},
	}, &videos)
	if err != nil {
		return nil, fmt.Errorf("video snippets: %w", err)
	}

	listings := make([]pipeline.VideoListing, 0, len(videos.Items))
	for _, v := range videos.Items {
		listings = append(listings, pipeline.VideoListing{
			ID:          v.ID,
			Title:       v.Snippet.Title,
			Description: v.Snippet.Description,
			PublishedAt: v.Snippet.PublishedAt,
		})
	}
	return listings, nil
}

// FilterWindow keeps only listings published at or after the cutoff.
// Window filtering is the lister's contract toward the pipeline.
func FilterWindow(listings []pipeline.VideoListing, cutoff time.Time) []pipeline.VideoListing {
	var kept []pipeline.VideoListing
	for _, l := range listings {
		if !l.PublishedAt.Before(cutoff) {
			kept = append(kept, l)
		}
	}
	return kept
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube api: %s %s: status %d", req.Method, path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

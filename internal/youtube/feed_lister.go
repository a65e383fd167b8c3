package youtube

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/cmpocmkp/kptube-go/internal/pipeline"
)

const channelFeedURL = "https://www.youtube.com/feeds/videos.xml?channel_id="

// FeedLister lists recent uploads from a channel's public Atom feed. It
// needs no API key, which makes it the fallback lister when none is
// configured, but the feed only carries the latest ~15 uploads.
type FeedLister struct {
	parser *gofeed.Parser
}

func NewFeedLister() *FeedLister {
	return &FeedLister{parser: gofeed.NewParser()}
}

// ListRecentVideos parses the channel feed and returns entries published
// within the lookback window, newest first.
func (f *FeedLister) ListRecentVideos(ctx context.Context, channelID string, lookback time.Duration) ([]pipeline.VideoListing, error) {
	feed, err := f.parser.ParseURLWithContext(channelFeedURL+channelID, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse channel feed: %w", err)
	}

	cutoff := time.Now().Add(-lookback)

	var listings []pipeline.VideoListing
	for _, item := range feed.Items {
		if item.PublishedParsed == nil || item.PublishedParsed.Before(cutoff) {
			continue
		}
		id := feedItemVideoID(item)
		if id == "" {
			continue
		}
		listings = append(listings, pipeline.VideoListing{
			ID:          id,
			Title:       item.Title,
			Description: item.Description,
			PublishedAt: *item.PublishedParsed,
		})
	}

	sort.Slice(listings, func(i, j int) bool {
		return listings[i].PublishedAt.After(listings[j].PublishedAt)
	})
	return listings, nil
}

// feedItemVideoID extracts the video ID from the yt:videoId extension,
// falling back to the watch link's v parameter.
func feedItemVideoID(item *gofeed.Item) string {
	if yt, ok := item.Extensions["yt"]; ok {
		if ids, ok := yt["videoId"]; ok && len(ids) > 0 && ids[0].Value != "" {
			return ids[0].Value
		}
	}

	if item.Link != "" {
		if u, err := url.Parse(item.Link); err == nil {
			if v := u.Query().Get("v"); v != "" {
				return v
			}
		}
	}

	// Some feeds use the "yt:video:<id>" GUID form.
	if idx := strings.LastIndex(item.GUID, ":"); idx >= 0 && idx < len(item.GUID)-1 {
		return item.GUID[idx+1:]
	}
	return ""
}

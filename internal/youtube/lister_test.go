package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmpocmkp/kptube-go/internal/pipeline"
)

func TestFilterWindow(t *testing.T) {
	now := time.Now()
	cutoff := now.Add(-24 * time.Hour)
	listings := []pipeline.VideoListing{
		{ID: "fresh", PublishedAt: now.Add(-time.Hour)},
		{ID: "boundary", PublishedAt: cutoff},
		{ID: "stale", PublishedAt: now.Add(-48 * time.Hour)},
	}

	kept := FilterWindow(listings, cutoff)
	if len(kept) != 2 {
		t.Fatalf("kept %d listings, want 2", len(kept))
	}
	for _, l := range kept {
		if l.ID == "stale" {
			t.Error("listing outside the window was kept")
		}
	}
}

func TestFilterWindow_Empty(t *testing.T) {
	if kept := FilterWindow(nil, time.Now()); kept != nil {
		t.Errorf("FilterWindow(nil) = %v, want nil", kept)
	}
}

func TestListRecentVideos(t *testing.T) {
	recent := time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)
	old := time.Now().Add(-72 * time.Hour).UTC().Format(time.RFC3339)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch r.URL.Path {
		case "/channels":
			fmt.Fprint(w, `{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UU123"}}}]}`)
		case "/playlistItems":
			if r.URL.Query().Get("playlistId") != "UU123" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `{"items":[
				{"contentDetails":{"videoId":"new-vid"}},
				{"contentDetails":{"videoId":"old-vid"}}
			]}`)
		case "/videos":
			fmt.Fprintf(w, `{"items":[
				{"id":"old-vid","snippet":{"title":"Old","publishedAt":%q}},
				{"id":"new-vid","snippet":{"title":"New","description":"desc","publishedAt":%q}}
			]}`, old, recent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.baseURL = srv.URL

	listings, err := c.ListRecentVideos(context.Background(), "UC123", 24*time.Hour)
	if err != nil {
		t.Fatalf("ListRecentVideos error: %v", err)
	}

	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1 (window filtered)", len(listings))
	}
	if listings[0].ID != "new-vid" {
		t.Errorf("listing ID = %q, want new-vid", listings[0].ID)
	}
	if listings[0].Title != "New" || listings[0].Description != "desc" {
		t.Errorf("snippet not mapped: %+v", listings[0])
	}
}

func TestListRecentVideos_Paginated(t *testing.T) {
	recent := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels":
			fmt.Fprint(w, `{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UU123"}}}]}`)
		case "/playlistItems":
			if r.URL.Query().Get("pageToken") == "" {
				fmt.Fprint(w, `{"nextPageToken":"p2","items":[{"contentDetails":{"videoId":"a"}}]}`)
			} else {
				fmt.Fprint(w, `{"items":[{"contentDetails":{"videoId":"b"}}]}`)
			}
		case "/videos":
			id := r.URL.Query().Get("id")
			fmt.Fprintf(w, `{"items":[{"id":%q,"snippet":{"title":"t","publishedAt":%q}}]}`, id, recent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient("k")
	c.baseURL = srv.URL

	listings, err := c.ListRecentVideos(context.Background(), "UC123", 24*time.Hour)
	if err != nil {
		t.Fatalf("ListRecentVideos error: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2 across pages", len(listings))
	}
}

func TestListRecentVideos_ChannelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	c := NewClient("k")
	c.baseURL = srv.URL

	if _, err := c.ListRecentVideos(context.Background(), "UC-missing", 24*time.Hour); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestListRecentVideos_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("bad-key")
	c.baseURL = srv.URL

	if _, err := c.ListRecentVideos(context.Background(), "UC123", 24*time.Hour); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

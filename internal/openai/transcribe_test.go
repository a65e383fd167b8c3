package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestTranscribe(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(audioPath, []byte("fake-mp3-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.FormValue("model") != "whisper-1" {
			t.Errorf("model = %q, want whisper-1", r.FormValue("model"))
		}
		if r.FormValue("language") != "en" {
			t.Errorf("language = %q, want en", r.FormValue("language"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file part missing: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file.Close()
		if header.Filename != "clip.mp3" {
			t.Errorf("filename = %q, want clip.mp3", header.Filename)
		}
		fmt.Fprint(w, `{"text":"hello from whisper"}`)
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)

	got, err := c.Transcribe(context.Background(), audioPath)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "hello from whisper" {
		t.Errorf("transcript = %q", got)
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	c := NewClient("k", "http://localhost:0")
	if _, err := c.Transcribe(context.Background(), "/nonexistent/audio.mp3"); err == nil {
		t.Fatal("expected error for missing audio file")
	}
}

func TestIsRetryableStatus(t *testing.T) {
	retryable := []int{429, 500, 502, 503, 504}
	for _, s := range retryable {
		if !isRetryableStatus(s) {
			t.Errorf("status %d should be retryable", s)
		}
	}
	final := []int{200, 400, 401, 403, 404, 422}
	for _, s := range final {
		if isRetryableStatus(s) {
			t.Errorf("status %d should not be retryable", s)
		}
	}
}

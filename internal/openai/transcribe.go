package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
)

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads an MP3 file to the Whisper transcription endpoint
// and returns the full transcript text.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}
	_ = w.WriteField("model", c.whisperModel)
	_ = w.WriteField("language", "en")
	_ = w.WriteField("response_format", "json")
	if err := w.Close(); err != nil {
		return "", err
	}

	log.Printf("openai: transcribing %s", filepath.Base(audioPath))

	var resp transcriptionResponse
	if err := c.post(ctx, "/audio/transcriptions", w.FormDataContentType(), buf.Bytes(), &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

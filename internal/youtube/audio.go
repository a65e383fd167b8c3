package youtube

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const watchURL = "https://www.youtube.com/watch?v="

// AudioProcessor downloads a video's audio track with yt-dlp and
// normalizes it to 128kbps MP3 with ffmpeg. All files live in a scratch
// directory owned by this process; callers release every path they get.
type AudioProcessor struct {
	tempDir    string
	ytDlpPath  string
	ffmpegPath string
}

func NewAudioProcessor(tempDir, ytDlpPath, ffmpegPath string) *AudioProcessor {
	return &AudioProcessor{
		tempDir:    tempDir,
		ytDlpPath:  ytDlpPath,
		ffmpegPath: ffmpegPath,
	}
}

// AcquireAudio downloads the video's audio and returns the local path.
func (a *AudioProcessor) AcquireAudio(ctx context.Context, youtubeVideoID string) (string, error) {
	if err := os.MkdirAll(a.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	// yt-dlp substitutes the real extension for %(ext)s.
	outputTemplate := filepath.Join(a.tempDir, youtubeVideoID+".%(ext)s")

	cmd := exec.CommandContext(ctx, a.ytDlpPath,
		"--extract-audio",
		"--audio-format", "mp3",
		"--no-playlist",
		"--output", outputTemplate,
		watchURL+youtubeVideoID,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("yt-dlp: %w: %s", err, tail(out))
	}

	path := filepath.Join(a.tempDir, youtubeVideoID+".mp3")
	if _, err := os.Stat(path); err != nil {
		// Extension can differ when post-processing was skipped.
		found, ferr := a.findDownload(youtubeVideoID)
		if ferr != nil {
			return "", fmt.Errorf("downloaded audio for %s not found: %w", youtubeVideoID, ferr)
		}
		path = found
	}

	log.Printf("audio: downloaded %s", path)
	return path, nil
}

func (a *AudioProcessor) findDownload(youtubeVideoID string) (string, error) {
	entries, err := os.ReadDir(a.tempDir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), youtubeVideoID+".") {
			return filepath.Join(a.tempDir, e.Name()), nil
		}
	}
	return "", fs.ErrNotExist
}

// EncodeToMP3 re-encodes inputPath to 128kbps MP3 at outputPath. When the
// input is already MP3 it is renamed into place instead.
func (a *AudioProcessor) EncodeToMP3(ctx context.Context, inputPath, outputPath string) error {
	if strings.EqualFold(filepath.Ext(inputPath), ".mp3") {
		if inputPath == outputPath {
			return nil
		}
		return os.Rename(inputPath, outputPath)
	}

	cmd := exec.CommandContext(ctx, a.ffmpegPath,
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-b:a", "128k",
		outputPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(out))
	}
	return nil
}

// TempFilePath returns a fresh path in the scratch directory.
func (a *AudioProcessor) TempFilePath(ext string) string {
	name := fmt.Sprintf("%d-%s.%s", time.Now().UnixNano(), randomSuffix(), ext)
	return filepath.Join(a.tempDir, name)
}

// ReleaseFile removes a scratch file. Already-deleted files are not an error.
func (a *AudioProcessor) ReleaseFile(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func randomSuffix() string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = chars[rand.IntN(len(chars))]
	}
	return string(b)
}

// tail trims tool output to its last line for error messages.
func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}

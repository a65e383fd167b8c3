package middleware

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database schema constraints.
const (
	MaxVideoIDLen   = 16 // videos.youtube_video_id VARCHAR(16)
	MaxChannelIDLen = 32 // channels.channel_id VARCHAR(32)
	MaxPageLimit    = 100
)

var (
	// videoIDRe matches YouTube video IDs: alphanumeric, dash, underscore.
	videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// channelIDRe matches YouTube channel IDs: alphanumeric, dash, underscore.
	channelIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateVideoID checks that a YouTube video ID is well-formed and
// within DB limits.
func ValidateVideoID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "videoId is required"
	}
	if len(id) > MaxVideoIDLen {
		return "", "videoId must be at most 16 characters"
	}
	if !videoIDRe.MatchString(id) {
		return "", "videoId contains invalid characters"
	}
	return id, ""
}

// ValidateChannelID checks that a channel ID is well-formed.
func ValidateChannelID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "channelId is required"
	}
	if len(id) > MaxChannelIDLen {
		return "", "channelId must be at most 32 characters"
	}
	if !channelIDRe.MatchString(id) {
		return "", "channelId contains invalid characters"
	}
	return id, ""
}

// ValidateNumericID parses an internal numeric record ID.
func ValidateNumericID(raw string) (int64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "id is required"
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, "id must be a positive integer"
	}
	return id, ""
}

// ParsePagination parses page/limit query parameters with defaults and
// an upper bound on limit.
func ParsePagination(pageRaw, limitRaw string) (page, limit int, errMsg string) {
	page, limit = 1, 10

	if pageRaw != "" {
		p, err := strconv.Atoi(pageRaw)
		if err != nil || p < 1 {
			return 0, 0, "page must be a positive integer"
		}
		page = p
	}
	if limitRaw != "" {
		l, err := strconv.Atoi(limitRaw)
		if err != nil || l < 1 {
			return 0, 0, "limit must be a positive integer"
		}
		if l > MaxPageLimit {
			l = MaxPageLimit
		}
		limit = l
	}
	return page, limit, ""
}

// ParseDate parses a YYYY-MM-DD query parameter. Empty input returns a
// nil time with no error message.
func ParseDate(raw string) (*time.Time, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ""
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, "date must be in YYYY-MM-DD format"
	}
	return &t, ""
}

// Package validate holds the pure input checks and the content sanitizer
// used by the API handlers. Validators return nil on success or a
// descriptive error safe to show to the caller.
package validate

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// MaxContentLen bounds note text (content and organized content alike).
	MaxContentLen = 50000
	MaxTitleLen   = 200
	MaxTags       = 10
	MaxTagLen     = 50
)

var allowedAudioTypes = map[string]bool{
	"audio/webm":  true,
	"audio/ogg":   true,
	"audio/mp4":   true,
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/x-wav": true,
}

var noteIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// strict strips every tag, script content included.
var strict = bluemonday.StrictPolicy()

// Audio checks an uploaded audio payload's size and MIME type. Codec
// suffixes ("audio/webm;codecs=opus") are stripped before comparison.
func Audio(contentType string, size, maxBytes int64) error {
	if size == 0 {
		return fmt.Errorf("audio data is empty")
	}
	if size > maxBytes {
		return fmt.Errorf("audio data too large, maximum allowed: %dMB", maxBytes/(1024*1024))
	}
	base, _, _ := strings.Cut(contentType, ";")
	base = strings.TrimSpace(strings.ToLower(base))
	if !allowedAudioTypes[base] {
		return fmt.Errorf("unsupported audio type %q", contentType)
	}
	return nil
}

// NoteContent checks free text for notes: non-blank and at most
// MaxContentLen characters.
func NoteContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("content cannot be empty")
	}
	if len([]rune(trimmed)) > MaxContentLen {
		return fmt.Errorf("content too long, maximum %d characters allowed", MaxContentLen)
	}
	return nil
}

// Title checks a note title: non-blank and at most MaxTitleLen characters.
func Title(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Errorf("title is required")
	}
	if len([]rune(trimmed)) > MaxTitleLen {
		return fmt.Errorf("title too long, maximum %d characters allowed", MaxTitleLen)
	}
	return nil
}

// Tags checks a tag list: at most MaxTags entries, each non-blank and at
// most MaxTagLen characters.
func Tags(tags []string) error {
	if len(tags) > MaxTags {
		return fmt.Errorf("too many tags, maximum %d allowed", MaxTags)
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags must be non-empty strings")
		}
		if len([]rune(tag)) > MaxTagLen {
			return fmt.Errorf("tag too long, maximum %d characters per tag", MaxTagLen)
		}
	}
	return nil
}

// NoteID accepts the ID alphabet used at creation: [a-zA-Z0-9-_]+.
func NoteID(id string) error {
	if id == "" || !noteIDPattern.MatchString(id) {
		return fmt.Errorf("invalid note id format")
	}
	return nil
}

// Sanitize strips all HTML markup (script bodies included) from free text
// and trims surrounding whitespace. Entities introduced by the policy are
// unescaped so plain text round-trips unchanged.
func Sanitize(content string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(content)))
}

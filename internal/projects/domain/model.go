// Package domain holds the portfolio project model shared across the
// upload service, the HTTP layer and the offline index builder.
package domain

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Known category ids used by the site. Unknown values pass through as-is;
// CategoryOther is the default for uploads that omit one.
const (
	CategoryWeb         = "web"
	CategoryCert        = "cert"
	CategoryTraditional = "traditional"
	Category3D          = "3d"
	CategoryDigital     = "digital"
	CategoryOther       = "other"
)

// FallbackSlug is used when a title sanitizes down to nothing.
const FallbackSlug = "untitled"

// Project is one portfolio entry: its metadata file on the content store
// and its row in the aggregated index share this shape.
//
// Invariant: ThumbnailIndex is clamped to [0, len(Images)-1] and Image
// always equals Images[ThumbnailIndex].
type Project struct {
	ID             ID        `json:"id,omitempty"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	Link           string    `json:"link"`
	Tags           []string  `json:"tags"`
	Images         []string  `json:"images"`
	Image          string    `json:"image,omitempty"`
	ThumbnailIndex int       `json:"thumbnailIndex"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

// ID is an opaque, time-based project identifier. Entries written by
// earlier versions of the uploader carry bare JSON numbers (millisecond
// timestamps, sometimes with a random fraction), so the type accepts both
// number and string tokens and writes numeric-looking tokens back out as
// numbers to keep the index stable under round-trips.
type ID string

func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseFloat(string(id), 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	// A bare number: keep the literal token.
	*id = ID(data)
	return nil
}

// NewID returns a fresh millisecond-timestamp id with a random fraction,
// tolerating collisions between uploads landing in the same millisecond.
func NewID() ID {
	frac, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return ID(strconv.FormatInt(time.Now().UnixMilli(), 10))
	}
	return ID(fmt.Sprintf("%d.%03d", time.Now().UnixMilli(), frac.Int64()))
}

// Slugify derives a filesystem-safe slug from a title: lower-cased, runs of
// anything outside [a-z0-9] collapsed to single hyphens, trimmed. An empty
// result falls back to FallbackSlug.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return FallbackSlug
	}
	return slug
}

// ClampThumbnail resolves a requested thumbnail index against n images.
// Out-of-range requests in either direction resolve to the last valid
// image.
func ClampThumbnail(requested, n int) int {
	if n <= 0 {
		return 0
	}
	if requested < 0 || requested >= n {
		return n - 1
	}
	return requested
}

// NormalizeCategory maps legacy category directory names onto current ones.
func NormalizeCategory(category string) string {
	if category == "painting" || category == "portrait" {
		return CategoryTraditional
	}
	return category
}

// TitleFromSlug reverses slugification for legacy, metadata-less projects:
// hyphens become spaces and each word is title-cased.
func TitleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ParseTags splits a comma-separated tag field, trimming whitespace and
// dropping empties.
func ParseTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	nonSlugChars = regexp.MustCompile("[^a-z0-9-]")
	dashRuns     = regexp.MustCompile("-+")
)

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// Slugify converts a string to a URL-friendly slug
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NewTerminalID derives a readable, unique id for a paired terminal,
// e.g. "front-counter-1a2b3c4d".
func NewTerminalID(name string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	if slug := Slugify(name); slug != "" {
		return slug + "-" + suffix
	}
	return "terminal-" + suffix
}

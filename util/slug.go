package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug turns a project name into a URL-safe public identifier.
// The random suffix keeps slugs unique across projects with the same name.
func GenerateSlug(name string) string {
	base := strings.ToLower(name)
	base = nonSlugChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	suffix := uuid.NewString()[:6]
	if base == "" {
		return suffix
	}
	return fmt.Sprintf("%s-%s", base, suffix)
}

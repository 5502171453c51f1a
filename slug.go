package razorblog

import (
	"regexp"
	"strings"
)

var (
	slugTransliterate = strings.NewReplacer(
		"å", "a", "ä", "a", "á", "a", "à", "a",
		"ö", "o", "ó", "o", "ò", "o",
		"é", "e", "è", "e",
		"í", "i", "ì", "i",
	)
	reSlugInvalid = regexp.MustCompile(`[^a-z0-9-/ ]`)
	reWhitespace  = regexp.MustCompile(`\s+`)
	reDashRun     = regexp.MustCompile(`-+`)
)

// GenerateSlug normalizes an arbitrary title into a URL-safe slug. The
// result matches ^[a-z0-9]+(-[a-z0-9]+)*$ or is empty for degenerate input;
// it never fails. The function is idempotent.
func GenerateSlug(str string) string {
	slug := strings.ToLower(strings.TrimSpace(str))

	// Convert culture specific characters
	slug = slugTransliterate.Replace(slug)

	// Remove special characters
	slug = reSlugInvalid.ReplaceAllString(slug, "")
	slug = strings.ReplaceAll(slug, "--", "-")

	// Collapse whitespace into single dashes
	slug = strings.ReplaceAll(slug, "-", " ")
	slug = reWhitespace.ReplaceAllString(slug, " ")
	slug = strings.ReplaceAll(slug, " ", "-")

	// Flatten slashes
	slug = strings.ReplaceAll(slug, "/", "-")

	// Collapse dash runs
	slug = reDashRun.ReplaceAllString(slug, "-")

	// Strip the outermost leading and trailing dash. This intentionally cuts
	// at the dash rather than trimming the whole run; the collapse above
	// guarantees single dashes at this point.
	if strings.HasSuffix(slug, "-") {
		slug = slug[:strings.LastIndex(slug, "-")]
	}
	if strings.HasPrefix(slug, "-") {
		slug = slug[strings.Index(slug, "-")+1:]
	}
	return slug
}

package library

import (
	"regexp"
	"strings"
)

var multipleSpaceRe = regexp.MustCompile(`\s+`)

// CleanName normalizes an artist, album, genre or tag name before it is
// stored or looked up: surrounding whitespace is removed and inner runs of
// whitespace collapse to a single space. Case is preserved; comparisons are
// case-insensitive in the database.
func CleanName(s string) string {
	s = multipleSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

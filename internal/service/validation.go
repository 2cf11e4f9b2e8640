package service

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// checkLength adds required/tooLong when s (already trimmed) is empty or
// longer than max runes.
func (v *violations) checkLength(s string, max int, required, tooLong string) {
	n := utf8.RuneCountInString(s)
	switch {
	case n == 0:
		v.add(required)
	case n > max:
		v.add(tooLong)
	}
}

// isHTTPURL reports whether s is an absolute http or https URL with a host.
func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// TitleKey normalizes a title for case-insensitive duplicate detection.
func TitleKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

package services

import (
	"net/url"
	"strings"
)

// IsPlaylistURL reports whether a URL designates a playlist rather than a
// single item: either an explicit playlist page or a `list` query parameter
// riding on a watch URL. Pure, no network access.
func IsPlaylistURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if strings.Contains(u.Path, "/playlist") {
		return true
	}
	return u.Query().Has("list")
}

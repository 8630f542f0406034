package utils

import (
	"net/url"
	"strings"
)

func IsValidURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	// Must have scheme and host
	if u.Scheme == "" || u.Host == "" {
		return false
	}

	// Only allow HTTP and HTTPS
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	// Filter out assets that are not auditable pages
	excludePatterns := []string{
		".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
		".pdf", ".zip", ".exe", ".dmg", "mailto:", "tel:",
	}

	lowerPath := strings.ToLower(u.Path)
	for _, pattern := range excludePatterns {
		if strings.HasSuffix(lowerPath, pattern) {
			return false
		}
	}

	return true
}

func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	// Remove fragment
	u.Fragment = ""

	// Normalize path
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// SameHost reports whether two absolute URLs point at the same host.
func SameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Host, ub.Host)
}

package app

import (
	"net/url"
	"strings"
)

// originChecker builds the shared origin predicate used by both the CORS
// middleware and the WebSocket upgrader. Development allows everything.
// Matching falls back to host comparison when the full origin differs, so
// a pattern with a scheme admits the same host over any scheme.
func originChecker(patterns []string, dev bool) func(string) bool {
	if dev || len(patterns) == 0 {
		return func(string) bool { return true }
	}
	return func(origin string) bool {
		host := extractOriginHost(origin)
		for _, pattern := range patterns {
			if pattern == origin || matchOriginPattern(extractOriginHost(pattern), host) {
				return true
			}
		}
		return false
	}
}

// extractOriginHost returns the "host[:port]" portion of an origin URL.
func extractOriginHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchOriginPattern reports whether host matches the given wildcard pattern.
func matchOriginPattern(pattern, host string) bool {
	if pattern == host {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		suffix := pattern[1:]
		return strings.HasSuffix(host, suffix)
	}
	if strings.HasSuffix(pattern, ":*") {
		prefix := pattern[:len(pattern)-1]
		return strings.HasPrefix(host, prefix)
	}
	return false
}

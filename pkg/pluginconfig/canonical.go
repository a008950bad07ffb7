package pluginconfig

import "strings"

// CanonicalizeURL normalizes a source URL/path for storage-identity
// comparisons: a trailing ".git" and trailing slash are stripped and the
// scheme is lowercased, so "https://github.com/a/b" and
// "https://github.com/a/b.git/" share one cache entry.
func CanonicalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	if idx := strings.Index(s, "://"); idx >= 0 {
		s = strings.ToLower(s[:idx]) + s[idx:]
	}

	return s
}

// HostAndPath splits a canonicalized URL into the host and path-segment
// components used to build the on-disk cache layout (`repos/<host>/
// <path-segments>/`). For an absolute Local path, host is empty and path is
// the canonical path without its leading slash.
func HostAndPath(canonical string) (host string, path string) {
	rest := canonical

	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}

	// Strip a userinfo component if present (user@host/path).
	if idx := strings.Index(rest, "@"); idx >= 0 && idx < strings.IndexAny(rest, "/") {
		rest = rest[idx+1:]
	}

	slash := strings.Index(rest, "/")
	if slash < 0 {
		return rest, ""
	}

	host = rest[:slash]
	path = strings.TrimPrefix(rest[slash:], "/")

	// git@host:owner/repo scp-like syntax: host contains ':', split it.
	if idx := strings.Index(host, ":"); idx >= 0 {
		rest2 := host[idx+1:] + "/" + path
		host = host[:idx]
		path = rest2
	}

	return host, path
}

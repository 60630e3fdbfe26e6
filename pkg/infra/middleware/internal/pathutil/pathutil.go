// Package pathutil provides path matching helpers shared by middleware
// implementations.
package pathutil

import "strings"

// NewPathMatcher returns a matcher that reports whether a request path
// is listed in skipPaths or starts with one of skipPathPrefixes. The
// exact paths are indexed in a map so the per-request cost stays
// constant regardless of list size.
func NewPathMatcher(skipPaths, skipPathPrefixes []string) func(path string) bool {
	if len(skipPaths) == 0 && len(skipPathPrefixes) == 0 {
		return func(string) bool { return false }
	}

	exact := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		exact[p] = struct{}{}
	}

	prefixes := make([]string, 0, len(skipPathPrefixes))
	for _, p := range skipPathPrefixes {
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}

	return func(path string) bool {
		if _, ok := exact[path]; ok {
			return true
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}
}

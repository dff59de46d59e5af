package client

import "strings"

// Default fallbacks tried after the configured endpoint: same-origin (when
// provided), loopback, and the Android emulator host alias.
var fallbackEndpoints = []string{
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"http://10.0.2.2:8080",
}

// Candidates builds the prioritized endpoint list for discovery: the explicit
// address first, then its scheme twin, then the origin and the fixed
// fallbacks. Duplicates are dropped, order preserved.
func Candidates(explicit, origin string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(u string) {
		u = strings.TrimSuffix(u, "/")
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}

	add(explicit)
	add(schemeTwin(explicit))
	add(origin)
	for _, u := range fallbackEndpoints {
		add(u)
	}
	return out
}

// schemeTwin returns the https variant of an http endpoint and vice versa.
func schemeTwin(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "http://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		return "https://" + strings.TrimPrefix(endpoint, "http://")
	default:
		return ""
	}
}

package cache

import (
	"fmt"
	"strings"
)

// Key identifies one cached page of one listing endpoint.
type Key struct {
	// Endpoint is the listing base URL (e.g. "https://api.jikan.moe/v4/anime")
	Endpoint string

	// Page is the page number
	Page int
}

// String generates a deterministic cache key string.
// Format: harvest:endpoint:page=N
//
// Example:
//
//	harvest:api.jikan.moe/v4/anime:page=3
func (k Key) String() string {
	endpoint := k.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.Trim(endpoint, "/")

	parts := []string{"harvest"}
	if endpoint != "" {
		parts = append(parts, endpoint)
	}
	parts = append(parts, fmt.Sprintf("page=%d", k.Page))

	return strings.Join(parts, ":")
}

package cache

import "time"

// Entry represents one cached page body.
type Entry struct {
	// Body is the raw response body of the page
	Body []byte `json:"body"`

	// Page is the page number the body belongs to
	Page int `json:"page"`

	// FetchedAt is when the body was fetched from the API
	FetchedAt time.Time `json:"fetched_at"`

	// Expires is when the entry becomes stale
	Expires time.Time `json:"expires"`
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

package cache

import "time"

// Entry is one cached page response.
type Entry struct {
	// Body is the raw response body.
	Body []byte `json:"body"`

	// StoredAt is when the entry was created.
	StoredAt time.Time `json:"stored_at"`

	// ExpiresAt is when the entry stops being served.
	ExpiresAt time.Time `json:"expires_at"`
}

// NewEntry creates an entry expiring ttl from now.
func NewEntry(body []byte, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Body:      body,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// TTL returns the remaining lifetime of the entry.
func (e *Entry) TTL() time.Duration {
	return time.Until(e.ExpiresAt)
}

// IsExpired reports whether the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

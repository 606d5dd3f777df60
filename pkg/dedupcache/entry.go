package dedupcache

import "time"

// Entry marks one window as currently being fetched. OwnerID is a
// caller-supplied identifier (e.g. a goroutine or process name) so a
// conflicting claim can be logged with who already holds it.
type Entry struct {
	OwnerID   string    `json:"owner_id"`
	ClaimedAt time.Time `json:"claimed_at"`
	Expires   time.Time `json:"expires"`
}

// IsExpired reports whether the claim has outlived its TTL.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

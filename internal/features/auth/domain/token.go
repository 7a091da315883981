package domain

import "time"

// Token is a bearer credential together with its absolute expiry.
type Token struct {
	// Value is the raw bearer string sent in Authorization headers.
	Value string
	// ExpiresAt is the absolute instant the credential stops being valid.
	ExpiresAt time.Time
}

// RemainingAt returns how much validity the token has left at the given
// instant. Negative when already expired.
func (t Token) RemainingAt(now time.Time) time.Duration {
	return t.ExpiresAt.Sub(now)
}

package model

import "time"

// AuthTicket is an access ticket issued by the authentication service for
// one remote service. Tickets are never mutated once issued.
type AuthTicket struct {
	Token            string    `json:"token"`
	Sign             string    `json:"sign"`
	RepresentedTaxID int64     `json:"represented_tax_id"`
	Expiry           time.Time `json:"expiry"`
}

// Expired reports whether the ticket is no longer usable at now
func (t *AuthTicket) Expired(now time.Time) bool {
	return t == nil || !now.Before(t.Expiry)
}

package model

import "time"

// PickupToken is the single-use credential minted when a claim is approved.
type PickupToken struct {
	ID         string     `json:"id"`
	ClaimID    string     `json:"claim_id"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	RedeemedBy string     `json:"redeemed_by,omitempty"`
}

// TokenState is the outcome of validating a pickup token.
type TokenState string

// Token states.
const (
	TokenValid    TokenState = "valid"
	TokenExpired  TokenState = "expired"
	TokenNotFound TokenState = "not_found"
	TokenRedeemed TokenState = "redeemed"
)

// TokenValidation is what the pickup desk sees for a presented token.
type TokenValidation struct {
	State     TokenState `json:"state"`
	ClaimID   string     `json:"claim_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// StateAt evaluates the token lazily at now. A token is expired from
// ExpiresAt onwards.
func (t *PickupToken) StateAt(now time.Time) TokenState {
	if t.RedeemedAt != nil {
		return TokenRedeemed
	}
	if !now.Before(t.ExpiresAt) {
		return TokenExpired
	}
	return TokenValid
}

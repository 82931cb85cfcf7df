package model

import "time"

// MatchClaimStatus tracks the claim currently attached to a match.
// The zero value means no claim is open.
type MatchClaimStatus string

// Match claim statuses.
const (
	MatchClaimNone        MatchClaimStatus = ""
	MatchClaimUnderReview MatchClaimStatus = "under_review"
	MatchClaimApproved    MatchClaimStatus = "approved"
)

// Match is a scored pairing of one lost and one found item.
type Match struct {
	ID          string           `json:"id"`
	LostID      string           `json:"lost_id"`
	FoundID     string           `json:"found_id"`
	Score       int              `json:"score"`
	ClaimStatus MatchClaimStatus `json:"claim_status,omitempty"`
	ClaimToken  string           `json:"claim_token,omitempty"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
}

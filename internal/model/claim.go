package model

import "time"

// ClaimStatus is the review state of a claim.
type ClaimStatus string

// Claim statuses.
const (
	ClaimStatusUnderReview   ClaimStatus = "under_review"
	ClaimStatusInfoRequested ClaimStatus = "info_requested"
	ClaimStatusApproved      ClaimStatus = "approved"
	ClaimStatusRejected      ClaimStatus = "rejected"
)

// Valid reports whether s is a known claim status.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusUnderReview, ClaimStatusInfoRequested, ClaimStatusApproved, ClaimStatusRejected:
		return true
	}
	return false
}

// Pending reports whether the claim still awaits an admin decision.
func (s ClaimStatus) Pending() bool {
	return s == ClaimStatusUnderReview || s == ClaimStatusInfoRequested
}

// Decision is an admin's verdict on a claim.
type Decision string

// Decisions.
const (
	DecisionApprove     Decision = "approve"
	DecisionReject      Decision = "reject"
	DecisionRequestInfo Decision = "request_info"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject || d == DecisionRequestInfo
}

// Claim is a claimant's assertion of ownership, pending admin verification.
type Claim struct {
	ID              string      `json:"id"`
	MatchID         string      `json:"match_id,omitempty"`
	LostID          string      `json:"lost_id"`
	FoundID         string      `json:"found_id,omitempty"`
	ClaimantID      string      `json:"claimant_id"`
	ClaimantName    string      `json:"claimant_name"`
	SecurityAnswers []string    `json:"security_answers"`
	ProofImage      string      `json:"proof_image,omitempty"`
	ClaimantNote    string      `json:"claimant_note,omitempty"`
	ConfidenceScore int         `json:"confidence_score"`
	Status          ClaimStatus `json:"status"`
	AdminComment    string      `json:"admin_comment,omitempty"`
	RejectReason    string      `json:"reject_reason,omitempty"`
	DecidedBy       string      `json:"decided_by,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	ApprovedAt      *time.Time  `json:"approved_at,omitempty"`
	RejectedAt      *time.Time  `json:"rejected_at,omitempty"`
}

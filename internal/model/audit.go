package model

import "time"

// AuditEntry is one append-only record of an action on the aggregate.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	SubjectID string    `json:"subject_id"`
	Detail    string    `json:"detail,omitempty"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

// ActorSystem records actions taken by the service itself.
const ActorSystem = "system"

// Audit actions.
const (
	ActionItemCreated    = "item_created"
	ActionItemExpired    = "item_expired"
	ActionItemArchived   = "item_archived"
	ActionMatchCreated   = "match_created"
	ActionMatchRecorded  = "match_recorded"
	ActionClaimSubmitted = "claim_submitted"
	ActionClaimApproved  = "claim_approved"
	ActionClaimRejected  = "claim_rejected"
	ActionInfoRequested  = "info_requested"
	ActionInfoProvided   = "info_provided"
	ActionTokenRedeemed  = "token_redeemed"
)

// Stats holds the dashboard counters.
type Stats struct {
	Lost          int `json:"lost"`
	Found         int `json:"found"`
	PendingClaims int `json:"pending_claims"`
	Returned      int `json:"returned"`
	Expired       int `json:"expired"`
	Archived      int `json:"archived"`
}

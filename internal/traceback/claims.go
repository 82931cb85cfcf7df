package traceback

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/erazemk/traceback/internal/db"
	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/store"
)

// ClaimInput is a claimant's ownership assertion. MatchID is preferred;
// LostID alone files a claim against a lost item that has no match yet.
type ClaimInput struct {
	MatchID         string   `json:"match_id"`
	LostID          string   `json:"lost_id" validate:"required_without=MatchID"`
	ClaimantName    string   `json:"claimant_name" validate:"required,max=100"`
	SecurityAnswers []string `json:"security_answers" validate:"len=3,dive,required"`
	ProofImage      string   `json:"proof_image"`
}

// DecisionInput is an admin's verdict on a pending claim.
type DecisionInput struct {
	Decision model.Decision `json:"decision" validate:"required,oneof=approve reject request_info"`
	Reason   string         `json:"reason"`
	Comment  string         `json:"comment"`
}

// InfoInput is a claimant's answer to an admin's request for information.
type InfoInput struct {
	Note       string `json:"note" validate:"required,max=2000"`
	ProofImage string `json:"proof_image"`
}

// DecisionResult is the outcome of DecideClaim. Token is set on approval.
type DecisionResult struct {
	Claim *model.Claim       `json:"claim"`
	Token *model.PickupToken `json:"token,omitempty"`
}

// SubmitClaim files a claim and locks the found item for review.
func (s *Service) SubmitClaim(ctx context.Context, in ClaimInput, claimantID string) (*model.Claim, error) {
	in.ClaimantName = strings.TrimSpace(in.ClaimantName)
	answers := make([]string, len(in.SecurityAnswers))
	for i, a := range in.SecurityAnswers {
		answers[i] = strings.TrimSpace(a)
	}
	in.SecurityAnswers = answers
	if err := s.check(in); err != nil {
		return nil, err
	}

	var claim *model.Claim
	err := s.inTx(ctx, func(q db.Querier) error {
		now := s.Now()
		claim = &model.Claim{
			ID:              s.NewID(),
			MatchID:         in.MatchID,
			LostID:          in.LostID,
			ClaimantID:      claimantID,
			ClaimantName:    in.ClaimantName,
			SecurityAnswers: in.SecurityAnswers,
			ProofImage:      in.ProofImage,
			// Shown to reviewers only; no decision reads it.
			ConfidenceScore: 50 + rand.IntN(40),
			Status:          model.ClaimStatusUnderReview,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := checkImage(ctx, q, "proof_image", in.ProofImage); err != nil {
			return err
		}

		var match *model.Match
		var found *model.Item
		if in.MatchID != "" {
			var err error
			match, err = getMatch(ctx, q, in.MatchID)
			if err != nil {
				return err
			}
			if in.LostID != "" && in.LostID != match.LostID {
				return model.FieldError("lost_id", "does not belong to match")
			}
			if match.ClaimStatus == model.MatchClaimApproved {
				return fmt.Errorf("%w: match %s already has an approved claim", model.ErrInvalidState, match.ID)
			}
			pending, err := store.GetPendingClaimForMatch(ctx, q, match.ID)
			if err != nil {
				return err
			}
			if pending != nil {
				return fmt.Errorf("%w: match %s already has a claim under review", model.ErrConflict, match.ID)
			}
			claim.LostID = match.LostID
			claim.FoundID = match.FoundID

			found, err = getItem(ctx, q, match.FoundID)
			if err != nil {
				return err
			}
			switch {
			case found.Status == model.ItemStatusUnderReview:
				return fmt.Errorf("%w: found item %s is under review for another claim", model.ErrConflict, found.ID)
			case found.Status.Terminal():
				return fmt.Errorf("%w: found item %s is %s", model.ErrInvalidState, found.ID, found.Status)
			}
		}

		lost, err := getItem(ctx, q, claim.LostID)
		if err != nil {
			return err
		}
		if lost.Kind != model.KindLost {
			return model.FieldError("lost_id", "must reference a lost item")
		}
		if lost.Status.Terminal() {
			return fmt.Errorf("%w: lost item %s is %s", model.ErrInvalidState, lost.ID, lost.Status)
		}
		pending, err := store.GetPendingClaimForLost(ctx, q, lost.ID)
		if err != nil {
			return err
		}
		if pending != nil {
			return fmt.Errorf("%w: lost item %s already has claim %s under review", model.ErrConflict, lost.ID, pending.ID)
		}

		if err := store.CreateClaim(ctx, q, claim); err != nil {
			return err
		}

		if match != nil {
			if err := store.SetMatchClaim(ctx, q, match.ID, model.MatchClaimUnderReview, ""); err != nil {
				return err
			}
			// A weak match leaves the found item reported; it passes
			// through matched on its way to review.
			if err := promote(ctx, q, found, now); err != nil {
				return err
			}
			if err := moveItem(ctx, q, found, model.ItemStatusUnderReview, now); err != nil {
				return err
			}
		}

		detail := fmt.Sprintf("lost=%s", claim.LostID)
		if match != nil {
			detail = fmt.Sprintf("match=%s lost=%s found=%s", match.ID, match.LostID, match.FoundID)
		}
		return store.AppendAudit(ctx, q, model.ActionClaimSubmitted, claim.ID, detail, claimantID, now)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("claim submitted", "claim", claim.ID, "match", claim.MatchID, "lost", claim.LostID, "claimant", claimantID)
	return claim, nil
}

// DecideClaim applies an admin decision to a pending claim.
//
// Approving mints a pickup token valid for Policy.TokenValidity and moves
// both items to returned. Rejecting requires a reason, unlocks the found item
// back to matched and clears the match so a new claim can be filed.
// Requesting information records the admin's comment and leaves items and
// match untouched. A claim that is already approved or rejected cannot be
// decided again.
func (s *Service) DecideClaim(ctx context.Context, claimID string, in DecisionInput, actor string) (*DecisionResult, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := s.check(in); err != nil {
		return nil, err
	}
	switch in.Decision {
	case model.DecisionReject:
		if in.Reason == "" {
			return nil, model.FieldError("reason", "required")
		}
	case model.DecisionRequestInfo:
		if in.Comment == "" {
			return nil, model.FieldError("comment", "required")
		}
	}

	res := &DecisionResult{}
	err := s.inTx(ctx, func(q db.Querier) error {
		claim, err := getClaim(ctx, q, claimID)
		if err != nil {
			return err
		}
		if !claim.Status.Pending() {
			return fmt.Errorf("%w: claim %s is %s", model.ErrInvalidState, claim.ID, claim.Status)
		}

		now := s.Now()
		claim.UpdatedAt = now
		claim.DecidedBy = actor
		if in.Comment != "" {
			claim.AdminComment = in.Comment
		}

		var action, detail string
		switch in.Decision {
		case model.DecisionApprove:
			token, err := s.approve(ctx, q, claim, now)
			if err != nil {
				return err
			}
			res.Token = token
			action, detail = model.ActionClaimApproved, "token="+token.ID
		case model.DecisionReject:
			if err := reject(ctx, q, claim, in.Reason, now); err != nil {
				return err
			}
			action, detail = model.ActionClaimRejected, in.Reason
		case model.DecisionRequestInfo:
			claim.Status = model.ClaimStatusInfoRequested
			action, detail = model.ActionInfoRequested, in.Comment
		}

		if err := store.UpdateClaim(ctx, q, claim); err != nil {
			return err
		}
		res.Claim = claim
		return store.AppendAudit(ctx, q, action, claim.ID, detail, actor, now)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("claim decided", "claim", claimID, "decision", in.Decision, "actor", actor)
	return res, nil
}

func (s *Service) approve(ctx context.Context, q db.Querier, claim *model.Claim, now time.Time) (*model.PickupToken, error) {
	claim.Status = model.ClaimStatusApproved
	claim.ApprovedAt = &now

	token := &model.PickupToken{
		ID:        s.NewID(),
		ClaimID:   claim.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.Policy.TokenValidity),
	}
	if err := store.CreatePickupToken(ctx, q, token); err != nil {
		return nil, err
	}

	if claim.MatchID != "" {
		if err := store.SetMatchClaim(ctx, q, claim.MatchID, model.MatchClaimApproved, token.ID); err != nil {
			return nil, err
		}
	}

	ids := []string{claim.LostID}
	if claim.FoundID != "" {
		ids = append(ids, claim.FoundID)
	}
	for _, id := range ids {
		item, err := getItem(ctx, q, id)
		if err != nil {
			return nil, err
		}
		if err := promote(ctx, q, item, now); err != nil {
			return nil, err
		}
		if err := moveItem(ctx, q, item, model.ItemStatusReturned, now); err != nil {
			return nil, err
		}
	}
	return token, nil
}

func reject(ctx context.Context, q db.Querier, claim *model.Claim, reason string, now time.Time) error {
	claim.Status = model.ClaimStatusRejected
	claim.RejectReason = reason
	claim.RejectedAt = &now

	if claim.MatchID != "" {
		if err := store.SetMatchClaim(ctx, q, claim.MatchID, model.MatchClaimNone, ""); err != nil {
			return err
		}
	}
	if claim.FoundID == "" {
		return nil
	}

	found, err := getItem(ctx, q, claim.FoundID)
	if err != nil {
		return err
	}
	if found.Status != model.ItemStatusUnderReview {
		return nil
	}
	return moveItem(ctx, q, found, model.ItemStatusMatched, now)
}

// RespondToInfoRequest records the claimant's answer to a request for
// information and puts the claim back under review.
func (s *Service) RespondToInfoRequest(ctx context.Context, claimID string, in InfoInput, actor string) (*model.Claim, error) {
	in.Note = strings.TrimSpace(in.Note)
	if err := s.check(in); err != nil {
		return nil, err
	}

	var claim *model.Claim
	err := s.inTx(ctx, func(q db.Querier) error {
		var err error
		claim, err = getClaim(ctx, q, claimID)
		if err != nil {
			return err
		}
		if claim.Status != model.ClaimStatusInfoRequested {
			return fmt.Errorf("%w: claim %s is %s", model.ErrInvalidState, claim.ID, claim.Status)
		}
		if err := checkImage(ctx, q, "proof_image", in.ProofImage); err != nil {
			return err
		}

		now := s.Now()
		claim.Status = model.ClaimStatusUnderReview
		claim.ClaimantNote = in.Note
		if in.ProofImage != "" {
			claim.ProofImage = in.ProofImage
		}
		claim.UpdatedAt = now
		if err := store.UpdateClaim(ctx, q, claim); err != nil {
			return err
		}
		return store.AppendAudit(ctx, q, model.ActionInfoProvided, claim.ID, in.Note, actor, now)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("claim information provided", "claim", claimID, "actor", actor)
	return claim, nil
}

func getMatch(ctx context.Context, q db.Querier, id string) (*model.Match, error) {
	m, err := store.GetMatch(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: match %s", model.ErrNotFound, id)
	}
	return m, nil
}

func getClaim(ctx context.Context, q db.Querier, id string) (*model.Claim, error) {
	c, err := store.GetClaim(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: claim %s", model.ErrNotFound, id)
	}
	return c, nil
}

// checkImage verifies an optional image reference names a stored upload.
func checkImage(ctx context.Context, q db.Querier, field, ref string) error {
	if ref == "" {
		return nil
	}
	ok, err := store.ImagesExist(ctx, q, []string{ref})
	if err != nil {
		return err
	}
	if !ok {
		return model.FieldError(field, "unknown image reference")
	}
	return nil
}

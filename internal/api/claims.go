package api

import (
	"net/http"

	"github.com/erazemk/traceback/internal/auth"
	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/traceback"
)

// ClaimsHandler handles ownership claims.
type ClaimsHandler struct {
	Svc *traceback.Service
}

type questionsResponse struct {
	Category  model.Category `json:"category"`
	Questions []string       `json:"questions"`
}

// Questions handles GET /api/categories/{category}/questions.
func (h *ClaimsHandler) Questions(w http.ResponseWriter, r *http.Request) {
	category := model.Category(r.PathValue("category"))
	qs, err := h.Svc.Questions(category)
	if err != nil {
		serviceError(w, err, "get questions")
		return
	}
	jsonResponse(w, http.StatusOK, questionsResponse{Category: category, Questions: qs})
}

// Create handles POST /api/claims. The claimant is the caller; the display
// name defaults to their username.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in traceback.ClaimInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	if in.ClaimantName == "" {
		in.ClaimantName = claims.Username
	}

	claim, err := h.Svc.SubmitClaim(r.Context(), in, claims.Username)
	if err != nil {
		serviceError(w, err, "submit claim")
		return
	}
	jsonResponse(w, http.StatusCreated, claim)
}

// List handles GET /api/claims?status=.
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.ListClaims(r.Context(), model.ClaimStatus(r.URL.Query().Get("status")))
	if err != nil {
		serviceError(w, err, "list claims")
		return
	}
	if list == nil {
		list = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// Get handles GET /api/claims/{id}. Residents only see their own claims.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.ownClaim(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, detail)
}

// Decide handles POST /api/claims/{id}/decision.
func (h *ClaimsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var in traceback.DecisionInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Svc.DecideClaim(r.Context(), r.PathValue("id"), in, GetClaims(r.Context()).Username)
	if err != nil {
		serviceError(w, err, "decide claim")
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

// RespondToInfo handles POST /api/claims/{id}/info.
func (h *ClaimsHandler) RespondToInfo(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.ownClaim(w, r); !ok {
		return
	}

	var in traceback.InfoInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Svc.RespondToInfoRequest(r.Context(), r.PathValue("id"), in, GetClaims(r.Context()).Username)
	if err != nil {
		serviceError(w, err, "update claim")
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}

// ownClaim loads the {id} claim and hides it from residents who did not
// file it.
func (h *ClaimsHandler) ownClaim(w http.ResponseWriter, r *http.Request) (*traceback.ClaimDetail, bool) {
	detail, err := h.Svc.GetClaim(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "get claim")
		return nil, false
	}
	if !canSeeClaim(GetClaims(r.Context()), detail.Claim) {
		jsonError(w, http.StatusNotFound, "claim not found")
		return nil, false
	}
	return detail, true
}

func canSeeClaim(c *auth.Claims, claim *model.Claim) bool {
	return model.RoleAtLeast(c.Role, model.RoleSecurity) || claim.ClaimantID == c.Username
}

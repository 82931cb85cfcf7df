package api

import (
	"net/http"

	"github.com/erazemk/traceback/internal/traceback"
)

// TokensHandler serves the security desk's pickup token checks.
type TokensHandler struct {
	Svc *traceback.Service
}

// Validate handles GET /api/tokens/{id}. Unknown tokens are reported in the
// body as not_found rather than with a 404.
func (h *TokensHandler) Validate(w http.ResponseWriter, r *http.Request) {
	v, err := h.Svc.ValidateToken(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "validate token")
		return
	}
	jsonResponse(w, http.StatusOK, v)
}

// Redeem handles POST /api/tokens/{id}/redeem.
func (h *TokensHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	token, err := h.Svc.RedeemToken(r.Context(), r.PathValue("id"), GetClaims(r.Context()).Username)
	if err != nil {
		serviceError(w, err, "redeem token")
		return
	}
	jsonResponse(w, http.StatusOK, token)
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/traceback"
)

// AdminHandler serves the dashboard counters and administrative actions.
type AdminHandler struct {
	Svc *traceback.Service
}

type sweepResponse struct {
	Expired int `json:"expired"`
}

// Stats handles GET /api/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		serviceError(w, err, "get stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Audit handles GET /api/audit?subject=.
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Svc.AuditLog(r.Context(), r.URL.Query().Get("subject"))
	if err != nil {
		serviceError(w, err, "list audit log")
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// Sweep handles POST /api/sweep.
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.Sweep(r.Context())
	if err != nil {
		serviceError(w, err, "sweep")
		return
	}
	slog.Info("manual sweep", "user", GetClaims(r.Context()).Username, "expired", n)
	jsonResponse(w, http.StatusOK, sweepResponse{Expired: n})
}

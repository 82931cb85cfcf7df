package api

import (
	"net/http"

	"github.com/erazemk/traceback/internal/model"
	"github.com/erazemk/traceback/internal/traceback"
)

// ItemsHandler handles lost and found reports and their matches.
type ItemsHandler struct {
	Svc *traceback.Service
}

type recordMatchRequest struct {
	LostID  string `json:"lost_id"`
	FoundID string `json:"found_id"`
}

// List handles GET /api/items?kind=&status=&q=.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.Svc.ListItems(r.Context(), traceback.ItemQuery{
		Kind:   model.ItemKind(q.Get("kind")),
		Status: model.ItemStatus(q.Get("status")),
		Text:   q.Get("q"),
	})
	if err != nil {
		serviceError(w, err, "list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. The reporter is the caller.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in traceback.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Svc.CreateItem(r.Context(), in, GetClaims(r.Context()).Username)
	if err != nil {
		serviceError(w, err, "create item")
		return
	}
	jsonResponse(w, http.StatusCreated, res)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Svc.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "get item")
		return
	}
	if detail.Matches == nil {
		detail.Matches = []model.Match{}
	}
	jsonResponse(w, http.StatusOK, detail)
}

// Matches handles GET /api/items/{id}/matches.
func (h *ItemsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Svc.ListMatches(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "list matches")
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	jsonResponse(w, http.StatusOK, matches)
}

// Archive handles POST /api/items/{id}/archive.
func (h *ItemsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	item, err := h.Svc.ArchiveItem(r.Context(), r.PathValue("id"), GetClaims(r.Context()).Username)
	if err != nil {
		serviceError(w, err, "archive item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// RecordMatch handles POST /api/matches.
func (h *ItemsHandler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	var req recordMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LostID == "" || req.FoundID == "" {
		jsonError(w, http.StatusBadRequest, "lost_id and found_id required")
		return
	}

	m, err := h.Svc.RecordMatch(r.Context(), req.LostID, req.FoundID, GetClaims(r.Context()).Username)
	if err != nil {
		serviceError(w, err, "record match")
		return
	}
	jsonResponse(w, http.StatusCreated, m)
}

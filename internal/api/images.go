package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/traceback/internal/imaging"
	"github.com/erazemk/traceback/internal/store"
)

// multipartOverhead leaves room for form boundaries and headers on top of
// the image itself.
const multipartOverhead = 64 << 10

// ImagesHandler stores uploaded photos and serves them back.
type ImagesHandler struct {
	DB    *sql.DB
	Now   func() time.Time
	NewID func() string
}

type uploadResponse struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Upload handles POST /api/images with a multipart "image" field.
func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+multipartOverhead)

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, imaging.ErrTooLarge.Error())
			return
		}
		jsonError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		serviceError(w, err, "process image")
		return
	}

	claims := GetClaims(r.Context())
	id := h.NewID()
	if err := store.CreateImage(r.Context(), h.DB, id, photo.Data, photo.MIME, claims.Username, h.Now()); err != nil {
		serviceError(w, err, "save image")
		return
	}

	slog.Info("image uploaded", "image", id, "user", claims.Username, "bytes", len(photo.Data))
	jsonResponse(w, http.StatusCreated, uploadResponse{ID: id, Width: photo.Width, Height: photo.Height})
}

// Get handles GET /api/images/{id}.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		serviceError(w, err, "get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Write(data)
}

package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"thumbgen/internal/domain"
	"thumbgen/internal/middleware"
	"thumbgen/internal/thumbnail"
)

type thumbnailResponse struct {
	Message   string            `json:"message,omitempty"`
	Thumbnail *domain.Thumbnail `json:"thumbnail"`
}

type thumbnailsResponse struct {
	Thumbnails []domain.Thumbnail `json:"thumbnails"`
}

func (a *App) GenerateThumbnail(w http.ResponseWriter, r *http.Request) {
	var req thumbnail.GenerateInput
	if !a.decode(w, r, &req) {
		return
	}
	req.RequestID = middleware.RequestIDFromContext(r.Context())

	thumb, err := a.Thumbnails.Generate(r.Context(), a.currentUserID(r), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, thumbnailResponse{Message: "Thumbnail Generated", Thumbnail: thumb})
}

func (a *App) DeleteThumbnail(w http.ResponseWriter, r *http.Request) {
	err := a.Thumbnails.Delete(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Thumbnail not found")
			return
		}
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, messageResponse{Message: "Thumbnail deleted successfully"})
}

func (a *App) ListThumbnails(w http.ResponseWriter, r *http.Request) {
	thumbs, err := a.Thumbnails.List(r.Context(), a.currentUserID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if thumbs == nil {
		thumbs = []domain.Thumbnail{}
	}
	a.json(w, http.StatusOK, thumbnailsResponse{Thumbnails: thumbs})
}

// GetThumbnail answers {thumbnail:null} for records the caller cannot see.
func (a *App) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	thumb, err := a.Thumbnails.Get(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, thumbnailResponse{Thumbnail: thumb})
}

func (a *App) DownloadThumbnail(w http.ResponseWriter, r *http.Request) {
	dl, err := a.Thumbnails.Download(r.Context(), a.currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "Thumbnail not found")
			return
		}
		a.fail(w, r, err)
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.FileName))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, dl.Body); err != nil {
		a.Logger.Warn().Err(err).Str("thumbnail_id", chi.URLParam(r, "id")).Msg("download interrupted")
	}
}

package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/tubeworks/accounts/internal/accounts/domain"
	"github.com/tubeworks/accounts/internal/accounts/media"
	"github.com/tubeworks/accounts/internal/accounts/service"
	"github.com/tubeworks/accounts/pkg/httpx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

type AvatarHandler struct {
	UserService *service.UserService
	Uploader    media.Uploader
}

// HandleAvatar replaces the caller's avatar with a freshly uploaded file.
func (h *AvatarHandler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	h.handleImage(w, r, "avatar", "avatars", h.UserService.SetAvatar, "avatar updated successfully")
}

// HandleCoverImage replaces the caller's cover image.
func (h *AvatarHandler) HandleCoverImage(w http.ResponseWriter, r *http.Request) {
	h.handleImage(w, r, "coverImage", "covers", h.UserService.SetCoverImage, "cover image updated successfully")
}

func (h *AvatarHandler) handleImage(
	w http.ResponseWriter,
	r *http.Request,
	field, prefix string,
	persist func(ctx context.Context, userID, url string) (domain.User, error),
	message string,
) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	u, ok := UserFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	url, err := uploadFormFile(ctx, h.Uploader, r, field, prefix)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			httpx.WriteError(w, http.StatusBadRequest, field+" file is required")
			return
		}
		log.Error("image upload failed", "error", err, "field", field, "user_id", u.ID)
		httpx.WriteError(w, http.StatusBadGateway, "image upload failed")
		return
	}

	updated, err := persist(ctx, u.ID, url)
	if err != nil {
		log.Error("image update failed", "error", err, "field", field, "user_id", u.ID)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, updated.Sanitized(), message)
}

package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tubeworks/accounts/internal/accounts/media"
	"github.com/tubeworks/accounts/internal/accounts/service"
	"github.com/tubeworks/accounts/pkg/httpx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

type RegisterHandler struct {
	UserService *service.UserService
	Uploader    media.Uploader
}

// ServeHTTP handles account registration. The request is multipart: text
// fields plus a required avatar file and an optional cover image.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	email := strings.TrimSpace(r.FormValue("email"))
	username := strings.TrimSpace(r.FormValue("username"))
	// The password is stored and verified verbatim; only emptiness is
	// checked against a trimmed copy.
	password := r.FormValue("password")
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(password) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "all fields are required")
		return
	}

	// Check uniqueness before touching the object store so a duplicate
	// registration does not leave orphaned uploads behind. Register re-checks
	// under the UNIQUE index, this is just the cheap early exit.
	taken, err := h.UserService.Taken(ctx, username, email)
	if err != nil {
		log.Error("registration pre-check failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if taken {
		httpx.WriteError(w, http.StatusConflict, "user with email or username already exists")
		return
	}

	avatarURL, err := uploadFormFile(ctx, h.Uploader, r, "avatar", "avatars")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			httpx.WriteError(w, http.StatusBadRequest, "avatar file is required")
			return
		}
		log.Error("avatar upload failed", "error", err)
		httpx.WriteError(w, http.StatusBadGateway, "avatar upload failed")
		return
	}

	// The cover image is optional, and a failed upload should not lose the
	// registration. The user is told so they can retry from their profile.
	message := "user registered successfully"
	coverURL, err := uploadFormFile(ctx, h.Uploader, r, "coverImage", "covers")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		log.Warn("cover image upload failed", "error", err)
		coverURL = ""
		message = "user registered successfully; cover image upload failed, please retry"
	}

	u, err := h.UserService.Register(ctx, service.RegisterParams{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		Password:      password,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			httpx.WriteError(w, http.StatusConflict, "user with email or username already exists")
			return
		}
		log.Error("registration failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteEnvelope(w, http.StatusCreated, u.Sanitized(), message)
}

package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/tubeworks/accounts/internal/accounts/service"
	"github.com/tubeworks/accounts/internal/accounts/store"
	"github.com/tubeworks/accounts/pkg/httpx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

type ChannelHandler struct {
	UserService *service.UserService
}

// HandleProfile returns the channel view for a username, with subscriber
// aggregates computed relative to the caller.
func (h *ChannelHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	viewer, ok := UserFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	username := r.PathValue("username")
	if username == "" {
		httpx.WriteError(w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.UserService.ChannelProfile(ctx, username, viewer.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "channel does not exist")
			return
		}
		log.Error("channel profile lookup failed", "error", err, "channel", username)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, profile, "channel profile fetched successfully")
}

// HandleSubscribe subscribes the caller to the named channel.
func (h *ChannelHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	h.handleSubscription(w, r, h.UserService.Subscribe, "subscribed successfully")
}

// HandleUnsubscribe removes the caller's subscription to the named channel.
func (h *ChannelHandler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	h.handleSubscription(w, r, h.UserService.Unsubscribe, "unsubscribed successfully")
}

func (h *ChannelHandler) handleSubscription(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, channelUsername, subscriberID string) error,
	message string,
) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	viewer, ok := UserFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	username := r.PathValue("username")
	if username == "" {
		httpx.WriteError(w, http.StatusBadRequest, "username is required")
		return
	}

	if err := op(ctx, username, viewer.ID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "channel does not exist")
		case errors.Is(err, service.ErrSelfSubscription):
			httpx.WriteError(w, http.StatusBadRequest, "cannot subscribe to your own channel")
		default:
			log.Error("subscription update failed", "error", err, "channel", username, "user_id", viewer.ID)
			httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, nil, message)
}

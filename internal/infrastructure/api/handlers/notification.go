package handlers

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/errors"
	http2 "github.com/mufasadev/donation-ledger/internal/infrastructure/api/http"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
	"net/http"
	"strconv"
)

const defaultInboxLimit = 20

type InboxReader interface {
	Recent(ctx context.Context, recipientID string, limit int64) ([]models.Notification, error)
}

type NotificationHandler struct {
	inbox  InboxReader
	logger *zerolog.Logger
}

func NewNotificationHandler(inbox InboxReader) *NotificationHandler {
	return &NotificationHandler{inbox: inbox, logger: log.Component("http")}
}

// Recent lists the user's latest notifications, newest first.
func (h *NotificationHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultInboxLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			errors.HandleHTTPError(w, errors.NewInvalidInputError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := chi.URLParam(r, http2.UserIDParam)
	items, err := h.inbox.Recent(ctx, userID, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg(errors.ErrFailedReadNotifications)
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

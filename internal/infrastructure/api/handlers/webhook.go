package handlers

import (
	"context"
	"github.com/mufasadev/donation-ledger/internal/errors"
	http2 "github.com/mufasadev/donation-ledger/internal/infrastructure/api/http"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
	"io"
	"net/http"
)

// maxWebhookBody caps what is read from the processor before verification.
const maxWebhookBody = 1 << 19

type EventHandler interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

type WebhookHandler struct {
	events EventHandler
	logger *zerolog.Logger
}

func NewWebhookHandler(events EventHandler) *WebhookHandler {
	return &WebhookHandler{events: events, logger: log.Component("http")}
}

// Receive acknowledges a processor event once it has been verified and applied.
// A non-2xx answer makes the processor redeliver.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewBadRequestError(errors.ErrInvalidRequestBody))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err = h.events.HandleEvent(ctx, payload, r.Header.Get(http2.SignatureHeader)); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedProcessWebhook)
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

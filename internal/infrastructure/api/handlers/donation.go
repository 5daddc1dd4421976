package handlers

import (
	"context"
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/mufasadev/donation-ledger/internal/errors"
	http2 "github.com/mufasadev/donation-ledger/internal/infrastructure/api/http"
	"github.com/mufasadev/donation-ledger/internal/usecases/dtos"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"github.com/rs/zerolog"
	"net/http"
	"time"
)

const requestTimeout = 10 * time.Second

type IntentCreator interface {
	CreateIntent(ctx context.Context, campaignID string, dto *dtos.CreateIntentDTO) (*dtos.IntentResponse, error)
}

type DonationConfirmer interface {
	Confirm(ctx context.Context, reference string, source models.SignalSource) (*dtos.ConfirmationResponse, error)
}

type DonationHandler struct {
	intents  IntentCreator
	confirms DonationConfirmer
	logger   *zerolog.Logger
}

func NewDonationHandler(intents IntentCreator, confirms DonationConfirmer) *DonationHandler {
	return &DonationHandler{intents: intents, confirms: confirms, logger: log.Component("http")}
}

// CreateIntent opens a pending donation for the campaign in the URL.
func (h *DonationHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CreateIntentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewBadRequestError(errors.ErrInvalidRequestBody))
		return
	}
	dto.NormalizeAmount()

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	campaignID := chi.URLParam(r, http2.CampaignIDParam)
	intent, err := h.intents.CreateIntent(ctx, campaignID, &dto)
	if err != nil {
		h.logger.Error().Err(err).Str("campaign_id", campaignID).Msg(errors.ErrFailedCreateIntent)
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, intent)
}

// Confirm settles a donation from the processor's current view of its authorization.
func (h *DonationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var dto dtos.ConfirmDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.logger.Error().Err(err).Msg(errors.ErrFailedDecodeRequestBody)
		errors.HandleHTTPError(w, errors.NewBadRequestError(errors.ErrInvalidRequestBody))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.confirms.Confirm(ctx, dto.AuthorizationReference, models.SourceConfirm)
	if err != nil {
		h.logger.Error().Err(err).Str("authorization_ref", dto.AuthorizationReference).Msg(errors.ErrFailedConfirmDonation)
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

package middlewares

import (
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mufasadev/donation-ledger/internal/errors"
	http2 "github.com/mufasadev/donation-ledger/internal/infrastructure/api/http"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"net/http"
)

// CampaignValidationMiddleware rejects requests whose campaign id is missing or not a UUID.
func CampaignValidationMiddleware() func(next http.Handler) http.Handler {
	return uuidParam(http2.CampaignIDParam, errors.ErrCampaignIDRequired, errors.ErrInvalidCampaignID)
}

// UserValidationMiddleware validates the user id.
func UserValidationMiddleware() func(next http.Handler) http.Handler {
	return uuidParam(http2.UserIDParam, errors.ErrUserIDRequired, errors.ErrInvalidUserID)
}

func uuidParam(param, requiredMsg, invalidMsg string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.GetLogger()
			value := chi.URLParam(r, param)
			if value == "" {
				logger.Error().Msg(requiredMsg)
				errors.HandleHTTPError(w, errors.NewBadRequestError(requiredMsg))
				return
			}

			if _, err := uuid.Parse(value); err != nil {
				logger.Error().Str(param, value).Msg(invalidMsg)
				errors.HandleHTTPError(w, errors.NewBadRequestError(invalidMsg))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

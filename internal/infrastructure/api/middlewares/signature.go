package middlewares

import (
	"github.com/mufasadev/donation-ledger/internal/errors"
	http2 "github.com/mufasadev/donation-ledger/internal/infrastructure/api/http"
	"github.com/mufasadev/donation-ledger/internal/metrics"
	"github.com/mufasadev/donation-ledger/pkg/log"
	"net/http"
)

// WebhookSignatureMiddleware validates the signature header is present before the body is read.
func WebhookSignatureMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(http2.SignatureHeader) == "" {
				logger := log.GetLogger()
				logger.Warn().Str("remote_addr", r.RemoteAddr).Msg(errors.ErrSignatureRequired)
				metrics.WebhookEvents.WithLabelValues("unsigned", "rejected").Inc()
				errors.HandleHTTPError(w, errors.NewBadRequestError(errors.ErrSignatureRequired))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

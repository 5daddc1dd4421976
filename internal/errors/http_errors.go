package errors

import (
	"encoding/json"
	"net/http"
)

type HTTPError struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// StatusCode maps an application error to the HTTP status it is reported with.
func StatusCode(err error) int {
	var (
		badRequest   *BadRequestError
		notFound     *NotFoundError
		invalidState *InvalidStateError
		invalidInput *InvalidInputError
		authenticity *AuthenticityError
		external     *ExternalServiceError
		persistence  *PersistenceError
	)

	switch {
	case As(err, &notFound):
		return http.StatusNotFound
	case As(err, &badRequest), As(err, &invalidState), As(err, &invalidInput), As(err, &authenticity):
		return http.StatusBadRequest
	case As(err, &external):
		return http.StatusBadGateway
	case As(err, &persistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleHTTPError handles http errors
func HandleHTTPError(w http.ResponseWriter, err error) {
	httpErr := &HTTPError{
		Code:      StatusCode(err),
		Message:   err.Error(),
		Retryable: Retryable(err),
	}
	if httpErr.Code == http.StatusInternalServerError {
		httpErr.Message = "Internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Code)
	json.NewEncoder(w).Encode(httpErr)
}

package errors

import (
	"errors"
	"fmt"
)

const (
	ErrorFailedToConnectToTheDatabase = "Failed to connect to the database"
	ErrorFailedToConnectToRedis       = "Failed to connect to redis"
	ErrorFailedToRunTheServer         = "Failed to run the server"
	ErrorFailedToShutdownTheServer    = "Failed to shutdown the server"
	ErrFailedDecodeRequestBody        = "Failed to decode request body"
	ErrInvalidRequestBody             = "Invalid request body"
	ErrFailedCreateIntent             = "Failed to create payment intent"
	ErrFailedConfirmDonation          = "Failed to confirm donation"
	ErrFailedProcessWebhook           = "Failed to process webhook event"
	ErrSignatureRequired              = "Stripe-Signature header is required"
	ErrCampaignIDRequired             = "Campaign ID is required"
	ErrInvalidCampaignID              = "Invalid Campaign ID"
	ErrFailedSweepPending             = "Failed to sweep pending donations"
	ErrUserIDRequired                 = "User ID is required"
	ErrInvalidUserID                  = "Invalid User ID"
	ErrFailedReadNotifications        = "Failed to read notifications"
)

type BadRequestError struct {
	Message string
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("Bad request: %s", e.Message)
}

// NotFoundError reports a reference this system does not know about.
type NotFoundError struct {
	Entity    string
	Reference string
}

func NewNotFoundError(entity, reference string) *NotFoundError {
	return &NotFoundError{Entity: entity, Reference: reference}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Reference)
}

// InvalidStateError reports an entity that cannot take the requested action in its current state.
type InvalidStateError struct {
	Message string
}

func NewInvalidStateError(message string) *InvalidStateError {
	return &InvalidStateError{Message: message}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %s", e.Message)
}

type InvalidInputError struct {
	Field   string
	Message string
}

func NewInvalidInputError(field, message string) *InvalidInputError {
	return &InvalidInputError{Field: field, Message: message}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ExternalServiceError wraps a failure of the payment processor. Safe to retry.
type ExternalServiceError struct {
	Service string
	Err     error
}

func NewExternalServiceError(service string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Err: err}
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// AuthenticityError reports an inbound event whose signature could not be verified.
type AuthenticityError struct {
	Err error
}

func NewAuthenticityError(err error) *AuthenticityError {
	return &AuthenticityError{Err: err}
}

func (e *AuthenticityError) Error() string {
	return fmt.Sprintf("event verification failed: %v", e.Err)
}

func (e *AuthenticityError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a ledger write that did not commit. Nothing was applied; safe to retry.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may safely repeat the operation that produced err.
func Retryable(err error) bool {
	var ext *ExternalServiceError
	var pers *PersistenceError
	return errors.As(err, &ext) || errors.As(err, &pers)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func New(text string) error {
	return errors.New(text)
}

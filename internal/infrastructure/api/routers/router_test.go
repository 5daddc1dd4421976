package routers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mufasadev/donation-ledger/internal/di"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	apperrors "github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/internal/infrastructure/api/handlers"
	"github.com/mufasadev/donation-ledger/internal/usecases/dtos"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const campaignID = "3f1c2a9e-5b7d-4c1e-9a2f-8d6e4b3c2a10"

type fakeIntents struct {
	campaignID string
	dto        *dtos.CreateIntentDTO
	err        error
}

func (f *fakeIntents) CreateIntent(_ context.Context, campaignID string, dto *dtos.CreateIntentDTO) (*dtos.IntentResponse, error) {
	f.campaignID, f.dto = campaignID, dto
	if f.err != nil {
		return nil, f.err
	}
	return &dtos.IntentResponse{
		DonationID:             "don-1",
		AuthorizationReference: "pi_1",
		ClientSecret:           "pi_1_secret",
		Amount:                 decimal.RequireFromString(dto.Amount),
		Currency:               "USD",
	}, nil
}

type fakeConfirms struct {
	source models.SignalSource
	err    error
}

func (f *fakeConfirms) Confirm(_ context.Context, reference string, source models.SignalSource) (*dtos.ConfirmationResponse, error) {
	f.source = source
	if f.err != nil {
		return nil, f.err
	}
	return &dtos.ConfirmationResponse{
		DonationID: "don-1",
		Status:     models.DonationCompleted,
		Applied:    true,
		Campaign: dtos.CampaignProgress{
			ID:                 campaignID,
			CurrentAmount:      decimal.NewFromInt(1050),
			GoalAmount:         decimal.NewFromInt(1000),
			Status:             models.CampaignCompleted,
			ProgressPercentage: decimal.NewFromInt(100),
		},
	}, nil
}

type fakeEvents struct {
	payload   string
	signature string
	err       error
}

func (f *fakeEvents) HandleEvent(_ context.Context, payload []byte, signature string) error {
	f.payload, f.signature = string(payload), signature
	return f.err
}

type fakeInbox struct {
	limit int64
}

func (f *fakeInbox) Recent(_ context.Context, recipientID string, limit int64) ([]models.Notification, error) {
	f.limit = limit
	return []models.Notification{{ID: "n-1", RecipientID: recipientID, Type: models.NotificationDonationReceived}}, nil
}

type fixture struct {
	intents  *fakeIntents
	confirms *fakeConfirms
	events   *fakeEvents
	inbox    *fakeInbox
	router   http.Handler
}

func newFixture() *fixture {
	f := &fixture{intents: &fakeIntents{}, confirms: &fakeConfirms{}, events: &fakeEvents{}, inbox: &fakeInbox{}}
	f.router = NewRouter(&di.Container{
		DonationHandler:     handlers.NewDonationHandler(f.intents, f.confirms),
		WebhookHandler:      handlers.NewWebhookHandler(f.events),
		NotificationHandler: handlers.NewNotificationHandler(f.inbox),
	})
	return f
}

func (f *fixture) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.HTTPError {
	t.Helper()
	var body apperrors.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateIntentRoute(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/donations/intent", `{"amount": 15.5, "currency": "usd", "isAnonymous": true}`, nil)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, campaignID, f.intents.campaignID)
		assert.Equal(t, "15.5", f.intents.dto.Amount)

		var body dtos.IntentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "pi_1", body.AuthorizationReference)
		assert.Equal(t, "pi_1_secret", body.ClientSecret)
	})

	t.Run("amount as string", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/donations/intent", `{"amount": "20.00"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "20.00", f.intents.dto.Amount)
	})

	t.Run("campaign id must be a uuid", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/api/v1/campaigns/not-a-uuid/donations/intent", `{"amount": 10}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, f.intents.dto)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/donations/intent", `{`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Bad request: "+apperrors.ErrInvalidRequestBody, decodeError(t, rec).Message)
	})

	t.Run("inactive campaign", func(t *testing.T) {
		f := newFixture()
		f.intents.err = apperrors.NewInvalidStateError("campaign is not accepting donations")
		rec := f.do(http.MethodPost, "/api/v1/campaigns/"+campaignID+"/donations/intent", `{"amount": 10}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestConfirmRoute(t *testing.T) {
	t.Run("snapshot", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/api/v1/donations/confirm", `{"authorizationReference": "pi_1"}`, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.SourceConfirm, f.confirms.source)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "COMPLETED", body["status"])
		assert.Equal(t, true, body["applied"])
		campaign := body["campaign"].(map[string]interface{})
		assert.Equal(t, "100", campaign["progressPercentage"])
		assert.Equal(t, "COMPLETED", campaign["status"])
	})

	tests := []struct {
		name      string
		err       error
		code      int
		retryable bool
	}{
		{"unknown reference", apperrors.NewNotFoundError("donation", "pi_x"), http.StatusNotFound, false},
		{"not settled", apperrors.NewInvalidStateError("payment not settled (processing)"), http.StatusBadRequest, false},
		{"processor down", apperrors.NewExternalServiceError("stripe", apperrors.New("timeout")), http.StatusBadGateway, true},
		{"ledger write failed", apperrors.NewPersistenceError("settle donation", apperrors.New("conn reset")), http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.confirms.err = tt.err
			rec := f.do(http.MethodPost, "/api/v1/donations/confirm", `{"authorizationReference": "pi_x"}`, nil)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.retryable, decodeError(t, rec).Retryable)
		})
	}
}

func TestWebhookRoute(t *testing.T) {
	t.Run("missing signature", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/api/v1/webhooks/payments", `{"id":"evt_1"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.events.payload)
	})

	t.Run("acknowledged", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/api/v1/webhooks/payments", `{"id":"evt_1"}`, map[string]string{"Stripe-Signature": "t=1,v1=abc"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":true}`, rec.Body.String())
		assert.Equal(t, `{"id":"evt_1"}`, f.events.payload)
		assert.Equal(t, "t=1,v1=abc", f.events.signature)
	})

	t.Run("large event is read in full", func(t *testing.T) {
		f := newFixture()
		body := `{"id":"evt_big","data":{"object":{"metadata":"` + strings.Repeat("x", 100<<10) + `"}}}`
		rec := f.do(http.MethodPost, "/api/v1/webhooks/payments", body, map[string]string{"Stripe-Signature": "t=1,v1=abc"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, body, f.events.payload)
	})

	t.Run("oversized body is refused", func(t *testing.T) {
		f := newFixture()
		rec := f.do(http.MethodPost, "/api/v1/webhooks/payments", strings.Repeat("x", 1<<20), map[string]string{"Stripe-Signature": "t=1,v1=abc"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.events.payload)
	})

	t.Run("bad signature", func(t *testing.T) {
		f := newFixture()
		f.events.err = apperrors.NewAuthenticityError(apperrors.New("no valid signature"))
		rec := f.do(http.MethodPost, "/api/v1/webhooks/payments", `{}`, map[string]string{"Stripe-Signature": "t=1,v1=abc"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ledger unavailable asks for redelivery", func(t *testing.T) {
		f := newFixture()
		f.events.err = apperrors.NewPersistenceError("settle donation", apperrors.New("conn reset"))
		rec := f.do(http.MethodPost, "/api/v1/webhooks/payments", `{}`, map[string]string{"Stripe-Signature": "t=1,v1=abc"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestNotificationsRoute(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/v1/users/"+campaignID+"/notifications?limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), f.inbox.limit)
	assert.Contains(t, rec.Body.String(), `"id":"n-1"`)

	rec = f.do(http.MethodGet, "/api/v1/users/"+campaignID+"/notifications?limit=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/users/nope/notifications", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOperationalRoutes(t *testing.T) {
	f := newFixture()

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", "", nil).Code)

	rec := f.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

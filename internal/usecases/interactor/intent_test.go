package interactor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mufasadev/donation-ledger/internal/domain/gateways"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	apperr "github.com/mufasadev/donation-ledger/internal/errors"
	"github.com/mufasadev/donation-ledger/internal/usecases/dtos"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const donorID = "6f1c2a9e-3b7d-4c55-9a0e-2d8f4b1e7c30"

func intentDTO(amount string) *dtos.CreateIntentDTO {
	return &dtos.CreateIntentDTO{Amount: amount, Currency: "usd"}
}

func newIntent(store *memLedger, processor *processorMock) *IntentInteractor {
	return NewIntentInteractor(memCampaigns{store}, store, memUsers{donorID: {ID: donorID, Name: "Jane Doe"}}, processor)
}

func TestCreateIntent(t *testing.T) {
	t.Run("creates one pending donation", func(t *testing.T) {
		store := newMemLedger()
		store.addCampaign("c1", "1000", "0")
		processor := &processorMock{}
		processor.On("CreateAuthorization", mock.Anything, mock.MatchedBy(func(req gateways.AuthorizationRequest) bool {
			return req.Amount.Equal(decimal.RequireFromString("25.50")) && req.Currency == "USD" && req.CampaignID == "c1" && req.DonationID != ""
		})).Return(&gateways.Authorization{Reference: "pi_123", ClientSecret: "pi_123_secret"}, nil).Once()

		issuer := newIntent(store, processor)
		donor := donorID
		dto := intentDTO("25.499")
		dto.DonorID = &donor

		resp, err := issuer.CreateIntent(context.Background(), "c1", dto)

		require.NoError(t, err)
		assert.Equal(t, "pi_123", resp.AuthorizationReference)
		assert.Equal(t, "pi_123_secret", resp.ClientSecret)
		assert.Equal(t, "USD", resp.Currency)

		d := store.donation(resp.DonationID)
		assert.Equal(t, models.DonationPending, d.Status)
		assert.True(t, decimal.RequireFromString("25.50").Equal(d.Amount))
		require.NotNil(t, d.AuthorizationReference)
		assert.Equal(t, "pi_123", *d.AuthorizationReference)
		require.NotNil(t, d.DonorID)
		assert.Equal(t, donorID, *d.DonorID)
		assert.Len(t, store.donations, 1)
		assert.True(t, store.campaign("c1").CurrentAmount.IsZero(), "issuing never touches the campaign")
		processor.AssertExpectations(t)
	})

	t.Run("anonymous donation drops donor", func(t *testing.T) {
		store := newMemLedger()
		store.addCampaign("c1", "1000", "0")
		processor := &processorMock{}
		processor.On("CreateAuthorization", mock.Anything, mock.Anything).Return(&gateways.Authorization{Reference: "pi_anon", ClientSecret: "s"}, nil)

		donor := "not-checked-when-anonymous"
		dto := intentDTO("10")
		dto.IsAnonymous = true
		dto.DonorID = &donor

		resp, err := newIntent(store, processor).CreateIntent(context.Background(), "c1", dto)
		require.NoError(t, err)
		assert.Nil(t, store.donation(resp.DonationID).DonorID)
	})

	t.Run("invalid input", func(t *testing.T) {
		store := newMemLedger()
		store.addCampaign("c1", "1000", "0")
		processor := &processorMock{}
		issuer := newIntent(store, processor)
		long := strings.Repeat("x", 501)
		malformed := "donor-1"
		unknown := "0b7e9d7c-1111-4a2b-8c3d-5e6f7a8b9c0d"

		for name, dto := range map[string]*dtos.CreateIntentDTO{
			"zero":              intentDTO("0"),
			"negative":          intentDTO("-5"),
			"rounds to 0":       intentDTO("0.004"),
			"not a number":      intentDTO("ten"),
			"over column range": intentDTO("10000000000"),
			"bad currency":      {Amount: "10", Currency: "dollars"},
			"foreign currency":  {Amount: "10", Currency: "eur"},
			"long message":      {Amount: "10", Message: &long},
			"malformed donor":   {Amount: "10", DonorID: &malformed},
			"unknown donor":     {Amount: "10", DonorID: &unknown},
		} {
			_, err := issuer.CreateIntent(context.Background(), "c1", dto)
			var invalid *apperr.InvalidInputError
			assert.True(t, errors.As(err, &invalid), name)
		}
		assert.Empty(t, store.donations)
		processor.AssertNotCalled(t, "CreateAuthorization", mock.Anything, mock.Anything)
	})

	t.Run("currency defaults to the campaign's", func(t *testing.T) {
		store := newMemLedger()
		store.addCampaign("c1", "1000", "0").Currency = "EUR"
		processor := &processorMock{}
		processor.On("CreateAuthorization", mock.Anything, mock.MatchedBy(func(req gateways.AuthorizationRequest) bool {
			return req.Currency == "EUR"
		})).Return(&gateways.Authorization{Reference: "pi_eur", ClientSecret: "s"}, nil).Once()

		resp, err := newIntent(store, processor).CreateIntent(context.Background(), "c1", &dtos.CreateIntentDTO{Amount: "10"})

		require.NoError(t, err)
		assert.Equal(t, "EUR", resp.Currency)
		assert.Equal(t, "EUR", store.donation(resp.DonationID).Currency)
		processor.AssertExpectations(t)
	})

	t.Run("zero-decimal currency records what is charged", func(t *testing.T) {
		store := newMemLedger()
		store.addCampaign("c1", "100000", "0").Currency = "JPY"
		processor := &processorMock{}
		processor.On("CreateAuthorization", mock.Anything, mock.MatchedBy(func(req gateways.AuthorizationRequest) bool {
			return req.Amount.Equal(decimal.NewFromInt(101)) && req.Currency == "JPY"
		})).Return(&gateways.Authorization{Reference: "pi_jpy", ClientSecret: "s"}, nil).Once()

		resp, err := newIntent(store, processor).CreateIntent(context.Background(), "c1", &dtos.CreateIntentDTO{Amount: "100.50", Currency: "jpy"})

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(101).Equal(resp.Amount))
		assert.True(t, decimal.NewFromInt(101).Equal(store.donation(resp.DonationID).Amount))
		processor.AssertExpectations(t)
	})

	t.Run("campaign not found", func(t *testing.T) {
		store := newMemLedger()
		_, err := newIntent(store, &processorMock{}).CreateIntent(context.Background(), "nope", intentDTO("10"))

		var notFound *apperr.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})

	t.Run("campaign not accepting", func(t *testing.T) {
		store := newMemLedger()
		store.addCampaign("done", "10", "10").Status = models.CampaignCompleted
		ended := store.addCampaign("ended", "1000", "0")
		past := time.Now().Add(-time.Hour)
		ended.EndDate = &past

		issuer := newIntent(store, &processorMock{})
		for _, id := range []string{"done", "ended"} {
			_, err := issuer.CreateIntent(context.Background(), id, intentDTO("10"))
			var invalid *apperr.InvalidStateError
			assert.True(t, errors.As(err, &invalid), id)
		}
		assert.Empty(t, store.donations)
	})

	t.Run("processor failure", func(t *testing.T) {
		store := newMemLedger()
		store.addCampaign("c1", "1000", "0")
		processor := &processorMock{}
		processor.On("CreateAuthorization", mock.Anything, mock.Anything).Return(nil, errors.New("stripe: 500"))

		_, err := newIntent(store, processor).CreateIntent(context.Background(), "c1", intentDTO("10"))

		var external *apperr.ExternalServiceError
		assert.True(t, errors.As(err, &external))
		assert.True(t, apperr.Retryable(err))
		assert.Empty(t, store.donations)
	})

	t.Run("store failure cancels authorization", func(t *testing.T) {
		store := newMemLedger()
		store.addCampaign("c1", "1000", "0")
		store.createErr = errors.New("disk full")
		processor := &processorMock{}
		processor.On("CreateAuthorization", mock.Anything, mock.Anything).Return(&gateways.Authorization{Reference: "pi_orphan", ClientSecret: "s"}, nil)
		processor.On("CancelAuthorization", mock.Anything, "pi_orphan").Return(nil).Once()

		_, err := newIntent(store, processor).CreateIntent(context.Background(), "c1", intentDTO("10"))

		var persistence *apperr.PersistenceError
		assert.True(t, errors.As(err, &persistence))
		processor.AssertExpectations(t)
	})
}

package interactor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mufasadev/donation-ledger/internal/domain/gateways"
	"github.com/mufasadev/donation-ledger/internal/domain/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memLedger is an in-memory ledger whose mutex plays the role of the row locks the
// Postgres implementation relies on.
type memLedger struct {
	mu        sync.Mutex
	campaigns map[string]*models.Campaign
	donations map[string]*models.Donation
	users     map[string]*models.User

	settleErr   error
	lookupErr   error
	createErr   error
	settleCalls int
	checked     []string
}

func newMemLedger() *memLedger {
	return &memLedger{
		campaigns: map[string]*models.Campaign{},
		donations: map[string]*models.Donation{},
		users:     map[string]*models.User{},
	}
}

func (m *memLedger) addCampaign(id, goal, current string) *models.Campaign {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &models.Campaign{
		ID:            id,
		OwnerID:       "owner-" + id,
		Title:         "Campaign " + id,
		GoalAmount:    decimal.RequireFromString(goal),
		CurrentAmount: decimal.RequireFromString(current),
		Currency:      "USD",
		Status:        models.CampaignActive,
	}
	m.campaigns[id] = c
	return c
}

func (m *memLedger) addDonation(id, campaignID, amount, ref string) *models.Donation {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := ref
	now := time.Now().UTC()
	d := &models.Donation{
		ID:                     id,
		CampaignID:             campaignID,
		Amount:                 decimal.RequireFromString(amount),
		Currency:               "USD",
		Status:                 models.DonationPending,
		AuthorizationReference: &r,
		IsAnonymous:            true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	m.donations[id] = d
	return d
}

func (m *memLedger) campaign(id string) models.Campaign {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.campaigns[id]
}

func (m *memLedger) donation(id string) models.Donation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.donations[id]
}

// completedSum is the conservation side of the ledger: what the campaign total should be.
func (m *memLedger) completedSum(campaignID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, d := range m.donations {
		if d.CampaignID == campaignID && d.Status == models.DonationCompleted {
			sum = sum.Add(d.Amount)
		}
	}
	return sum
}

func (m *memLedger) Create(_ context.Context, donation *models.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	d := *donation
	m.donations[d.ID] = &d
	return nil
}

// memCampaigns is the campaign-repository view of a memLedger.
type memCampaigns struct {
	*memLedger
}

func (m memCampaigns) GetByID(_ context.Context, id string) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	c, ok := m.campaigns[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m memCampaigns) ListLedgerDrift(_ context.Context) ([]models.LedgerDrift, error) {
	drift := make([]models.LedgerDrift, 0)
	ids := make([]string, 0)
	m.mu.Lock()
	for id := range m.campaigns {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sort.Strings(ids)
	for _, id := range ids {
		sum := m.completedSum(id)
		c := m.campaign(id)
		if !sum.Equal(c.CurrentAmount) {
			drift = append(drift, models.LedgerDrift{CampaignID: id, CurrentAmount: c.CurrentAmount, CompletedSum: sum})
		}
	}
	return drift, nil
}

func (m *memLedger) getDonationBy(match func(d *models.Donation) bool) (*models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	for _, d := range m.donations {
		if match(d) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memLedger) GetByID(_ context.Context, id string) (*models.Donation, error) {
	return m.getDonationBy(func(d *models.Donation) bool { return d.ID == id })
}

func (m *memLedger) GetByAuthorizationReference(_ context.Context, reference string) (*models.Donation, error) {
	return m.getDonationBy(func(d *models.Donation) bool {
		return d.AuthorizationReference != nil && *d.AuthorizationReference == reference
	})
}

func (m *memLedger) GetByChargeReference(_ context.Context, reference string) (*models.Donation, error) {
	return m.getDonationBy(func(d *models.Donation) bool {
		return d.ChargeReference != nil && *d.ChargeReference == reference
	})
}

func (m *memLedger) ListStalePending(_ context.Context, olderThan time.Time, limit int) ([]models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Donation, 0)
	for _, d := range m.donations {
		if d.Status == models.DonationPending && d.CreatedAt.Before(olderThan) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLedger) MarkChecked(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.donations[id]; ok && d.Status == models.DonationPending {
		d.UpdatedAt = at
	}
	m.checked = append(m.checked, id)
	return nil
}

func (m *memLedger) SettleDonation(_ context.Context, donationID string, settlement models.Settlement) (models.LedgerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settleCalls++
	if m.settleErr != nil {
		return models.LedgerResult{}, m.settleErr
	}

	d := m.donations[donationID]
	c := m.campaigns[d.CampaignID]
	if d.Status != models.DonationPending {
		return models.LedgerResult{Donation: *d, Campaign: *c}, nil
	}

	processedAt := settlement.ProcessedAt
	d.Status = models.DonationCompleted
	d.ProcessedAt = &processedAt
	if settlement.ChargeReference != "" {
		charge := settlement.ChargeReference
		d.ChargeReference = &charge
	}

	c.CurrentAmount = c.CurrentAmount.Add(d.Amount)
	completed := false
	if c.Status == models.CampaignActive && c.GoalReached() {
		c.Status = models.CampaignCompleted
		completed = true
	}

	return models.LedgerResult{Donation: *d, Campaign: *c, Applied: true, CampaignCompleted: completed}, nil
}

func (m *memLedger) FailDonation(_ context.Context, donationID string, failedAt time.Time) (models.LedgerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.donations[donationID]
	c := m.campaigns[d.CampaignID]
	if d.Status != models.DonationPending {
		return models.LedgerResult{Donation: *d, Campaign: *c}, nil
	}
	d.Status = models.DonationFailed
	d.ProcessedAt = &failedAt
	return models.LedgerResult{Donation: *d, Campaign: *c, Applied: true}, nil
}

// memUsers serves donor names.
type memUsers map[string]*models.User

func (u memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	return u[id], nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) ofType(t models.NotificationType) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notification, 0)
	for _, n := range r.sent {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

type processorMock struct {
	mock.Mock
}

func (p *processorMock) CreateAuthorization(ctx context.Context, req gateways.AuthorizationRequest) (*gateways.Authorization, error) {
	args := p.Called(ctx, req)
	a, _ := args.Get(0).(*gateways.Authorization)
	return a, args.Error(1)
}

func (p *processorMock) GetAuthorization(ctx context.Context, reference string) (*gateways.AuthorizationState, error) {
	args := p.Called(ctx, reference)
	s, _ := args.Get(0).(*gateways.AuthorizationState)
	return s, args.Error(1)
}

func (p *processorMock) CancelAuthorization(ctx context.Context, reference string) error {
	args := p.Called(ctx, reference)
	return args.Error(0)
}

type stubVerifier struct {
	event *gateways.Event
	err   error
}

func (s stubVerifier) VerifyEvent(_ []byte, _ string) (*gateways.Event, error) {
	return s.event, s.err
}

type memNotifications struct {
	mu    sync.Mutex
	err   error
	saved []models.Notification
}

func (m *memNotifications) Create(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *n)
	return nil
}

type stubPublisher struct {
	mu        sync.Mutex
	err       error
	published []models.Notification
}

func (s *stubPublisher) Publish(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, *n)
	return nil
}

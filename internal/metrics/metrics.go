// Package metrics holds the Prometheus collectors for the reconciliation path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "donation_ledger"

// Reconciliations counts reconciler calls by delivery path, outcome and result
// (applied, noop, not_found, error).
var Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "reconciliations_total",
	Help:      "Confirmation signals processed by the reconciler.",
}, []string{"source", "outcome", "result"})

// AmountApplied sums donation amounts credited to campaigns, by currency.
var AmountApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "amount_applied_total",
	Help:      "Donation amount credited to campaign totals.",
}, []string{"currency"})

var CampaignsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "campaigns_completed_total",
	Help:      "Campaigns moved to COMPLETED by a reconciliation.",
})

var Intents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "payment_intents_total",
	Help:      "Payment intents requested, by result.",
}, []string{"result"})

var WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "webhook_events_total",
	Help:      "Processor push events received, by type and result.",
}, []string{"type", "result"})

var Disputes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "disputes_total",
	Help:      "Dispute signals handled, by result.",
}, []string{"result"})

var Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "notifications_total",
	Help:      "Notifications dispatched, by type and result.",
}, []string{"type", "result"})

var SweptDonations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "swept_donations_total",
	Help:      "Stale pending donations re-checked by the sweep, by result.",
}, []string{"result"})

var LedgerRetries = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "ledger_tx_retries_total",
	Help:      "Ledger transactions retried after a serialization failure.",
})

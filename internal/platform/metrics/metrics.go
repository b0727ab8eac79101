package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the funding engine.
type Metrics struct {
	CasesCreated        prometheus.Counter
	CasesFunded         prometheus.Counter
	DonationsRecorded   prometheus.Counter
	DonationAmount      prometheus.Histogram
	DonationConflicts   prometheus.Counter
	RequestLatency      *prometheus.HistogramVec
	InvoicesRecorded    prometheus.Counter
	CaseUpdatesAppended prometheus.Counter
}

// New creates all Prometheus metrics and registers them with reg. Production
// passes prometheus.DefaultRegisterer; tests pass a fresh registry so
// parallel setups never collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CasesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "medfund_cases_created_total",
			Help: "Total number of sponsorship cases created",
		}),
		CasesFunded: factory.NewCounter(prometheus.CounterOpts{
			Name: "medfund_cases_funded_total",
			Help: "Total number of cases that crossed their funding goal",
		}),
		DonationsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "medfund_donations_recorded_total",
			Help: "Total number of donations recorded in the ledger",
		}),
		DonationAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "medfund_donation_amount_cents",
			Help:    "Distribution of individual donation amounts in cents",
			Buckets: prometheus.ExponentialBuckets(100, 10, 7),
		}),
		DonationConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "medfund_donation_conflicts_total",
			Help: "Per-case contention retries while applying donations",
		}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medfund_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		InvoicesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "medfund_invoices_recorded_total",
			Help: "Total number of expenditure invoices recorded",
		}),
		CaseUpdatesAppended: factory.NewCounter(prometheus.CounterOpts{
			Name: "medfund_case_updates_total",
			Help: "Total number of case updates appended to the trail",
		}),
	}
}

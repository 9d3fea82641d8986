package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/brook/internal/domain"
)

// Metrics holds all Prometheus metrics. It implements usecase.Recorder.
type Metrics struct {
	// Ledger metrics
	AccountsCreated       prometheus.Counter
	TransactionsProcessed prometheus.Counter
	TransfersCompleted    prometheus.Counter
	TransferAmount        prometheus.Histogram
	AccountTotal          *prometheus.GaugeVec
	FundAmount            *prometheus.GaugeVec
	FundProgress          *prometheus.GaugeVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "brook_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		TransactionsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "brook_transactions_applied_total",
			Help: "Total number of transactions applied to accounts",
		}),
		TransfersCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "brook_transfers_completed_total",
			Help: "Total number of transfers between accounts",
		}),
		TransferAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "brook_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		AccountTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "brook_account_total",
				Help: "Starting amount plus balance per account",
			},
			[]string{"account_id"},
		),
		FundAmount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "brook_fund_amount",
				Help: "Current amount per fund",
			},
			[]string{"account_id", "fund", "kind"},
		),
		FundProgress: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "brook_fund_progress",
				Help: "Fund progress on a 0-20 scale",
			},
			[]string{"account_id", "fund", "kind"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brook_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "brook_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "brook_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brook_rate_limit_hits_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
	}
}

// AccountCreated counts a new account.
func (m *Metrics) AccountCreated() {
	m.AccountsCreated.Inc()
}

// TransactionsApplied counts applied transactions.
func (m *Metrics) TransactionsApplied(count int) {
	m.TransactionsProcessed.Add(float64(count))
}

// TransferCompleted counts a transfer and observes its amount.
func (m *Metrics) TransferCompleted(amount decimal.Decimal) {
	m.TransfersCompleted.Inc()
	m.TransferAmount.Observe(amount.InexactFloat64())
}

// ObserveAccount sets the account and fund gauges from the account's current state.
func (m *Metrics) ObserveAccount(account *domain.Account) {
	m.AccountTotal.WithLabelValues(account.ID).Set(account.Total().Float64())

	for _, f := range account.Funds {
		m.FundAmount.WithLabelValues(account.ID, f.Name, string(f.Kind)).Set(f.Current.Float64())
		m.FundProgress.WithLabelValues(account.ID, f.Name, string(f.Kind)).Set(float64(f.Progress()))
	}
}

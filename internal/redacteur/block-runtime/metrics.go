package blockruntime

import (
	"log/slog"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - счетчики выполнения блоков. Нулевой *Metrics допустим.
type Metrics struct {
	fetches  *prometheus.CounterVec
	formulas *prometheus.CounterVec
	stale    prometheus.Counter
	jobs     prometheus.Gauge
}

// NewMetrics создает счетчики и регистрирует их в reg, если он задан.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redacteur_block_fetch_total",
			Help: "Block fetches and metadata resolutions by block type and result",
		}, []string{"block", "result"}),
		formulas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redacteur_formula_eval_total",
			Help: "Formula evaluations by result",
		}, []string{"result"}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redacteur_stale_results_total",
			Help: "Async block results dropped because a newer request was started",
		}),
		jobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "redacteur_refresh_jobs",
			Help: "Scheduled data-fetch refresh jobs",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.fetches, m.formulas, m.stale, m.jobs} {
			if err := reg.Register(c); err != nil {
				slog.Error("Register block runtime metric", "err", err)
			}
		}
	}
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) fetch(t edtypes.BlockType, err error) {
	if m != nil {
		m.fetches.WithLabelValues(string(t), result(err)).Inc()
	}
}

func (m *Metrics) formula(err error) {
	if m != nil {
		m.formulas.WithLabelValues(result(err)).Inc()
	}
}

func (m *Metrics) staleResult() {
	if m != nil {
		m.stale.Inc()
	}
}

func (m *Metrics) jobAdded() {
	if m != nil {
		m.jobs.Inc()
	}
}

func (m *Metrics) jobRemoved() {
	if m != nil {
		m.jobs.Dec()
	}
}

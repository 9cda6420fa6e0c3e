package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ShiftsOpened prometheus.Counter
	ShiftsClosed prometheus.Counter
	DraftsSaved  prometheus.Counter
	CashVariance *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ShiftsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "barcaja_shifts_opened_total",
			Help: "Shifts opened.",
		}),
		ShiftsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "barcaja_shifts_closed_total",
			Help: "Shifts closed.",
		}),
		DraftsSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "barcaja_drafts_saved_total",
			Help: "Closing-count drafts saved.",
		}),
		CashVariance: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "barcaja_cash_variance_pesos_total",
			Help: "Absolute cash variance at shift close, in pesos, by direction.",
		}, []string{"kind"}),
	}
}

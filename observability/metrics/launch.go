package metrics

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

// Launch aggregates the engine-level Prometheus collectors. A nil *Launch is
// valid and records nothing, so metric wiring stays optional in tests.
type Launch struct {
	tokensLaunched prometheus.Counter
	trades         *prometheus.CounterVec
	volume         *prometheus.CounterVec
	graduations    prometheus.Counter
	liveTokens     prometheus.Gauge
	tradeErrors    *prometheus.CounterVec
}

// NewLaunch registers the launch collectors with the supplied registerer.
func NewLaunch(reg prometheus.Registerer) *Launch {
	m := &Launch{
		tokensLaunched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "curvelaunch",
			Name:      "tokens_launched_total",
			Help:      "Number of tokens ever launched.",
		}),
		trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curvelaunch",
			Name:      "trades_total",
			Help:      "Completed curve trades by direction.",
		}, []string{"direction"}),
		volume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curvelaunch",
			Name:      "trade_volume_total",
			Help:      "Gross base-currency volume by direction.",
		}, []string{"direction"}),
		graduations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "curvelaunch",
			Name:      "graduations_total",
			Help:      "Tokens graduated to external liquidity.",
		}),
		liveTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "curvelaunch",
			Name:      "tokens_live",
			Help:      "Tokens currently trading on the curve.",
		}),
		tradeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curvelaunch",
			Name:      "trade_errors_total",
			Help:      "Rejected operations by error kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.tokensLaunched, m.trades, m.volume, m.graduations, m.liveTokens, m.tradeErrors)
	return m
}

// TokenLaunched records a successful launch.
func (m *Launch) TokenLaunched() {
	if m == nil {
		return
	}
	m.tokensLaunched.Inc()
	m.liveTokens.Inc()
}

// Trade records a completed trade and its gross volume.
func (m *Launch) Trade(direction string, gross *big.Int) {
	if m == nil {
		return
	}
	m.trades.WithLabelValues(direction).Inc()
	if gross != nil {
		v, _ := new(big.Float).SetInt(gross).Float64()
		m.volume.WithLabelValues(direction).Add(v)
	}
}

// Graduated records a token leaving the curve for external liquidity.
func (m *Launch) Graduated() {
	if m == nil {
		return
	}
	m.graduations.Inc()
	m.liveTokens.Dec()
}

// Delisted records an administrative removal of a live token.
func (m *Launch) Delisted() {
	if m == nil {
		return
	}
	m.liveTokens.Dec()
}

// TradeError records a rejected operation by error kind.
func (m *Launch) TradeError(kind string) {
	if m == nil {
		return
	}
	m.tradeErrors.WithLabelValues(kind).Inc()
}

package keeper

import (
	"math/big"
	"sync"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AMMMetrics holds all Prometheus metrics for the amm module
type AMMMetrics struct {
	// Pair metrics
	SwapsTotal       *prometheus.CounterVec
	SwapVolume       *prometheus.CounterVec
	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec
	PairReserves     *prometheus.GaugeVec
	ProtocolFeeMints *prometheus.CounterVec

	// Factory metrics
	PairsTotal    prometheus.Gauge
	PairsCreated  prometheus.Counter
	ParamsChanged *prometheus.CounterVec

	// Router metrics
	RouterOperations *prometheus.CounterVec
	RouterLatency    *prometheus.HistogramVec
	RouterHops       prometheus.Histogram
}

var (
	ammMetricsOnce sync.Once
	ammMetrics     *AMMMetrics
)

// NewAMMMetrics creates and registers amm metrics (singleton pattern)
func NewAMMMetrics() *AMMMetrics {
	ammMetricsOnce.Do(func() {
		ammMetrics = &AMMMetrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "swaps_total",
					Help:      "Total number of pair swaps executed",
				},
				[]string{"pair"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "swap_volume_total",
					Help:      "Total swap input volume in base units",
				},
				[]string{"pair", "token"},
			),
			LiquidityAdded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "liquidity_added_total",
					Help:      "Total LP shares minted by deposits",
				},
				[]string{"pair"},
			),
			LiquidityRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "liquidity_removed_total",
					Help:      "Total LP shares burned by withdrawals",
				},
				[]string{"pair"},
			),
			PairReserves: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "pair_reserves",
					Help:      "Current reserves of each pair by token",
				},
				[]string{"pair", "token"},
			),
			ProtocolFeeMints: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "protocol_fee_shares_total",
					Help:      "Total LP shares minted to the protocol fee recipient",
				},
				[]string{"pair"},
			),
			PairsTotal: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "pairs_total",
					Help:      "Number of registered pairs",
				},
			),
			PairsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "pairs_created_total",
					Help:      "Number of pairs created since start",
				},
			),
			ParamsChanged: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "factory_param_changes_total",
					Help:      "Fee parameter changes made by the fee setter",
				},
				[]string{"param"},
			),
			RouterOperations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "router_operations_total",
					Help:      "Router operations by outcome",
				},
				[]string{"operation", "status"},
			),
			RouterLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "router_operation_seconds",
					Help:      "Router operation latency",
					Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
				},
				[]string{"operation"},
			),
			RouterHops: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "paw",
					Subsystem: "amm",
					Name:      "router_swap_hops",
					Help:      "Number of pairs crossed per routed swap",
					Buckets:   []float64{1, 2, 3, 4, 5, 8},
				},
			),
		}
	})
	return ammMetrics
}

func amountToFloat(x math.Int) float64 {
	f, _ := new(big.Float).SetInt(x.BigInt()).Float64()
	return f
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

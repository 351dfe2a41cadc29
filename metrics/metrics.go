// Package metrics exposes Prometheus instrumentation for the node's core
// state machines: the block-tree, the mempool, and the miner.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChainHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coinnode",
		Name:      "chain_height",
		Help:      "Height of the current best chain tip.",
	})

	ChainTips = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coinnode",
		Name:      "chain_tips",
		Help:      "Number of known chain tips (1 plus the number of active side branches).",
	})

	BlocksAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coinnode",
		Name:      "blocks_accepted_total",
		Help:      "Total blocks mined by this node and accepted by the chain.",
	})

	BlocksRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coinnode",
		Name:      "blocks_rejected_total",
		Help:      "Total blocks mined by this node and rejected by the chain, labeled by source.",
	}, []string{"reason"})

	ReorgsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coinnode",
		Name:      "reorgs_total",
		Help:      "Total completed chain reorganizations.",
	})

	ReorgDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coinnode",
		Name:      "reorg_depth",
		Help:      "Depth (in blocks unwound) of the most recent reorganization.",
	})

	UTXOSetSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coinnode",
		Name:      "utxo_set_size",
		Help:      "Number of entries in the current best-chain UTXO set.",
	})

	MempoolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coinnode",
		Name:      "mempool_size",
		Help:      "Number of transactions currently pooled.",
	})

	MempoolFeeRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coinnode",
		Name:      "mempool_top_fee_rate",
		Help:      "Fee rate, in satoshis per byte, of the highest-priority pooled transaction.",
	})

	MinerHashrate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coinnode",
		Name:      "miner_hashrate",
		Help:      "Estimated local miner hash rate in hashes per second.",
	})

	MinerBlocksFound = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coinnode",
		Name:      "miner_blocks_found_total",
		Help:      "Total blocks this node's miner has found.",
	})
)

func init() {
	prometheus.MustRegister(
		ChainHeight,
		ChainTips,
		BlocksAccepted,
		BlocksRejected,
		ReorgsTotal,
		ReorgDepth,
		UTXOSetSize,
		MempoolSize,
		MempoolFeeRate,
		MinerHashrate,
		MinerBlocksFound,
	)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

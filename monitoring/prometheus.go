package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/kostaleonard/leocoin/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ChainRejectedReason labels candidate chains that were not adopted.
type ChainRejectedReason string

var (
	ChainInvalid            ChainRejectedReason = "invalid"
	ChainNotLonger          ChainRejectedReason = "not_longer"
	ChainDifficultyMismatch ChainRejectedReason = "difficulty_mismatch"
	ChainUndecodable        ChainRejectedReason = "undecodable"
)

// ChainSource labels where an adopted chain came from.
type ChainSource string

var (
	SourcePeer  ChainSource = "peer"
	SourceMiner ChainSource = "miner"
)

type nodePromMetrics struct {
	nodeUpUnixSeconds prometheus.Gauge
	chainLength       prometheus.Gauge
	chainVersion      prometheus.Gauge
	adoptedChains     *prometheus.CounterVec
	rejectedChains    *prometheus.CounterVec
	peerExchanges     *prometheus.CounterVec
	exchangeDuration  prometheus.Histogram
	blocksMined       prometheus.Counter
	hashAttempts      prometheus.Counter
	peerCount         prometheus.Gauge
	panicCount        prometheus.Counter
	rateLimited       *prometheus.CounterVec
}

func newNodePromMetrics() *nodePromMetrics {
	return &nodePromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "leocoin_node_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the node",
			},
		),
		chainLength: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "leocoin_chain_length",
				Help: "Number of blocks in the node's best chain",
			},
		),
		chainVersion: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "leocoin_chain_version",
				Help: "Number of times the best chain has been replaced",
			},
		),
		adoptedChains: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leocoin_adopted_chains_total",
				Help: "Candidate chains adopted as the best chain",
			},
			[]string{"source"},
		),
		rejectedChains: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leocoin_rejected_chains_total",
				Help: "Candidate chains that were not adopted",
			},
			[]string{"reason"},
		),
		peerExchanges: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leocoin_peer_exchanges_total",
				Help: "Chain exchanges with peers by role and result",
			},
			[]string{"role", "result"},
		),
		exchangeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "leocoin_peer_exchange_seconds",
				Help: "Duration of a single chain exchange",
			},
		),
		blocksMined: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "leocoin_blocks_mined_total",
				Help: "Blocks mined by this node",
			},
		),
		hashAttempts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "leocoin_hash_attempts_total",
				Help: "Proof of work attempts made by this node",
			},
		),
		peerCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "leocoin_peer_count",
				Help: "Number of known peers",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "leocoin_panic_total",
				Help: "Recovered goroutine panics",
			},
		),
		rateLimited: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leocoin_rate_limited_connections_total",
				Help: "Inbound connections refused by the per-host limiter",
			},
			[]string{"server"},
		),
	}
}

var (
	nodeMetrics *nodePromMetrics
	initOnce    sync.Once
)

// InitMetrics registers the node metrics with the default registry. Safe to
// call more than once; the setters call it lazily.
func InitMetrics() {
	initOnce.Do(func() {
		nodeMetrics = newNodePromMetrics()
		nodeMetrics.nodeUpUnixSeconds.SetToCurrentTime()
	})
}

func metrics() *nodePromMetrics {
	InitMetrics()
	return nodeMetrics
}

// Handler serves the default registry.
func Handler() http.Handler {
	logx.Info("MONITORING", "Registering prometheus metrics")
	return promhttp.Handler()
}

func SetChainState(length int, version uint64) {
	m := metrics()
	m.chainLength.Set(float64(length))
	m.chainVersion.Set(float64(version))
}

func RecordAdoptedChain(source ChainSource) {
	metrics().adoptedChains.With(prometheus.Labels{
		"source": string(source),
	}).Inc()
}

func RecordRejectedChain(reason ChainRejectedReason) {
	metrics().rejectedChains.With(prometheus.Labels{
		"reason": string(reason),
	}).Inc()
}

func RecordPeerExchange(role, result string, duration time.Duration) {
	m := metrics()
	m.peerExchanges.With(prometheus.Labels{
		"role":   role,
		"result": result,
	}).Inc()
	m.exchangeDuration.Observe(duration.Seconds())
}

func IncreaseBlocksMined() {
	metrics().blocksMined.Inc()
}

func AddHashAttempts(n uint64) {
	metrics().hashAttempts.Add(float64(n))
}

func SetPeerCount(peers int) {
	metrics().peerCount.Set(float64(peers))
}

func IncreasePanicCount() {
	metrics().panicCount.Inc()
}

func IncreaseRateLimited(server string) {
	metrics().rateLimited.With(prometheus.Labels{
		"server": server,
	}).Inc()
}

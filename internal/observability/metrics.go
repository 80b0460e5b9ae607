package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	packMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dgramchunk",
			Subsystem: "pack",
			Name:      "messages_total",
			Help:      "Messages packed into datagrams.",
		},
	)
	packDatagrams = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dgramchunk",
			Subsystem: "pack",
			Name:      "datagrams_total",
			Help:      "Datagrams produced by packing.",
		},
	)
	packBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dgramchunk",
			Subsystem: "pack",
			Name:      "bytes_total",
			Help:      "Datagram bytes produced by packing.",
		},
	)
	packRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dgramchunk",
			Subsystem: "pack",
			Name:      "rejected_total",
			Help:      "Pack batches rejected, by reason.",
		},
		[]string{"reason"},
	)
	datagramFill = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dgramchunk",
			Subsystem: "pack",
			Name:      "datagram_fill_ratio",
			Help:      "Datagram length divided by max datagram size.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)
	unpackMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dgramchunk",
			Subsystem: "unpack",
			Name:      "messages_total",
			Help:      "Messages decoded from datagrams.",
		},
	)
	unpackFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dgramchunk",
			Subsystem: "unpack",
			Name:      "failures_total",
			Help:      "Datagram batches that failed to decode, by severity.",
		},
		[]string{"severity"},
	)
	transportPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dgramchunk",
			Subsystem: "transport",
			Name:      "packets_total",
			Help:      "UDP packets by direction and result.",
		},
		[]string{"direction", "result"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dgramchunk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dgramchunk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			packMessages, packDatagrams, packBytes, packRejected, datagramFill,
			unpackMessages, unpackFailures, transportPackets,
			httpRequests, httpDuration,
		)
	})
}

// RecordPack records a successful pack of messages into datagrams.
func RecordPack(messages int, datagrams [][]byte, maxSize int) {
	RegisterMetrics()
	packMessages.Add(float64(messages))
	packDatagrams.Add(float64(len(datagrams)))
	for _, dg := range datagrams {
		packBytes.Add(float64(len(dg)))
		if maxSize > 0 {
			datagramFill.Observe(float64(len(dg)) / float64(maxSize))
		}
	}
}

func RecordPackRejected(reason string) {
	RegisterMetrics()
	packRejected.WithLabelValues(reason).Inc()
}

func RecordUnpack(messages int) {
	RegisterMetrics()
	unpackMessages.Add(float64(messages))
}

func RecordUnpackFailure(severity string) {
	RegisterMetrics()
	unpackFailures.WithLabelValues(severity).Inc()
}

func RecordPacket(direction, result string) {
	RegisterMetrics()
	transportPackets.WithLabelValues(direction, result).Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

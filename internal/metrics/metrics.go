// Package metrics exposes Prometheus collectors for overtake decisions,
// navigation transmission and feed ingestion.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"drivelink/internal/overtake"
	"drivelink/internal/telemetry"
)

const namespace = "drivelink"

// Metrics bundles the collectors. It satisfies transmit.Recorder.
type Metrics struct {
	packetsSent     *prometheus.CounterVec
	packetsSkipped  *prometheus.CounterVec
	bytesSent       prometheus.Counter
	permitted       prometheus.Gauge
	state           *prometheus.GaugeVec
	blocked         *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	snapshotAge     prometheus.Gauge
	freshness       *prometheus.GaugeVec
	frames          *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		packetsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "nav", Name: "packets_sent_total",
			Help: "Navigation packets handed to the transport.",
		}, []string{"high_priority"}),
		packetsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "nav", Name: "packets_skipped_total",
			Help: "Navigation packet candidates held back, by reason.",
		}, []string{"reason"}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "nav", Name: "bytes_sent_total",
			Help: "Estimated navigation bytes sent.",
		}),
		permitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "overtake", Name: "permitted",
			Help: "1 while every overtake condition is met.",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "overtake", Name: "state",
			Help: "1 for the current overtake state.",
		}, []string{"state"}),
		blocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "overtake", Name: "blocked_ticks_total",
			Help: "Evaluation ticks blocked, by first unmet condition.",
		}, []string{"reason"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "overtake", Name: "recommendations_total",
			Help: "Overtake recommendations issued.",
		}, []string{"direction", "action"}),
		snapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "feed", Name: "snapshot_age_seconds",
			Help: "Age of the latest vehicle snapshot.",
		}),
		freshness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "feed", Name: "freshness",
			Help: "1 for the current feed freshness class.",
		}, []string{"class"}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "feed", Name: "frames_total",
			Help: "Vehicle feed frames by outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.packetsSent, m.packetsSkipped, m.bytesSent,
		m.permitted, m.state, m.blocked, m.recommendations,
		m.snapshotAge, m.freshness, m.frames,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// PacketSent implements transmit.Recorder.
func (m *Metrics) PacketSent(bytes int, highPriority bool) {
	m.packetsSent.WithLabelValues(strconv.FormatBool(highPriority)).Inc()
	m.bytesSent.Add(float64(bytes))
}

// PacketSkipped implements transmit.Recorder.
func (m *Metrics) PacketSkipped(reason string) {
	m.packetsSkipped.WithLabelValues(reason).Inc()
}

// ObserveStatus records one evaluation tick.
func (m *Metrics) ObserveStatus(st overtake.Status) {
	for _, s := range []overtake.State{overtake.StateDisabled, overtake.StateMonitoring, overtake.StateChanging} {
		v := 0.0
		if s == st.State {
			v = 1
		}
		m.state.WithLabelValues(s.String()).Set(v)
	}
	if st.Verdict.CanOvertake {
		m.permitted.Set(1)
	} else {
		m.permitted.Set(0)
		m.blocked.WithLabelValues(st.Verdict.BlockingReason).Inc()
	}
	if r := st.Recommendation; r != nil {
		m.recommendations.WithLabelValues(r.Direction, r.Action).Inc()
	}
}

// ObserveFeed records the latest snapshot age and freshness class.
func (m *Metrics) ObserveFeed(ageSeconds float64, f telemetry.Freshness) {
	m.snapshotAge.Set(ageSeconds)
	for _, c := range []telemetry.Freshness{telemetry.NoData, telemetry.Fresh, telemetry.Stale, telemetry.Disconnected} {
		v := 0.0
		if c == f {
			v = 1
		}
		m.freshness.WithLabelValues(c.String()).Set(v)
	}
}

// FrameReceived counts one feed frame outcome (ok, heartbeat, rejected, invalid).
func (m *Metrics) FrameReceived(result string) {
	m.frames.WithLabelValues(result).Inc()
}

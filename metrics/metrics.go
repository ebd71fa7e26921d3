package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

/*
 * prometheus collectors for the connection lifecycle
 */

//face info
type Collector struct {
	stateTransitions  *prometheus.CounterVec
	reconnectAttempts prometheus.Counter
	reconnectFailures prometheus.Counter
	heartbeatRtt      prometheus.Histogram
	queueDepth        prometheus.Gauge
}

//construct, registers on the passed registerer
func NewCollector(reg prometheus.Registerer) *Collector {
	//self init
	this := &Collector{
		stateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rummilink",
			Name:      "state_transitions_total",
			Help:      "Connection state machine transitions.",
		}, []string{"from", "to"}),
		reconnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rummilink",
			Name:      "reconnect_attempts_total",
			Help:      "Armed reconnection attempts.",
		}),
		reconnectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rummilink",
			Name:      "reconnect_failures_total",
			Help:      "Reconnection attempts that ended in a dial error.",
		}),
		heartbeatRtt: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rummilink",
			Name:      "heartbeat_rtt_seconds",
			Help:      "Round-trip time of heartbeat probes.",
			Buckets:   []float64{.025, .05, .1, .2, .5, 1, 2.5},
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rummilink",
			Name:      "offline_queue_depth",
			Help:      "Actions buffered while disconnected.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			this.stateTransitions,
			this.reconnectAttempts,
			this.reconnectFailures,
			this.heartbeatRtt,
			this.queueDepth,
		)
	}
	return this
}

//all methods are nil safe so callers may skip metric wiring

func (f *Collector) ObserveTransition(from, to string) {
	if f == nil {
		return
	}
	f.stateTransitions.WithLabelValues(from, to).Inc()
}

func (f *Collector) IncReconnectAttempt() {
	if f == nil {
		return
	}
	f.reconnectAttempts.Inc()
}

func (f *Collector) IncReconnectFailure() {
	if f == nil {
		return
	}
	f.reconnectFailures.Inc()
}

func (f *Collector) ObserveHeartbeatRtt(seconds float64) {
	if f == nil {
		return
	}
	f.heartbeatRtt.Observe(seconds)
}

func (f *Collector) SetQueueDepth(depth int) {
	if f == nil {
		return
	}
	f.queueDepth.Set(float64(depth))
}

// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ConnectionState   prometheus.Gauge
	Reconnects        prometheus.Counter
	SnapshotsReceived prometheus.Counter
	MessagesDiscarded prometheus.Counter
	CommandsSent      prometheus.Counter
	CommandsDropped   prometheus.Counter
	ApplyLatency      prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ConnectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "Push connection state (0 connecting, 1 open, 2 retrying, 3 terminal)",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Total reconnect attempts scheduled",
		}),
		SnapshotsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_received_total",
			Help:      "Total room snapshots applied",
		}),
		MessagesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_discarded_total",
			Help:      "Total inbound frames discarded as malformed",
		}),
		CommandsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_sent_total",
			Help:      "Total outbound commands written",
		}),
		CommandsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_dropped_total",
			Help:      "Total commands dropped because the connection was not open",
		}),
		ApplyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_apply_latency_seconds",
			Help:      "Time from frame receipt to snapshot stored",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.ConnectionState,
		m.Reconnects,
		m.SnapshotsReceived,
		m.MessagesDiscarded,
		m.CommandsSent,
		m.CommandsDropped,
		m.ApplyLatency,
	)

	return m
}

type Monitor struct {
	metrics   *Metrics
	startTime time.Time
	pushCount int64
	mutex     sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())

	// 添加expvar指标
	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("pushes", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.pushCount
	}))

	go http.ListenAndServe(addr, nil)
}

// SetConnectionState 记录当前连接状态
func (m *Monitor) SetConnectionState(state int) {
	if m == nil {
		return
	}
	m.metrics.ConnectionState.Set(float64(state))
}

func (m *Monitor) IncReconnects() {
	if m == nil {
		return
	}
	m.metrics.Reconnects.Inc()
}

func (m *Monitor) IncSnapshotsReceived() {
	if m == nil {
		return
	}
	m.metrics.SnapshotsReceived.Inc()
	m.mutex.Lock()
	m.pushCount++
	m.mutex.Unlock()
}

func (m *Monitor) IncMessagesDiscarded() {
	if m == nil {
		return
	}
	m.metrics.MessagesDiscarded.Inc()
}

func (m *Monitor) IncCommandsSent() {
	if m == nil {
		return
	}
	m.metrics.CommandsSent.Inc()
}

func (m *Monitor) IncCommandsDropped() {
	if m == nil {
		return
	}
	m.metrics.CommandsDropped.Inc()
}

func (m *Monitor) ObserveApplyLatency(duration time.Duration) {
	if m == nil {
		return
	}
	m.metrics.ApplyLatency.Observe(duration.Seconds())
}

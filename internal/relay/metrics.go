package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sakan811/no-kitty-cards-game/internal/protocol"
)

// Metrics are the relay's prometheus collectors, kept on their own registry.
type Metrics struct {
	Registry    *prometheus.Registry
	Rooms       prometheus.Gauge
	Connections prometheus.Gauge
	Frames      *prometheus.CounterVec
	Dropped     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nkc",
			Subsystem: "relay",
			Name:      "rooms",
			Help:      "Open rooms.",
		}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nkc",
			Subsystem: "relay",
			Name:      "connections",
			Help:      "Connected peers.",
		}),
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nkc",
			Subsystem: "relay",
			Name:      "frames_relayed_total",
			Help:      "Frames forwarded between peers, by message type.",
		}, []string{"type"}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nkc",
			Subsystem: "relay",
			Name:      "frames_dropped_total",
			Help:      "Frames not forwarded, by reason.",
		}, []string{"reason"}),
	}
	m.Registry.MustRegister(
		m.Rooms, m.Connections, m.Frames, m.Dropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// frameLabel keeps the type label to protocol message types. Frames are
// client supplied, so anything else is counted as "other".
func frameLabel(typ protocol.MessageType) string {
	if typ.Known() {
		return string(typ)
	}
	return "other"
}

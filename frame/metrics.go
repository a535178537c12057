package frame

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the per-frame Prometheus instruments updated by a Runner.
type Metrics struct {
	Frames         prometheus.Counter
	Actions        *prometheus.CounterVec
	FrameDuration  prometheus.Histogram
	RenderCommands prometheus.Gauge
	Entities       prometheus.Gauge
}

// NewMetrics creates the instruments and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grove_frames_total",
			Help: "Total number of frames stepped",
		}),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grove_actions_total",
				Help: "Total number of actions dispatched from the root",
			},
			[]string{"action"},
		),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grove_frame_duration_seconds",
			Help:    "Wall time spent in one frame step",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
		RenderCommands: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grove_render_commands",
			Help: "Render commands emitted in the last frame",
		}),
		Entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grove_entities",
			Help: "Entities owned by the scene graph",
		}),
	}
	for _, c := range []prometheus.Collector{m.Frames, m.Actions, m.FrameDuration, m.RenderCommands, m.Entities} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

package halbridge

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}

	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "halbridge",
			Name:      "dispatch_total",
			Help:      "Routed requests by route, verb and response status.",
		}, []string{"route", "verb", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "halbridge",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching routed requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "verb"}),
	}

	m.requests = register(reg, m.requests)
	m.duration = register(reg, m.duration)

	return m
}

// register returns the already registered collector when reg has one with the
// same descriptor, so several routers can share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) observe(route string, verb Verb, status Status, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, string(verb), string(status)).Inc()
	m.duration.WithLabelValues(route, string(verb)).Observe(elapsed.Seconds())
}

package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/scalarorg/crosschain-relayer/pkg/events"
)

const namespace = "crosschain_relayer"

// Collector turns stage events into prometheus series.
type Collector struct {
	stages       *prometheus.CounterVec
	inFlight     *prometheus.GaugeVec
	finalityWait *prometheus.HistogramVec

	mu      sync.Mutex
	waiting map[string]events.StageEvent
}

var _ events.Sink = (*Collector)(nil)

func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_transitions_total",
			Help:      "Number of pipeline stage transitions.",
		}, []string{"mode", "stage", "source", "destination"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "awaiting_finality",
			Help:      "Canonical transactions currently waiting for source chain finality.",
		}, []string{"mode", "source"}),
		finalityWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "finality_wait_seconds",
			Help:      "Time between entering the finality wait and the proof being ready.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
		}, []string{"mode", "source"}),
		waiting: make(map[string]events.StageEvent),
	}
	for _, collector := range []prometheus.Collector{c.stages, c.inFlight, c.finalityWait} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) Publish(_ context.Context, event events.StageEvent) {
	c.stages.WithLabelValues(event.Mode, string(event.Stage), event.SourceChain, event.DestinationChain).Inc()
	key := event.TransferID + "/" + event.CanonicalID

	c.mu.Lock()
	defer c.mu.Unlock()
	switch event.Stage {
	case events.StageAwaitingFinality:
		if _, ok := c.waiting[key]; !ok {
			c.waiting[key] = event
			c.inFlight.WithLabelValues(event.Mode, event.SourceChain).Inc()
		}
	case events.StageProofReady, events.StageFailed:
		started, ok := c.waiting[key]
		if !ok {
			return
		}
		delete(c.waiting, key)
		c.inFlight.WithLabelValues(started.Mode, started.SourceChain).Dec()
		if event.Stage == events.StageProofReady {
			c.finalityWait.WithLabelValues(started.Mode, started.SourceChain).
				Observe(event.Timestamp.Sub(started.Timestamp).Seconds())
		}
	}
}

package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lumio_ranking_events_total",
	Help: "Forum stream entries processed by ranking workers",
}, []string{"type", "outcome"})

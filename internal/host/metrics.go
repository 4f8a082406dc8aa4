package host

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"lumio_social/internal/model"
)

var (
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lumio_actions_total",
		Help: "The total number of forum actions by outcome",
	}, []string{"action", "outcome"})

	actionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lumio_action_duration_seconds",
		Help:    "Time spent applying a forum action, lock wait included",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"action"})

	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lumio_event_publish_failures_total",
		Help: "Forum events that could not be published",
	})
)

// outcomeLabel maps an action error to a low-cardinality label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrEmptyContent),
		errors.Is(err, model.ErrContentTooLong),
		errors.Is(err, model.ErrProfileFieldTooLong),
		errors.Is(err, model.ErrInvalidSocialHandle):
		return "invalid"
	case errors.Is(err, model.ErrPostNotFound),
		errors.Is(err, model.ErrCommentNotFound),
		errors.Is(err, model.ErrParentNotFound):
		return "not_found"
	case errors.Is(err, model.ErrNoSession),
		errors.Is(err, model.ErrSessionExpired),
		errors.Is(err, model.ErrActionNotPermitted),
		errors.Is(err, model.ErrKeyMismatch):
		return "unauthorized"
	case errors.Is(err, model.ErrIDSpaceExhausted):
		return "exhausted"
	default:
		return "error"
	}
}

// Package metrics defines and registers the custom Prometheus metrics of the
// social graph API. It is the single source of truth for metric names,
// labels, and help strings. HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "socialgraph"

// ── Entity metrics ────────────────────────────────────────────────────────────

// UsersCreatedTotal counts successfully created users.
var UsersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created.",
	},
)

// ThoughtsCreatedTotal counts thoughts that were inserted and linked to their author.
var ThoughtsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "thoughts_created_total",
		Help:      "Total number of thoughts created and linked to their author.",
	},
)

// ReactionsCreatedTotal counts reactions appended to thoughts.
var ReactionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reactions_created_total",
		Help:      "Total number of reactions added to thoughts.",
	},
)

// ── Protocol metrics ──────────────────────────────────────────────────────────

// CascadeDeletedThoughtsTotal counts thoughts removed by user deletion.
var CascadeDeletedThoughtsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_deleted_thoughts_total",
		Help:      "Total number of thoughts deleted as part of a user deletion cascade.",
	},
)

// ProtocolGapsTotal counts secondary steps that failed after the primary
// write of a deletion protocol had already succeeded.
// Labels:
//   - protocol: e.g. "delete_user", "delete_thought", "remove_friend"
//   - step: the step that failed (e.g. "sweep_thoughts", "author_missing")
var ProtocolGapsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "protocol_gaps_total",
		Help:      "Total number of cross-document links left inconsistent after a deletion.",
	},
	[]string{"protocol", "step"},
)

// CompensationsTotal counts rollbacks of the first write of a creation protocol.
// Labels:
//   - protocol: "create_thought" or "add_friend"
//   - result: "ok" or "failed"
var CompensationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compensations_total",
		Help:      "Total number of compensating writes, labelled by outcome.",
	},
	[]string{"protocol", "result"},
)

// IdempotencyTotal counts Idempotency-Key lookups.
// Label:
//   - result: "hit", "miss", "stale", "mismatch" or "error"
var IdempotencyTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotency_lookups_total",
		Help:      "Total number of idempotency key lookups, labelled by result.",
	},
	[]string{"result"},
)

// Recorder reports service outcomes to the metrics above.
type Recorder struct{}

func (Recorder) UserCreated() { UsersCreatedTotal.Inc() }
func (Recorder) ThoughtCreated() { ThoughtsCreatedTotal.Inc() }
func (Recorder) ReactionAdded() { ReactionsCreatedTotal.Inc() }

func (Recorder) ThoughtsCascaded(n int64) {
	if n > 0 {
		CascadeDeletedThoughtsTotal.Add(float64(n))
	}
}

func (Recorder) ProtocolGap(protocol, step string) {
	ProtocolGapsTotal.WithLabelValues(protocol, step).Inc()
}

func (Recorder) Compensation(protocol, result string) {
	CompensationsTotal.WithLabelValues(protocol, result).Inc()
}

func (Recorder) Idempotency(result string) {
	IdempotencyTotal.WithLabelValues(result).Inc()
}

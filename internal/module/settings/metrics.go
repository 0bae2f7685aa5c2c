package settings

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/simp-lee/touradmin/internal/domain"
)

// Mutation outcome states. Every call starts Received and ends in one of
// Committed, Conflicted or Rejected.
const (
	StateReceived   = "received"
	StateValidated  = "validated"
	StateLoaded     = "loaded"
	StateApplied    = "applied"
	StateCommitted  = "committed"
	StateConflicted = "conflicted"
	StateRejected   = "rejected"
)

// mutationOutcomes counts finished mutations by kind, operation and final state.
var mutationOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "settings_mutations_total",
		Help: "Settings mutations by kind, operation and final state.",
	},
	[]string{"kind", "op", "state"},
)

func init() {
	prometheus.MustRegister(mutationOutcomes)
}

// finalState classifies the error returned by a mutation.
func finalState(err error) string {
	switch {
	case err == nil:
		return StateCommitted
	case domain.IsVersionConflict(err):
		return StateConflicted
	default:
		return StateRejected
	}
}

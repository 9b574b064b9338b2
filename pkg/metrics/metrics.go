package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CartRefreshes counts remote cart fetches by outcome (ok, error, skipped).
	CartRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agencydesk",
		Subsystem: "cart",
		Name:      "refreshes_total",
		Help:      "Cart refresh attempts by outcome.",
	}, []string{"outcome"})

	// CartMutationRollbacks counts optimistic mutations discarded after a remote failure.
	CartMutationRollbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agencydesk",
		Subsystem: "cart",
		Name:      "mutation_rollbacks_total",
		Help:      "Optimistic cart mutations rolled back via refetch.",
	})

	// DeletionSteps counts cascade-deletion step executions by table and outcome.
	DeletionSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agencydesk",
		Subsystem: "deletion",
		Name:      "steps_total",
		Help:      "Cascade deletion step executions by table and outcome.",
	}, []string{"table", "outcome"})
)

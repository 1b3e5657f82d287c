// Package metrics provides application-level counters using stdlib expvar.
// Counters are automatically exported on the /debug/vars HTTP endpoint
// when expvar's handler is mounted in the main binary.
package metrics

import "expvar"

// Operation counters.
var (
	TurnsTotal          = expvar.NewInt("tutor_turns_total")
	FallbackTotal       = expvar.NewInt("tutor_fallback_total")
	OutOfScopeTotal     = expvar.NewInt("tutor_out_of_scope_total")
	LengthRetryTotal    = expvar.NewInt("tutor_length_retry_total")
	RetrievalEmptyTotal = expvar.NewInt("tutor_retrieval_empty_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }

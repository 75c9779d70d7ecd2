// Package problem describes the contract every scheduling problem family exposes to search
// drivers: score a solution and draw a random one.
package problem

import "math/rand"

// Rejected is the objective value returned for any malformed or infeasible solution.
// Drivers minimise the objective, so a rejected solution never beats a feasible one.
const Rejected = 1e9

// Problem is implemented once per problem family. S is the family's solution representation.
//
// Evaluate must be total: it never fails and maps every invalid solution to Rejected.
// RandomSolution must return a well-formed solution; it does not have to be feasible.
type Problem[S any] interface {
	Evaluate(solution S) float64
	RandomSolution(rng *rand.Rand) S
}

// Feasible reports whether v is a real objective value rather than the rejection sentinel.
// Any v >= Rejected counts as rejected, so a genuine makespan of 1e9 or more is reported as
// infeasible even though Evaluate returned its true value.
func Feasible(v float64) bool {
	return v < Rejected
}

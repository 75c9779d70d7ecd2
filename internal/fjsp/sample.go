package fjsp

import (
	"math/rand"

	"flexJobShop/internal/problem"
)

var _ problem.Problem[Schedule] = (*Instance)(nil)

// Sample draws a random well-formed schedule for inst. Jobs are laid out independently: each job
// starts at a random offset in [0, MaxStart/4], every operation runs on a random compatible
// machine (machine 0 if there is none) and is followed by a random idle gap in [0, MaxStart/10].
// Conflicts between jobs sharing a machine are not resolved, so the result is usually infeasible.
//
// rng must not be nil and must not be shared between goroutines.
func Sample(inst *Instance, rng *rand.Rand) Schedule {
	if rng == nil {
		panic("fjsp: random source is nil")
	}
	s := make(Schedule, inst.Jobs)
	for j := 0; j < inst.Jobs; j++ {
		ops := make([]Operation, inst.Operations[j])
		cursor := rng.Intn(inst.MaxStart/4 + 1)
		for o := range ops {
			task := inst.Task(j, o)
			m := 0
			if c := inst.Compatible(task); len(c) > 0 {
				m = c[rng.Intn(len(c))]
			}
			start := cursor
			end := start + inst.Time(task, m)
			ops[o] = Operation{Machine: m, Start: start, End: end}
			cursor = end + rng.Intn(inst.MaxStart/10+1)
		}
		s[j] = ops
	}
	return s
}

// Evaluate implements problem.Problem.
func (inst *Instance) Evaluate(s Schedule) float64 {
	return Evaluate(inst, s)
}

// RandomSolution implements problem.Problem.
func (inst *Instance) RandomSolution(rng *rand.Rand) Schedule {
	return Sample(inst, rng)
}

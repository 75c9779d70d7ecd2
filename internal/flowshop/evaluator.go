package flowshop

import (
	"fmt"
	"math/rand"

	"flexJobShop/internal/fjsp"
	"flexJobShop/internal/problem"
)

var _ problem.Problem[[]int] = (*Instance)(nil)

// Makespan returns the completion time of the last job on the last machine when jobs are
// processed in perm order without idle insertion.
func (inst *Instance) Makespan(perm []int) (int, error) {
	completion, err := inst.completionTimes(perm)
	if err != nil {
		return 0, err
	}
	last := completion[len(completion)-1]
	return last[inst.Machines-1], nil
}

func (inst *Instance) MustMakespan(perm []int) int {
	ms, err := inst.Makespan(perm)
	if err != nil {
		panic(err)
	}
	return ms
}

// Evaluate implements problem.Problem; an invalid permutation scores problem.Rejected.
func (inst *Instance) Evaluate(perm []int) float64 {
	ms, err := inst.Makespan(perm)
	if err != nil {
		return problem.Rejected
	}
	return float64(ms)
}

// RandomSolution implements problem.Problem with a uniform random permutation.
func (inst *Instance) RandomSolution(rng *rand.Rand) []int {
	if rng == nil {
		panic("flowshop: random source is nil")
	}
	return rng.Perm(inst.Jobs)
}

// Schedule expands perm into the semi-active schedule of ToFlexible's instance: operation m of
// every job runs on machine m and starts as soon as both the machine and the job are free.
func (inst *Instance) Schedule(perm []int) (fjsp.Schedule, error) {
	completion, err := inst.completionTimes(perm)
	if err != nil {
		return nil, err
	}
	s := make(fjsp.Schedule, inst.Jobs)
	for pos, job := range perm {
		ops := make([]fjsp.Operation, inst.Machines)
		for m := range ops {
			end := completion[pos][m]
			ops[m] = fjsp.Operation{Machine: m, Start: end - inst.Time(job, m), End: end}
		}
		s[job] = ops
	}
	return s, nil
}

// completionTimes[pos][m] is the completion time of the pos-th job of perm on machine m.
func (inst *Instance) completionTimes(perm []int) ([][]int, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if err := ValidatePermutation(perm, inst.Jobs); err != nil {
		return nil, err
	}

	completion := make([][]int, len(perm))
	prev := make([]int, inst.Machines)
	for pos, job := range perm {
		row := make([]int, inst.Machines)
		row[0] = prev[0] + inst.Time(job, 0)
		for m := 1; m < inst.Machines; m++ {
			row[m] = max(row[m-1], prev[m]) + inst.Time(job, m)
		}
		completion[pos] = row
		prev = row
	}
	return completion, nil
}

// ValidatePermutation checks that perm holds every job id in [0, n) exactly once.
func ValidatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return fmt.Errorf("permutation length must be %d (got %d)", n, len(perm))
	}
	seen := make([]bool, n)
	for i, v := range perm {
		if v < 0 || v >= n {
			return fmt.Errorf("perm[%d]=%d out of range [0,%d)", i, v, n)
		}
		if seen[v] {
			return fmt.Errorf("duplicate job id %d in permutation", v)
		}
		seen[v] = true
	}
	return nil
}

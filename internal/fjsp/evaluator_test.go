package fjsp

import (
	"math"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, path string) *Instance {
	t.Helper()
	inst, err := Load(path)
	require.NoError(t, err)
	return inst
}

// feasibleSmall is a hand-built feasible schedule for testdata/small.fjs with makespan 20.
func feasibleSmall() Schedule {
	return Schedule{
		0: {{Machine: 0, Start: 0, End: 4}, {Machine: 2, Start: 4, End: 7}, {Machine: 0, Start: 7, End: 9}},
		1: {{Machine: 1, Start: 0, End: 4}, {Machine: 2, Start: 7, End: 9}},
		2: {{Machine: 1, Start: 4, End: 7}, {Machine: 0, Start: 9, End: 14}, {Machine: 1, Start: 14, End: 16}},
		3: {{Machine: 2, Start: 0, End: 1}, {Machine: 0, Start: 14, End: 20}},
	}
}

func TestEvaluate_SingleOperation(t *testing.T) {
	inst := mustLoad(t, "testdata/single.fjs")

	assert.Equal(t, 5.0, Evaluate(inst, Schedule{0: {{Machine: 0, Start: 0, End: 5}}}))
	assert.Equal(t, Rejected, Evaluate(inst, Schedule{0: {{Machine: 0, Start: 0, End: 6}}}))
	assert.Equal(t, 1e9, Rejected)
}

func TestEvaluate_SharedMachine(t *testing.T) {
	inst := mustLoad(t, "testdata/shared_machine.fjs")

	overlapping := Schedule{
		0: {{Machine: 0, Start: 0, End: 3}},
		1: {{Machine: 0, Start: 0, End: 3}},
	}
	res := Check(inst, overlapping)
	assert.Equal(t, Rejected, res.Makespan)
	require.NotNil(t, res.Violation)
	assert.Equal(t, ViolationOverlap, res.Violation.Kind)
	assert.Equal(t, 0, res.Violation.Machine)

	shifted := overlapping.Clone()
	shifted[1] = []Operation{{Machine: 0, Start: 3, End: 6}}
	res = Check(inst, shifted)
	assert.True(t, res.Feasible())
	assert.Equal(t, 6.0, res.Makespan)

	// the clone must not alias the original
	assert.Equal(t, 0, overlapping[1][0].Start)
}

func TestEvaluate_Precedence(t *testing.T) {
	inst := mustLoad(t, "testdata/small.fjs")

	s := feasibleSmall()
	s[0][1] = Operation{Machine: 2, Start: 3, End: 6}

	res := Check(inst, s)
	require.NotNil(t, res.Violation)
	assert.Equal(t, ViolationPrecedence, res.Violation.Kind)
	assert.Equal(t, 0, res.Violation.Job)
	assert.Equal(t, 1, res.Violation.Op)
}

func TestEvaluate_Feasible(t *testing.T) {
	inst := mustLoad(t, "testdata/small.fjs")

	res := Check(inst, feasibleSmall())
	require.Nil(t, res.Violation)
	assert.Equal(t, 20.0, res.Makespan)
	assert.NoError(t, Violations(inst, feasibleSmall()))
	assert.Equal(t, 20.0, inst.Evaluate(feasibleSmall()))
}

func TestEvaluate_Idempotent(t *testing.T) {
	inst := mustLoad(t, "testdata/small.fjs")

	for _, s := range []Schedule{feasibleSmall(), Sample(inst, newRand(3)), nil} {
		first := Evaluate(inst, s)
		assert.Equal(t, first, Evaluate(inst, s))
	}
}

func TestCheck_Violations(t *testing.T) {
	tests := map[string]struct {
		mutate   func(s Schedule) Schedule
		expected ViolationKind
	}{
		"nil schedule": {
			mutate:   func(Schedule) Schedule { return nil },
			expected: ViolationShape,
		},
		"missing job": {
			mutate:   func(s Schedule) Schedule { delete(s, 2); return s },
			expected: ViolationShape,
		},
		"too few operations": {
			mutate:   func(s Schedule) Schedule { s[1] = s[1][:1]; return s },
			expected: ViolationShape,
		},
		"too many operations": {
			mutate: func(s Schedule) Schedule {
				s[3] = append(s[3], Operation{Machine: 0, Start: 20, End: 26})
				return s
			},
			expected: ViolationShape,
		},
		"negative machine": {
			mutate:   func(s Schedule) Schedule { s[0][0].Machine = -1; return s },
			expected: ViolationMachine,
		},
		"machine out of range": {
			mutate:   func(s Schedule) Schedule { s[0][0].Machine = 3; return s },
			expected: ViolationMachine,
		},
		"incompatible machine": {
			mutate:   func(s Schedule) Schedule { s[0][1] = Operation{Machine: 0, Start: 4, End: 1_000_004}; return s },
			expected: ViolationIncompatible,
		},
		"end too early": {
			mutate:   func(s Schedule) Schedule { s[3][1].End = 19; return s },
			expected: ViolationDuration,
		},
		"duration of the wrong machine": {
			mutate:   func(s Schedule) Schedule { s[0][0].Machine = 1; return s },
			expected: ViolationDuration,
		},
		"start overflows": {
			mutate: func(s Schedule) Schedule {
				s[3][1] = Operation{Machine: 0, Start: math.MaxInt - 1, End: math.MinInt + 4}
				return s
			},
			expected: ViolationDuration,
		},
		"overlap across jobs": {
			mutate:   func(s Schedule) Schedule { s[3][1] = Operation{Machine: 0, Start: 13, End: 19}; return s },
			expected: ViolationOverlap,
		},
	}
	inst := mustLoad(t, "testdata/small.fjs")
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			res := Check(inst, tc.mutate(feasibleSmall()))
			assert.Equal(t, Rejected, res.Makespan)
			require.NotNil(t, res.Violation)
			assert.Equal(t, tc.expected, res.Violation.Kind)
			assert.False(t, res.Feasible())
		})
	}
}

func TestCheck_TouchingIntervalsAllowed(t *testing.T) {
	inst := mustLoad(t, "testdata/small.fjs")

	// machine 0 already runs [7,9) then [9,14) back to back
	res := Check(inst, feasibleSmall())
	assert.True(t, res.Feasible())
}

func TestCheck_ExtraJobKeysIgnored(t *testing.T) {
	inst := mustLoad(t, "testdata/single.fjs")

	s := Schedule{
		0:  {{Machine: 0, Start: 0, End: 5}},
		7:  {{Machine: 0, Start: 0, End: 5}},
		-1: nil,
	}
	assert.Equal(t, 5.0, Evaluate(inst, s))
}

func TestEvaluate_NegativeTimes(t *testing.T) {
	inst := mustLoad(t, "testdata/single.fjs")

	s := Schedule{0: {{Machine: 0, Start: -10, End: -5}}}
	res := Check(inst, s)
	require.True(t, res.Feasible())
	assert.Equal(t, -5.0, res.Makespan)
}

func TestEvaluate_NoOperations(t *testing.T) {
	inst, err := NewInstance(2, [][][]Alternative{{}, {}})
	require.NoError(t, err)

	assert.Equal(t, 0.0, Evaluate(inst, Schedule{0: nil, 1: {}}))
}

func TestEvaluate_NoCompatibleMachine(t *testing.T) {
	inst := mustLoad(t, "testdata/no_machine.fjs")

	for m := 0; m < inst.Machines; m++ {
		s := Schedule{
			0: {{Machine: 0, Start: 0, End: 4}, {Machine: m, Start: 4, End: 4 + Incompatible}},
			1: {{Machine: 1, Start: 0, End: 2}},
		}
		res := Check(inst, s)
		require.NotNil(t, res.Violation)
		assert.Equal(t, ViolationIncompatible, res.Violation.Kind)
	}
}

func TestEvaluate_UsesParsedTimes(t *testing.T) {
	inst := mustLoad(t, "testdata/small.fjs")

	for j, tasks := range inst.JobTasks {
		for o, task := range tasks {
			for m := 0; m < inst.Machines; m++ {
				p := inst.ProcTimes[task][m]
				s := feasibleSmall()
				prevEnd := 0
				if o > 0 {
					prevEnd = s[j][o-1].End
				}
				// move the operation far to the right so only its own fields matter
				start := 1000 + prevEnd
				s[j][o] = Operation{Machine: m, Start: start, End: start + p}
				for k := o + 1; k < len(s[j]); k++ {
					op := s[j][k]
					shift := 100000 - op.Start + 10*k
					s[j][k] = Operation{Machine: op.Machine, Start: op.Start + shift, End: op.End + shift}
				}

				res := Check(inst, s)
				if p == Incompatible {
					assert.Equal(t, Rejected, res.Makespan, "job %d op %d machine %d", j, o, m)
					require.NotNil(t, res.Violation)
					assert.Equal(t, ViolationIncompatible, res.Violation.Kind)
					continue
				}
				if res.Violation != nil {
					assert.NotEqual(t, ViolationDuration, res.Violation.Kind, "job %d op %d machine %d", j, o, m)
					assert.NotEqual(t, ViolationIncompatible, res.Violation.Kind, "job %d op %d machine %d", j, o, m)
				}
			}
		}
	}
}

func TestViolations_CollectsAll(t *testing.T) {
	inst := mustLoad(t, "testdata/small.fjs")

	s := feasibleSmall()
	s[0][0].End = 3
	s[1][1].Machine = 1
	delete(s, 3)

	err := Violations(inst, s)
	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)

	var kinds []ViolationKind
	for _, e := range merr.Errors {
		v, ok := e.(*Violation)
		require.True(t, ok)
		kinds = append(kinds, v.Kind)
	}
	assert.Equal(t, []ViolationKind{ViolationDuration, ViolationIncompatible, ViolationShape}, kinds)
}

func TestViolations_Overlaps(t *testing.T) {
	inst := mustLoad(t, "testdata/shared_machine.fjs")

	err := Violations(inst, Schedule{
		0: {{Machine: 0, Start: 0, End: 3}},
		1: {{Machine: 0, Start: 2, End: 5}},
	})
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 1)
	assert.Equal(t, ViolationOverlap, merr.Errors[0].(*Violation).Kind)
}

func TestEvaluator(t *testing.T) {
	inst := mustLoad(t, "testdata/single.fjs")

	e, err := NewEvaluator(inst)
	require.NoError(t, err)
	assert.Equal(t, 5.0, e.Evaluate(Schedule{0: {{Machine: 0, Start: 0, End: 5}}}))
	assert.Equal(t, ViolationDuration, e.Check(Schedule{0: {{Machine: 0, Start: 1, End: 5}}}).Violation.Kind)
	assert.NoError(t, e.Violations(Schedule{0: {{Machine: 0, Start: 0, End: 5}}}))
	assert.Error(t, e.Violations(Schedule{}))

	_, err = NewEvaluator(&Instance{})
	assert.Error(t, err)

	var nilEval *Evaluator
	assert.Equal(t, Rejected, nilEval.Evaluate(Schedule{}))
	assert.Equal(t, ViolationShape, nilEval.Check(Schedule{}).Violation.Kind)
}

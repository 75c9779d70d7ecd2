package fjsp

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/slices"

	"flexJobShop/internal/problem"
)

// Rejected is returned by Evaluate for every malformed or infeasible schedule.
const Rejected = problem.Rejected

// ViolationKind classifies why a schedule was rejected.
type ViolationKind string

const (
	ViolationShape        ViolationKind = "shape"
	ViolationMachine      ViolationKind = "machine"
	ViolationIncompatible ViolationKind = "incompatible"
	ViolationDuration     ViolationKind = "duration"
	ViolationPrecedence   ViolationKind = "precedence"
	ViolationOverlap      ViolationKind = "overlap"
)

// Violation describes one broken constraint. Job, Op and Machine are -1 when not applicable.
type Violation struct {
	Kind    ViolationKind
	Job     int
	Op      int
	Machine int
	Msg     string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Msg)
}

func violation(kind ViolationKind, job, op, machine int, format string, args ...any) *Violation {
	return &Violation{Kind: kind, Job: job, Op: op, Machine: machine, Msg: fmt.Sprintf(format, args...)}
}

// Result is the outcome of Check. Makespan is Rejected exactly when Violation is non-nil.
type Result struct {
	Makespan  float64
	Violation *Violation
}

// Feasible reports whether the checked schedule satisfied every constraint.
func (r Result) Feasible() bool {
	return r.Violation == nil
}

// Evaluator scores schedules against one instance. It holds no mutable state and is safe
// for concurrent use.
type Evaluator struct {
	inst *Instance
}

// NewEvaluator validates inst once so callers scoring many schedules fail early on a broken instance.
func NewEvaluator(inst *Instance) (*Evaluator, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{inst: inst}, nil
}

// Evaluate returns the makespan of s, or Rejected if s is malformed or infeasible.
func (e *Evaluator) Evaluate(s Schedule) float64 {
	if e == nil {
		return Rejected
	}
	return Evaluate(e.inst, s)
}

// Check is Evaluate plus the first violation found.
func (e *Evaluator) Check(s Schedule) Result {
	if e == nil {
		return Check(nil, s)
	}
	return Check(e.inst, s)
}

// Violations is the package-level Violations bound to the evaluator's instance.
func (e *Evaluator) Violations(s Schedule) error {
	if e == nil {
		return Violations(nil, s)
	}
	return Violations(e.inst, s)
}

// Evaluate returns the makespan of s on inst, or Rejected if s is malformed or infeasible.
// It never panics on schedule content.
func Evaluate(inst *Instance, s Schedule) float64 {
	return Check(inst, s).Makespan
}

// Check validates s against inst, stopping at the first violation. Checks run in this order:
// shape, per-operation machine and duration, precedence inside each job, no overlap per machine.
func Check(inst *Instance, s Schedule) Result {
	if v := checkOperations(inst, s, nil); v != nil {
		return Result{Makespan: Rejected, Violation: v}
	}
	if v := checkMachines(inst, s, nil); v != nil {
		return Result{Makespan: Rejected, Violation: v}
	}

	// schedules may sit entirely before time 0, so the maximum is not floored
	makespan, seen := 0, false
	for j := 0; j < inst.Jobs; j++ {
		for _, op := range s[j] {
			if !seen || op.End > makespan {
				makespan, seen = op.End, true
			}
		}
	}
	return Result{Makespan: float64(makespan)}
}

// Violations returns every violation in s as a *multierror.Error of *Violation, or nil when s
// is feasible. Job keys outside [0, Jobs) are ignored. Overlaps are only reported once every
// operation is individually valid.
func Violations(inst *Instance, s Schedule) error {
	var result *multierror.Error
	report := func(v *Violation) {
		result = multierror.Append(result, v)
	}
	if checkOperations(inst, s, report) == nil && result == nil {
		checkMachines(inst, s, report)
	}
	return result.ErrorOrNil()
}

// checkOperations covers shape, machine, duration and precedence checks. When report is nil it
// returns the first violation; otherwise every violation is passed to report and checking goes
// on as far as the schedule shape allows.
func checkOperations(inst *Instance, s Schedule, report func(*Violation)) *Violation {
	emit := func(v *Violation) *Violation {
		if report == nil {
			return v
		}
		report(v)
		return nil
	}

	if inst == nil {
		return emit(violation(ViolationShape, -1, -1, -1, "no instance"))
	}
	if s == nil {
		return emit(violation(ViolationShape, -1, -1, -1, "schedule is nil"))
	}

	for j := 0; j < inst.Jobs; j++ {
		ops, ok := s[j]
		if !ok {
			if v := emit(violation(ViolationShape, j, -1, -1, "job %d missing", j)); v != nil {
				return v
			}
			continue
		}
		if len(ops) != inst.Operations[j] {
			if v := emit(violation(ViolationShape, j, -1, -1, "job %d has %d operations, want %d", j, len(ops), inst.Operations[j])); v != nil {
				return v
			}
			continue
		}
		for o, op := range ops {
			if v := checkOperation(inst, j, o, op); v != nil {
				if v = emit(v); v != nil {
					return v
				}
				continue
			}
			if o > 0 && op.Start < ops[o-1].End {
				v := violation(ViolationPrecedence, j, o, op.Machine,
					"job %d operation %d starts at %d before operation %d ends at %d", j, o, op.Start, o-1, ops[o-1].End)
				if v = emit(v); v != nil {
					return v
				}
			}
		}
	}
	return nil
}

func checkOperation(inst *Instance, j, o int, op Operation) *Violation {
	if op.Machine < 0 || op.Machine >= inst.Machines {
		return violation(ViolationMachine, j, o, op.Machine, "job %d operation %d: machine %d out of range [0,%d)", j, o, op.Machine, inst.Machines)
	}
	p := inst.Time(inst.Task(j, o), op.Machine)
	if p == Incompatible {
		return violation(ViolationIncompatible, j, o, op.Machine, "job %d operation %d cannot run on machine %d", j, o, op.Machine)
	}
	if op.Start > math.MaxInt-p || op.End != op.Start+p {
		return violation(ViolationDuration, j, o, op.Machine,
			"job %d operation %d on machine %d: end %d, want start %d + %d", j, o, op.Machine, op.End, op.Start, p)
	}
	return nil
}

type interval struct {
	job, op    int
	start, end int
}

// checkMachines assumes checkOperations found nothing, so every operation uses an in-range machine.
func checkMachines(inst *Instance, s Schedule, report func(*Violation)) *Violation {
	byMachine := make([][]interval, inst.Machines)
	for j := 0; j < inst.Jobs; j++ {
		for o, op := range s[j] {
			byMachine[op.Machine] = append(byMachine[op.Machine], interval{job: j, op: o, start: op.Start, end: op.End})
		}
	}
	for m, ivs := range byMachine {
		slices.SortFunc(ivs, func(a, b interval) bool {
			if a.start != b.start {
				return a.start < b.start
			}
			return a.end < b.end
		})
		for i := 0; i+1 < len(ivs); i++ {
			cur, next := ivs[i], ivs[i+1]
			if cur.end <= next.start {
				continue
			}
			v := violation(ViolationOverlap, next.job, next.op, m,
				"machine %d: job %d operation %d [%d,%d) overlaps job %d operation %d [%d,%d)",
				m, cur.job, cur.op, cur.start, cur.end, next.job, next.op, next.start, next.end)
			if report == nil {
				return v
			}
			report(v)
		}
	}
	return nil
}

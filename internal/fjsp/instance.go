// Package fjsp models the flexible job shop scheduling problem: parsing instances,
// scoring candidate schedules and drawing random ones.
package fjsp

import (
	"github.com/pkg/errors"
)

// Incompatible is the processing time recorded for a (task, machine) pair the machine cannot run.
// It is finite so min/max arithmetic over rows needs no special case.
const Incompatible = 1_000_000

// MaxMachines bounds the machine count of an instance. Every task stores one processing time
// per machine, so the tables grow with tasks times machines.
const MaxMachines = 10_000

// Alternative is one machine able to run an operation, with its processing time.
// Machine is 0-based.
type Alternative struct {
	Machine int
	Time    int
}

// Instance is an immutable FJSP instance. Tasks are numbered job by job, operation by operation.
type Instance struct {
	Jobs     int
	Machines int
	Tasks    int
	// ProcTimes[task][machine]; Incompatible marks machines that cannot run the task.
	ProcTimes [][]int
	// JobTasks[job][op] is the global task id of that operation.
	JobTasks [][]int
	// Operations[job] is the number of operations of the job.
	Operations []int
	// MaxStart is the sum over tasks of their largest compatible processing time.
	MaxStart int

	compatible [][]int
}

// NewInstance builds an instance from per-job, per-operation machine alternatives.
// An operation without alternatives is allowed; it can never be scheduled feasibly.
// A machine listed twice for the same operation keeps the last time.
func NewInstance(machines int, jobs [][][]Alternative) (*Instance, error) {
	if machines <= 0 || machines > MaxMachines {
		return nil, errors.Errorf("machines must be in [1,%d] (got %d)", MaxMachines, machines)
	}
	if len(jobs) == 0 {
		return nil, errors.New("instance must have at least one job")
	}

	inst := &Instance{
		Jobs:       len(jobs),
		Machines:   machines,
		JobTasks:   make([][]int, len(jobs)),
		Operations: make([]int, len(jobs)),
	}
	for j, ops := range jobs {
		inst.Operations[j] = len(ops)
		inst.Tasks += len(ops)
	}
	inst.ProcTimes = make([][]int, 0, inst.Tasks)

	task := 0
	for j, ops := range jobs {
		tasks := make([]int, len(ops))
		for o, alts := range ops {
			row := make([]int, machines)
			for m := range row {
				row[m] = Incompatible
			}
			for _, a := range alts {
				if a.Machine < 0 || a.Machine >= machines {
					return nil, errors.Errorf("job %d operation %d: machine %d out of range [0,%d)", j, o, a.Machine, machines)
				}
				if a.Time < 0 || a.Time >= Incompatible {
					return nil, errors.Errorf("job %d operation %d: processing time %d out of range [0,%d)", j, o, a.Time, Incompatible)
				}
				row[a.Machine] = a.Time
			}
			inst.ProcTimes = append(inst.ProcTimes, row)
			tasks[o] = task
			task++
		}
		inst.JobTasks[j] = tasks
	}

	inst.compatible = make([][]int, inst.Tasks)
	for t, row := range inst.ProcTimes {
		longest := 0
		for m, p := range row {
			if p == Incompatible {
				continue
			}
			inst.compatible[t] = append(inst.compatible[t], m)
			if p > longest {
				longest = p
			}
		}
		inst.MaxStart += longest
	}
	return inst, nil
}

// Validate checks that the tables of inst are consistent with each other.
func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	if inst.Jobs <= 0 {
		return errors.Errorf("jobs must be > 0 (got %d)", inst.Jobs)
	}
	if inst.Machines <= 0 {
		return errors.Errorf("machines must be > 0 (got %d)", inst.Machines)
	}
	if len(inst.JobTasks) != inst.Jobs || len(inst.Operations) != inst.Jobs {
		return errors.Errorf("job tables must have %d entries", inst.Jobs)
	}
	if len(inst.ProcTimes) != inst.Tasks || len(inst.compatible) != inst.Tasks {
		return errors.Errorf("task tables must have %d entries", inst.Tasks)
	}
	total := 0
	for j, tasks := range inst.JobTasks {
		if len(tasks) != inst.Operations[j] {
			return errors.Errorf("job %d: %d task ids for %d operations", j, len(tasks), inst.Operations[j])
		}
		for o, t := range tasks {
			if t != total {
				return errors.Errorf("job %d operation %d: task id %d, want %d", j, o, t, total)
			}
			total++
		}
	}
	for t, row := range inst.ProcTimes {
		if len(row) != inst.Machines {
			return errors.Errorf("task %d: %d processing times for %d machines", t, len(row), inst.Machines)
		}
	}
	return nil
}

// Task returns the global task id of operation op of job.
func (inst *Instance) Task(job, op int) int {
	return inst.JobTasks[job][op]
}

// Time returns the processing time of task on machine, Incompatible if the machine cannot run it.
func (inst *Instance) Time(task, machine int) int {
	return inst.ProcTimes[task][machine]
}

// Compatible returns the machines able to run task in increasing order.
// The slice is shared and must not be modified.
func (inst *Instance) Compatible(task int) []int {
	return inst.compatible[task]
}

// Flexibility returns the mean number of compatible machines per task.
func (inst *Instance) Flexibility() float64 {
	if inst.Tasks == 0 {
		return 0
	}
	n := 0
	for _, c := range inst.compatible {
		n += len(c)
	}
	return float64(n) / float64(inst.Tasks)
}

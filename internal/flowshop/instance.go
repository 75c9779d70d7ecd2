// Package flowshop is the permutation flow shop: every job visits machines 0..M-1 in order and
// a solution is the job order shared by all machines.
package flowshop

import (
	"errors"
	"fmt"
	"math/rand"

	"flexJobShop/internal/fjsp"
)

type Instance struct {
	Jobs     int
	Machines int
	// ProcTimes length must be Jobs*Machines.
	ProcTimes []int
}

func NewInstance(jobs, machines int, procTimes []int) (*Instance, error) {
	inst := &Instance{Jobs: jobs, Machines: machines, ProcTimes: procTimes}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	if inst.Jobs <= 0 {
		return fmt.Errorf("jobs must be > 0 (got %d)", inst.Jobs)
	}
	if inst.Machines <= 0 {
		return fmt.Errorf("machines must be > 0 (got %d)", inst.Machines)
	}
	if len(inst.ProcTimes) != inst.Jobs*inst.Machines {
		return fmt.Errorf("procTimes length must be jobs*machines=%d (got %d)", inst.Jobs*inst.Machines, len(inst.ProcTimes))
	}
	for i, v := range inst.ProcTimes {
		if v < 0 || v >= fjsp.Incompatible {
			return fmt.Errorf("procTimes[%d] must be in [0,%d) (got %d)", i, fjsp.Incompatible, v)
		}
	}
	return nil
}

func (inst *Instance) Time(job, machine int) int {
	return inst.ProcTimes[job*inst.Machines+machine]
}

// ToFlexible returns the equivalent flexible job shop instance: job j has one operation per
// machine, operation m running only on machine m.
func (inst *Instance) ToFlexible() (*fjsp.Instance, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	jobs := make([][][]fjsp.Alternative, inst.Jobs)
	for j := range jobs {
		ops := make([][]fjsp.Alternative, inst.Machines)
		for m := range ops {
			ops[m] = []fjsp.Alternative{{Machine: m, Time: inst.Time(j, m)}}
		}
		jobs[j] = ops
	}
	return fjsp.NewInstance(inst.Machines, jobs)
}

func RandomInstance(jobs, machines, minTime, maxTime int, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("flowshop: random source is nil")
	}
	if minTime < 0 || maxTime < 0 || maxTime < minTime {
		panic("invalid time bounds")
	}
	pt := make([]int, jobs*machines)
	span := maxTime - minTime + 1
	for i := range pt {
		pt[i] = minTime
		if span > 1 {
			pt[i] += rng.Intn(span)
		}
	}
	inst, err := NewInstance(jobs, machines, pt)
	if err != nil {
		panic(err)
	}
	return inst
}

package fjsp

import (
	"math/rand"

	"github.com/pkg/errors"
)

// GenConfig parameterises RandomInstance.
type GenConfig struct {
	Jobs     int
	Machines int
	// Every job gets a uniform number of operations in [MinOps, MaxOps].
	MinOps int
	MaxOps int
	// Every operation gets a uniform number of distinct compatible machines in [1, Flexibility].
	Flexibility int
	// Processing times are uniform in [MinTime, MaxTime].
	MinTime int
	MaxTime int
}

func (c GenConfig) Validate() error {
	if c.Jobs <= 0 {
		return errors.Errorf("jobs must be > 0 (got %d)", c.Jobs)
	}
	if c.Machines <= 0 || c.Machines > MaxMachines {
		return errors.Errorf("machines must be in [1,%d] (got %d)", MaxMachines, c.Machines)
	}
	if c.MinOps < 1 || c.MaxOps < c.MinOps {
		return errors.Errorf("operations per job must satisfy 1 <= min <= max (got [%d,%d])", c.MinOps, c.MaxOps)
	}
	if c.Flexibility < 1 || c.Flexibility > c.Machines {
		return errors.Errorf("flexibility must be in [1,%d] (got %d)", c.Machines, c.Flexibility)
	}
	if c.MinTime < 0 || c.MaxTime < c.MinTime || c.MaxTime >= Incompatible {
		return errors.Errorf("processing times must satisfy 0 <= min <= max < %d (got [%d,%d])", Incompatible, c.MinTime, c.MaxTime)
	}
	return nil
}

// DefaultGenConfig returns a Brandimarte-sized configuration for the given shop.
func DefaultGenConfig(jobs, machines int) GenConfig {
	flex := min(3, machines)
	return GenConfig{
		Jobs:        jobs,
		Machines:    machines,
		MinOps:      max(1, machines/2),
		MaxOps:      machines,
		Flexibility: flex,
		MinTime:     1,
		MaxTime:     20,
	}
}

// RandomInstance generates an instance from cfg. It panics on a nil rng or an invalid cfg.
func RandomInstance(cfg GenConfig, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("fjsp: random source is nil")
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	span := cfg.MaxTime - cfg.MinTime + 1
	jobs := make([][][]Alternative, cfg.Jobs)
	for j := range jobs {
		ops := make([][]Alternative, cfg.MinOps+rng.Intn(cfg.MaxOps-cfg.MinOps+1))
		for o := range ops {
			k := 1 + rng.Intn(cfg.Flexibility)
			machines := rng.Perm(cfg.Machines)[:k]
			alts := make([]Alternative, k)
			for i, m := range machines {
				alts[i] = Alternative{Machine: m, Time: cfg.MinTime + rng.Intn(span)}
			}
			ops[o] = alts
		}
		jobs[j] = ops
	}

	inst, err := NewInstance(cfg.Machines, jobs)
	if err != nil {
		panic(err)
	}
	return inst
}

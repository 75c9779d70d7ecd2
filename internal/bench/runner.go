package bench

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"flexJobShop/internal/fjsp"
	"flexJobShop/internal/flowshop"
	"flexJobShop/internal/metrics"
	"flexJobShop/internal/problem"
)

type Family string

const (
	FamilyFJSP     Family = "fjsp"
	FamilyFlowShop Family = "flowshop"
)

// Case is one instance to sample. When Path is empty a random instance of Jobs x Machines is
// generated from InstanceSeed.
type Case struct {
	Name         string
	Family       Family
	Path         string
	Jobs         int
	Machines     int
	InstanceSeed int64
}

func (c Case) Validate() error {
	switch c.Family {
	case FamilyFJSP:
	case FamilyFlowShop:
		if c.Path != "" {
			return errors.Errorf("case %q: flowshop instances cannot be loaded from a file", c.Name)
		}
	default:
		return errors.Errorf("case %q: unknown problem family %q", c.Name, c.Family)
	}
	if c.Path == "" && (c.Jobs <= 0 || c.Machines <= 0) {
		return errors.Errorf("case %q: jobs and machines must be > 0 (got %dx%d)", c.Name, c.Jobs, c.Machines)
	}
	return nil
}

type Record struct {
	BatchID  string
	Case     string
	Family   Family
	Jobs     int
	Machines int
	Tasks    int
	Runs     int
	Samples  int

	FeasibleRateMean float64
	FeasibleRateStd  float64

	// Best feasible makespan over all runs, -1 if no run found one. Mean and Std are taken
	// over the per-run bests of runs that found one.
	MakespanBest int
	MakespanMean float64
	MakespanStd  float64

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64
}

type Runner struct {
	Runs          int
	Samples       int
	BaseSeed      int64
	Parallelism   int           // 0 = one goroutine per run
	PerRunTimeout time.Duration // 0 = no timeout
	Loader        fjsp.Loader
	Metrics       *metrics.Metrics
}

func (r Runner) Validate() error {
	if r.Runs <= 0 {
		return errors.Errorf("runs must be > 0 (got %d)", r.Runs)
	}
	if r.Samples <= 0 {
		return errors.Errorf("samples must be > 0 (got %d)", r.Samples)
	}
	if r.Parallelism < 0 {
		return errors.Errorf("parallelism must be >= 0 (got %d)", r.Parallelism)
	}
	if r.PerRunTimeout < 0 {
		return errors.Errorf("per run timeout must be >= 0 (got %s)", r.PerRunTimeout)
	}
	return nil
}

// RunCase builds the case instance and runs Runs independent sampling runs on it. Run i draws
// Samples random solutions from a generator seeded with BaseSeed+i.
func (r Runner) RunCase(ctx context.Context, c Case) (Record, error) {
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	if err := c.Validate(); err != nil {
		return Record{}, err
	}

	rec := Record{Case: c.Name, Family: c.Family, Runs: r.Runs, Samples: r.Samples}
	switch c.Family {
	case FamilyFlowShop:
		inst := flowshop.RandomInstance(c.Jobs, c.Machines, 1, 99, randForSeed(c.InstanceSeed))
		rec.Jobs, rec.Machines, rec.Tasks = inst.Jobs, inst.Machines, inst.Jobs*inst.Machines
		return runSampling(ctx, r, rec, metrics.Instrument[[]int](r.Metrics, string(c.Family), inst))
	default:
		inst, err := r.fjspInstance(c)
		if err != nil {
			return Record{}, err
		}
		rec.Jobs, rec.Machines, rec.Tasks = inst.Jobs, inst.Machines, inst.Tasks
		return runSampling(ctx, r, rec, metrics.Instrument[fjsp.Schedule](r.Metrics, string(c.Family), inst))
	}
}

func (r Runner) fjspInstance(c Case) (*fjsp.Instance, error) {
	if c.Path != "" {
		return r.Loader.Load(c.Path)
	}
	cfg := fjsp.DefaultGenConfig(c.Jobs, c.Machines)
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "case %q", c.Name)
	}
	return fjsp.RandomInstance(cfg, randForSeed(c.InstanceSeed)), nil
}

type runResult struct {
	feasible int
	best     int
	duration time.Duration
}

func runSampling[S any](ctx context.Context, r Runner, rec Record, p problem.Problem[S]) (Record, error) {
	rec.BatchID = uuid.NewString()
	logger := log.WithFields(log.Fields{"case": rec.Case, "family": rec.Family, "batchId": rec.BatchID})

	results := make([]runResult, r.Runs)
	g, gctx := errgroup.WithContext(ctx)
	if r.Parallelism > 0 {
		g.SetLimit(r.Parallelism)
	}
	for i := 0; i < r.Runs; i++ {
		i := i
		g.Go(func() error {
			runCtx := gctx
			cancel := func() {}
			if r.PerRunTimeout > 0 {
				runCtx, cancel = context.WithTimeout(gctx, r.PerRunTimeout)
			}
			defer cancel()

			res, err := sampleRun(runCtx, p, randForSeed(r.BaseSeed+int64(i)), r.Samples)
			if err != nil {
				return errors.WithMessagef(err, "run %d: cancelled/timeout", i)
			}
			results[i] = res
			logger.WithFields(log.Fields{"run": i, "feasible": res.feasible, "best": res.best}).Debug("run finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Record{}, err
	}

	rates := make([]float64, 0, r.Runs)
	bests := make([]int, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)
	for _, res := range results {
		rates = append(rates, float64(res.feasible)/float64(r.Samples))
		if res.best >= 0 {
			bests = append(bests, res.best)
		}
		timesMs = append(timesMs, float64(res.duration.Microseconds())/1000.0)
	}

	rateStats := CalcFloatStats(rates)
	msStats := CalcIntStats(bests)
	tStats := CalcFloatStats(timesMs)

	rec.FeasibleRateMean = rateStats.Mean
	rec.FeasibleRateStd = rateStats.Std
	rec.MakespanBest = -1
	if msStats.N > 0 {
		rec.MakespanBest = msStats.Best
	}
	rec.MakespanMean = msStats.Mean
	rec.MakespanStd = msStats.Std
	rec.TimeBestMs = tStats.Best
	rec.TimeMeanMs = tStats.Mean
	rec.TimeStdMs = tStats.Std

	logger.WithFields(log.Fields{
		"feasibleRate": rec.FeasibleRateMean,
		"makespanBest": rec.MakespanBest,
	}).Info("case finished")
	return rec, nil
}

// sampleRun draws n solutions and keeps the best feasible makespan, -1 if none was feasible.
func sampleRun[S any](ctx context.Context, p problem.Problem[S], rng *rand.Rand, n int) (runResult, error) {
	start := time.Now()
	res := runResult{best: -1}
	for k := 0; k < n; k++ {
		if k%256 == 0 {
			if err := ctx.Err(); err != nil {
				return res, errors.WithStack(err)
			}
		}
		v := p.Evaluate(p.RandomSolution(rng))
		if !problem.Feasible(v) {
			continue
		}
		res.feasible++
		if ms := int(v); res.best < 0 || ms < res.best {
			res.best = ms
		}
	}
	res.duration = time.Since(start)
	return res, nil
}

func randForSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

package bench

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexJobShop/internal/fjsp"
	"flexJobShop/internal/metrics"
)

func testRunner() Runner {
	return Runner{
		Runs:        4,
		Samples:     200,
		BaseSeed:    1000,
		Parallelism: 2,
		Loader:      fjsp.Loader{BaseDir: filepath.Join("..", "fjsp", "testdata")},
	}
}

func TestRunCase_File(t *testing.T) {
	r := testRunner()
	c := Case{Name: "small", Family: FamilyFJSP, Path: "small.fjs"}

	rec, err := r.RunCase(context.Background(), c)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.BatchID)
	assert.Equal(t, "small", rec.Case)
	assert.Equal(t, 4, rec.Jobs)
	assert.Equal(t, 3, rec.Machines)
	assert.Equal(t, 10, rec.Tasks)
	assert.Equal(t, 4, rec.Runs)
	assert.Equal(t, 200, rec.Samples)
	assert.GreaterOrEqual(t, rec.FeasibleRateMean, 0.0)
	assert.Less(t, rec.FeasibleRateMean, 1.0)
	if rec.MakespanBest >= 0 {
		// no schedule of small.fjs can beat the longest job chain of minimum times
		assert.GreaterOrEqual(t, rec.MakespanBest, 9)
	}

	again, err := r.RunCase(context.Background(), c)
	require.NoError(t, err)
	assert.NotEqual(t, rec.BatchID, again.BatchID)
	assert.Equal(t, rec.FeasibleRateMean, again.FeasibleRateMean)
	assert.Equal(t, rec.MakespanBest, again.MakespanBest)
}

func TestRunCase_NoFeasibleSchedule(t *testing.T) {
	r := testRunner()
	rec, err := r.RunCase(context.Background(), Case{Name: "broken", Family: FamilyFJSP, Path: "no_machine.fjs"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, rec.FeasibleRateMean)
	assert.Equal(t, -1, rec.MakespanBest)
}

func TestRunCase_Generated(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	r := testRunner()
	r.Metrics = m

	rec, err := r.RunCase(context.Background(), Case{Name: "flow", Family: FamilyFlowShop, Jobs: 6, Machines: 3, InstanceSeed: 7})
	require.NoError(t, err)
	assert.Equal(t, 1.0, rec.FeasibleRateMean)
	assert.Equal(t, 0.0, rec.FeasibleRateStd)
	assert.Positive(t, rec.MakespanBest)
	assert.Equal(t, 18, rec.Tasks)

	rec, err = r.RunCase(context.Background(), Case{Name: "flex", Family: FamilyFJSP, Jobs: 5, Machines: 4, InstanceSeed: 7})
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Jobs)
	assert.Equal(t, 4, rec.Machines)

	families, err := reg.Gather()
	require.NoError(t, err)
	samples := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "fjsp_samples_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			samples[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"flowshop": 800, "fjsp": 800}, samples)
}

func TestRunCase_Invalid(t *testing.T) {
	tests := map[string]struct {
		runner Runner
		c      Case
	}{
		"unknown family":     {runner: testRunner(), c: Case{Name: "x", Family: "openshop", Jobs: 2, Machines: 2}},
		"flowshop from file": {runner: testRunner(), c: Case{Name: "x", Family: FamilyFlowShop, Path: "small.fjs"}},
		"no size":            {runner: testRunner(), c: Case{Name: "x", Family: FamilyFJSP}},
		"missing file":       {runner: testRunner(), c: Case{Name: "x", Family: FamilyFJSP, Path: "missing.fjs"}},
		"no runs":            {runner: Runner{Samples: 1}, c: Case{Name: "x", Family: FamilyFJSP, Jobs: 1, Machines: 1}},
		"no samples":         {runner: Runner{Runs: 1}, c: Case{Name: "x", Family: FamilyFJSP, Jobs: 1, Machines: 1}},
		"negative parallel":  {runner: Runner{Runs: 1, Samples: 1, Parallelism: -1}, c: Case{Name: "x", Family: FamilyFJSP, Jobs: 1, Machines: 1}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tc.runner.RunCase(context.Background(), tc.c)
			assert.Error(t, err)
		})
	}
}

func TestRunCase_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testRunner().RunCase(ctx, Case{Name: "small", Family: FamilyFJSP, Path: "small.fjs"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunCase_Timeout(t *testing.T) {
	r := testRunner()
	r.Samples = 1 << 30
	r.PerRunTimeout = 10 * time.Millisecond

	_, err := r.RunCase(context.Background(), Case{Name: "small", Family: FamilyFJSP, Path: "small.fjs"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "samples.csv")
	records := []Record{{
		BatchID: "b1", Case: "small", Family: FamilyFJSP, Jobs: 4, Machines: 3, Tasks: 10, Runs: 2, Samples: 5,
		FeasibleRateMean: 0.5, MakespanBest: 20, MakespanMean: 21.5,
	}}
	require.NoError(t, WriteCSV(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "batch_id", rows[0][0])
	assert.Equal(t, []string{"b1", "small", "fjsp", "4", "3", "10", "2", "5"}, rows[1][:8])
	assert.Equal(t, "0.500000", rows[1][8])
	assert.Equal(t, "20", rows[1][10])
}

func TestWriteCSV_CurrentDir(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	require.NoError(t, WriteCSV("samples.csv", nil))
	_, err = os.Stat(filepath.Join(dir, "samples.csv"))
	assert.NoError(t, err)
}

package bench

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

func WriteCSV(path string, records []Record) error {
	if dir := dirOf(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WithStack(err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{
		"batch_id", "case", "family", "jobs", "machines", "tasks", "runs", "samples",
		"feasible_rate_mean", "feasible_rate_std",
		"makespan_best", "makespan_mean", "makespan_std",
		"time_best_ms", "time_mean_ms", "time_std_ms",
	}
	if err := w.Write(header); err != nil {
		return errors.WithStack(err)
	}

	for _, r := range records {
		row := []string{
			r.BatchID,
			r.Case,
			string(r.Family),
			itoa(r.Jobs),
			itoa(r.Machines),
			itoa(r.Tasks),
			itoa(r.Runs),
			itoa(r.Samples),

			ftoa(r.FeasibleRateMean),
			ftoa(r.FeasibleRateStd),

			itoa(r.MakespanBest),
			ftoa(r.MakespanMean),
			ftoa(r.MakespanStd),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),
		}
		if err := w.Write(row); err != nil {
			return errors.WithStack(err)
		}
	}

	w.Flush()
	return errors.WithStack(w.Error())
}

func dirOf(path string) string {
	d := filepath.Dir(path)
	if d == "." {
		return ""
	}
	return d
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

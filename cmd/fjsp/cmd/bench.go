package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flexJobShop/internal/bench"
	"flexJobShop/internal/config"
	"flexJobShop/internal/logging"
	"flexJobShop/internal/metrics"
)

func benchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Замерить случайный генератор: доля допустимых расписаний и лучший makespan по сидам.",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	cmd.Flags().String("config", "bench.yaml", "путь к YAML-конфигурации замеров")
	cmd.Flags().String("out", "", "путь к выходному CSV-файлу (перекрывает конфигурацию)")
	cmd.Flags().String("metrics-addr", "", "адрес HTTP-эндпоинта /metrics, например :9090 (перекрывает конфигурацию)")
	cmd.Flags().Int("runs", 0, "количество запусков на каждый экземпляр (перекрывает конфигурацию)")
	cmd.Flags().Int("samples", 0, "количество случайных расписаний в одном запуске (перекрывает конфигурацию)")
	cmd.Flags().Int64("seed", 0, "базовый сид запусков (перекрывает конфигурацию)")
	cmd.Flags().Int("parallelism", 0, "число параллельных запусков, 0 — без ограничения (перекрывает конфигурацию)")
	return cmd
}

func runBench(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := configureBenchLogging(cmd, cfg.Logging); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		log.Infof("serving metrics on %s/metrics", cfg.MetricsAddr)
	}

	runner := cfg.Runner()
	runner.Metrics = m

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	var records []bench.Record
	for _, c := range cfg.BenchCases() {
		fmt.Fprintf(out, "Запущен замер %s (%s); запусков=%d, выборок на запуск=%d...\n", c.Name, c.Family, runner.Runs, runner.Samples)

		rec, err := runner.RunCase(ctx, c)
		if err != nil {
			return err
		}
		records = append(records, rec)

		fmt.Fprintf(out, "  %d работ %d машин: доля допустимых=%.4f (отклонение %.4f) | makespan: лучший=%d среднее=%.2f | время: среднее=%.2fms\n",
			rec.Jobs, rec.Machines,
			rec.FeasibleRateMean, rec.FeasibleRateStd,
			rec.MakespanBest, rec.MakespanMean,
			rec.TimeMeanMs,
		)
	}

	if err := bench.WriteCSV(cfg.Out, records); err != nil {
		return err
	}
	fmt.Fprintln(out, "Saved:", cfg.Out)
	return nil
}

// configureBenchLogging applies the config file's logging section unless a logging flag was set.
func configureBenchLogging(cmd *cobra.Command, cfg logging.Config) error {
	if cmd.Flags().Changed(logLevelFlag) || cmd.Flags().Changed(logFormatFlag) {
		return nil
	}
	return logging.Configure(cfg)
}

package cmd

import (
	"io"
	"math/rand"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flexJobShop/internal/fjsp"
)

func sampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Сгенерировать случайное (не обязательно допустимое) расписание для экземпляра.",
		Args:  cobra.NoArgs,
		RunE:  runSample,
	}
	cmd.Flags().String("instance", "", "путь к файлу экземпляра задачи")
	cmd.Flags().Int64("seed", 1, "сид генератора случайных чисел")
	cmd.Flags().String("out", "-", "путь к выходному YAML-файлу; '-' — стандартный вывод")
	_ = cmd.MarkFlagRequired("instance")
	return cmd
}

func runSample(cmd *cobra.Command, args []string) error {
	instancePath, err := cmd.Flags().GetString("instance")
	if err != nil {
		return err
	}
	seed, err := cmd.Flags().GetInt64("seed")
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	inst, err := fjsp.Load(instancePath)
	if err != nil {
		return err
	}
	s := fjsp.Sample(inst, rand.New(rand.NewSource(seed)))
	res := fjsp.Check(inst, s)
	entry := log.WithFields(log.Fields{"instance": instancePath, "seed": seed, "feasible": res.Feasible()})
	if res.Feasible() {
		entry = entry.WithField("makespan", res.Makespan)
	} else {
		entry = entry.WithField("violation", res.Violation.Kind)
	}
	entry.Info("schedule sampled")

	return writeTo(cmd, outPath, func(w io.Writer) error {
		return fjsp.WriteSchedule(w, s)
	})
}

func writeTo(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

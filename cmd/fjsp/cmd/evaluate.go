package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flexJobShop/internal/fjsp"
)

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Вычислить makespan расписания или значение отказа (1e9) для недопустимого расписания.",
		Args:  cobra.NoArgs,
		RunE:  runEvaluate,
	}
	cmd.Flags().String("instance", "", "путь к файлу экземпляра задачи")
	cmd.Flags().String("schedule", "-", "путь к файлу расписания (YAML/JSON); '-' — стандартный ввод")
	cmd.Flags().Bool("explain", false, "вывести первое нарушенное ограничение")
	cmd.Flags().Bool("all", false, "вместе с --explain: вывести все нарушения")
	_ = cmd.MarkFlagRequired("instance")
	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	instancePath, err := cmd.Flags().GetString("instance")
	if err != nil {
		return err
	}
	schedulePath, err := cmd.Flags().GetString("schedule")
	if err != nil {
		return err
	}
	explain, err := cmd.Flags().GetBool("explain")
	if err != nil {
		return err
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}

	inst, err := fjsp.Load(instancePath)
	if err != nil {
		return err
	}
	ev, err := fjsp.NewEvaluator(inst)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if schedulePath != "-" {
		f, err := os.Open(schedulePath)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	out := cmd.OutOrStdout()
	s, err := fjsp.ReadSchedule(r)
	if err != nil {
		// a schedule that cannot be decoded is scored like any other malformed schedule
		log.WithError(err).WithField("schedule", schedulePath).Debug("schedule rejected while decoding")
		fmt.Fprintln(out, formatScore(fjsp.Rejected))
		if explain {
			fmt.Fprintf(cmd.ErrOrStderr(), "shape: %v\n", err)
		}
		return nil
	}

	res := ev.Check(s)
	fmt.Fprintln(out, formatScore(res.Makespan))
	if !explain || res.Feasible() {
		return nil
	}
	if !all {
		fmt.Fprintln(cmd.ErrOrStderr(), res.Violation)
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), ev.Violations(s))
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package cmd

import (
	"io"
	"math/rand"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flexJobShop/internal/config"
	"flexJobShop/internal/fjsp"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Сгенерировать случайный экземпляр задачи в текстовом формате.",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	cmd.Flags().String("size", "10x5", "размер: количество работ Х количество станков")
	cmd.Flags().Int("min-ops", 0, "минимальное число операций в работе (0 — по умолчанию)")
	cmd.Flags().Int("max-ops", 0, "максимальное число операций в работе (0 — по умолчанию)")
	cmd.Flags().Int("flex", 0, "максимальное число станков на операцию (0 — по умолчанию)")
	cmd.Flags().Int("min-time", 0, "минимальное время обработки (0 — по умолчанию)")
	cmd.Flags().Int("max-time", 0, "максимальное время обработки (0 — по умолчанию)")
	cmd.Flags().Int64("seed", 777, "сид генерации экземпляра")
	cmd.Flags().String("out", "-", "путь к выходному файлу; '-' — стандартный вывод")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	sizeStr, err := cmd.Flags().GetString("size")
	if err != nil {
		return err
	}
	size, err := config.ParseSize(sizeStr)
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

	cfg := fjsp.DefaultGenConfig(size.Jobs, size.Machines)
	overrides := map[string]*int{
		"min-ops":  &cfg.MinOps,
		"max-ops":  &cfg.MaxOps,
		"flex":     &cfg.Flexibility,
		"min-time": &cfg.MinTime,
		"max-time": &cfg.MaxTime,
	}
	for name, field := range overrides {
		if !cmd.Flags().Changed(name) {
			continue
		}
		if *field, err = cmd.Flags().GetInt(name); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	inst := fjsp.RandomInstance(cfg, rand.New(rand.NewSource(seed)))
	log.WithFields(log.Fields{
		"jobs":        inst.Jobs,
		"machines":    inst.Machines,
		"tasks":       inst.Tasks,
		"flexibility": inst.Flexibility(),
	}).Info("instance generated")

	return writeTo(cmd, outPath, func(w io.Writer) error {
		return fjsp.Write(w, inst)
	})
}

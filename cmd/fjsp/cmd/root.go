package cmd

import (
	"github.com/spf13/cobra"

	"flexJobShop/internal/logging"
)

const (
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "fjsp",
		Short:        "Модель задачи гибкого цеха (FJSP): проверка расписаний, случайная генерация, замеры.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loggingFromFlags(cmd)
			if err != nil {
				return err
			}
			return logging.Configure(cfg)
		},
	}
	d := logging.DefaultConfig()
	cmd.PersistentFlags().String(logLevelFlag, d.Level, "уровень логирования: debug | info | warn | error")
	cmd.PersistentFlags().String(logFormatFlag, d.Format, "формат логов: text | json")

	cmd.AddCommand(
		evaluateCmd(),
		sampleCmd(),
		generateCmd(),
		benchCmd(),
	)
	return cmd
}

func loggingFromFlags(cmd *cobra.Command) (logging.Config, error) {
	level, err := cmd.Flags().GetString(logLevelFlag)
	if err != nil {
		return logging.Config{}, err
	}
	format, err := cmd.Flags().GetString(logFormatFlag)
	if err != nil {
		return logging.Config{}, err
	}
	return logging.Config{Level: level, Format: format}, nil
}

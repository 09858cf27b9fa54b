package commands

import (
	"github.com/spf13/cobra"

	"github.com/tutorstack/tutorcore/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		shown := *cfg
		shown.Token = cli.MaskToken(cfg.Token)
		cli.PrintInfo("config file: %s", cfg.Path())
		return cli.Output(&shown, cli.OutputOptions{Format: cli.FormatYAML})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

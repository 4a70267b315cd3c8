package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"hermannm.dev/vizquery/config"
	"hermannm.dev/vizquery/log"
)

// Execute runs the CLI, returning the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.Error(err, "")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var cfg config.Config

	rootCmd := &cobra.Command{
		Use:           "vizquery",
		Short:         "Compile, run and classify aggregation queries over 311 data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.ReadFromEnv()
			if err != nil {
				log.Init(os.Stderr, log.ParseLevel("info"), false)
				return err
			}

			log.Init(os.Stderr, log.ParseLevel(cfg.LogLevel), cfg.IsProduction)
			return nil
		},
	}

	rootCmd.AddCommand(newServeCmd(&cfg), newRunCmd(&cfg))
	return rootCmd
}

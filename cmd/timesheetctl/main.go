// Command timesheetctl runs schema migrations and prints or sends monthly
// reports from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/senseprojects/timesheet-backend/pkg/config"
	"github.com/senseprojects/timesheet-backend/pkg/logger"
	"github.com/spf13/cobra"
)

const serviceName = "timesheetctl"

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "timesheetctl",
	Short: "Administrative commands for the timesheet backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(serviceName)
		if err != nil {
			return err
		}
		log = logger.NewWithWriter(serviceName, cfg.Server.Environment, os.Stderr)
		log.SetLevel(cfg.Server.LogLevel)
		return nil
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

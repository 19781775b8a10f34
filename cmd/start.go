package cmd

import (
	"github.com/spf13/cobra"

	"firestige.xyz/strix/internal/daemon"
)

var pidFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the agent in the foreground",
	Long: `Start the strix agent. The process stays in the foreground and runs
until SIGTERM or SIGINT; SIGHUP reloads the configuration file.

Examples:
  strix start
  strix start -c ./strix.yml --pid-file /tmp/strix.pid`,
	Run: func(cmd *cobra.Command, args []string) {
		d, err := daemon.New(configFile, pidFile)
		if err != nil {
			exitWithError("initializing agent", err)
		}
		if err := d.Start(); err != nil {
			d.Stop()
			exitWithError("starting agent", err)
		}
		if err := d.Run(); err != nil {
			exitWithError("running agent", err)
		}
	},
}

func init() {
	startCmd.Flags().StringVar(&pidFile, "pid-file", "/var/run/strix.pid", "pid file")
	rootCmd.AddCommand(startCmd)
}

// Package cmd implements the strix command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "strix",
	Short: "Strix - LISP control-plane agent",
	Long: `Strix is a LISP (RFC 6830/6833) control-plane agent. It resolves the
configured map-resolver, map-server and proxy-ETR sets, binds the LISP
control port on the control interface and dispatches inbound control
messages to their handlers.`,
	Version: "0.1.0",
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/strix/strix.yml", "configuration file")
}

func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}

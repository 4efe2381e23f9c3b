package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "inmemorykvd <subcommand>",
	Short: "runs a lightweight redis-compatible key-value store",
	Long:  `runs a lightweight, single-node, redis-compatible key-value store intended as a stand-in for redis in tests`,
	Run:   nil,
}

func init() {
	cobra.OnInitialize()
	rootCmd.PersistentFlags().StringP("config-file", "c", "", "Path to the config file (eg ./config.yaml) [Optional]")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panicWithError(err, "failed to execute command")
	}
}

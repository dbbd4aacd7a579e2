package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Daily reminder sweeps",
	Long: `Runs the reminder sweep that emails or texts each user their task for
the day at their chosen local time.

The sweep is safe to run concurrently and repeatedly: each user is sent at
most one reminder per channel per local day.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(runCmd, workerCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/templui/heartroom/cmd/ctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ctl",
		Short:        "Operations and development tools for heartroom",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.DevCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.ChatCmd())
	rootCmd.AddCommand(cmd.RankingsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

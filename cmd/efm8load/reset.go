package main

import (
	"github.com/spf13/cobra"

	"github.com/tocurd/go-efm8"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Leave the bootloader and start the application",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoader(func(loader *efm8.Loader) error {
			if err := loader.Training(); err != nil {
				return err
			}
			return loader.Reset()
		})
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

package main

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/tocurd/go-efm8"
	"github.com/tocurd/go-efm8/ihex"
)

var readCmd = &cobra.Command{
	Use:   "read [file.hex]",
	Short: "Read the whole flash into an Intel HEX file",
	Long:  "Recover every flash byte through the VERIFY command. This needs one to 256 round trips per byte and takes a while.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []efm8.Option
		if interactive() {
			opts = append(opts, efm8.WithProgress(func(progress efm8.Progress) {
				fmt.Printf("\r> flash[0x%04X] = 0x%02X", progress.Address, progress.Value)
				if progress.Current == progress.Total {
					fmt.Println()
				}
			}))
		}

		var image *efm8.Image
		err := withLoader(func(loader *efm8.Loader) error {
			var err error
			image, err = loader.Dump()
			return err
		}, opts...)
		if err != nil {
			return err
		}

		if err := ihex.WriteFile(args[0], image); err != nil {
			return err
		}
		glog.Infof("wrote %d bytes to %s", image.Len(), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}

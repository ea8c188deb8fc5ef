package main

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/tocurd/go-efm8"
	"github.com/tocurd/go-efm8/ihex"
)

var flagResetAfterWrite bool

var writeCmd = &cobra.Command{
	Use:   "write [file.hex]",
	Short: "Program an Intel HEX file",
	Long:  "Erase the touched pages, write and verify the image. Address 0 is committed last so an interrupted run leaves the bootloader in control.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := ihex.ReadFile(args[0])
		if err != nil {
			return err
		}
		glog.Infof("loaded %d bytes in %d segments from %s", image.Len(), len(image.Segments()), args[0])

		var opts []efm8.Option
		if interactive() {
			opts = append(opts, efm8.WithProgress(func(progress efm8.Progress) {
				fmt.Printf("\r> %s %d/%d", progress.Phase, progress.Current, progress.Total)
				if progress.Current == progress.Total {
					fmt.Println()
				}
			}))
		}

		return withLoader(func(loader *efm8.Loader) error {
			if err := loader.Program(image); err != nil {
				return err
			}
			if flagResetAfterWrite {
				return loader.Reset()
			}
			return nil
		}, opts...)
	},
}

func init() {
	writeCmd.Flags().BoolVar(&flagResetAfterWrite, "reset", false, "start the application after programming")
	rootCmd.AddCommand(writeCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tocurd/go-efm8"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Identify the attached device",
	Long:  "Probe the bootloader with every cataloged device and variant id, falling back to a full id sweep.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoader(func(loader *efm8.Loader) error {
			device, err := loader.Identify()
			if err != nil {
				return err
			}
			fmt.Printf("%s: device id 0x%02X, variant id 0x%02X, %d bytes flash in %d byte pages\n",
				device.Name, device.DeviceID, device.VariantID, device.FlashSize, device.PageSize)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

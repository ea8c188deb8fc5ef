// efm8load programs and reads EFM8 microcontrollers through the UART
// bootloader.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tocurd/go-efm8"
)

var (
	flagPort     string
	flagBaudRate int
	flagTimeout  time.Duration
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "efm8load",
	Short:         "EFM8 UART bootloader client",
	Long:          "Identify, program, read back and reset Silicon Labs EFM8 microcontrollers running the factory UART bootloader.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&flagPort, "port", "p", "/dev/ttyUSB0", "serial port the bootloader is attached to")
	flags.IntVarP(&flagBaudRate, "baudrate", "b", 115200, "serial baud rate")
	flags.DurationVar(&flagTimeout, "timeout", time.Second, "time to wait for each response byte")
	// -v 已被glog占用
	flags.BoolVar(&flagVerbose, "verbose", false, "log every packet and response")

	flag.Set("logtostderr", "true")
	flags.AddGoFlagSet(flag.CommandLine)
}

func options() []efm8.Option {
	return []efm8.Option{
		efm8.WithBaudRate(flagBaudRate),
		efm8.WithTimeout(flagTimeout),
		efm8.WithDebug(flagVerbose),
	}
}

// withLoader 打开串口，fn 返回后关闭
func withLoader(fn func(*efm8.Loader) error, opts ...efm8.Option) error {
	opts = append(options(), opts...)
	port, err := efm8.OpenPort(flagPort, opts...)
	if err != nil {
		return err
	}
	return efm8.Run(port, fn, opts...)
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		glog.Exitf("%v", err)
	}
}

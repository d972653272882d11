// Command streamcsv provides synthetic data generation, a timing harness, and
// stream conversion around the streamcsv codec.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/streamcsv/streamcsv/internal/logging"
)

var version = "0.1.0"

func main() {
	var logLevel string

	root := &cobra.Command{
		Use:   "streamcsv",
		Short: "streamcsv - streaming CSV toolkit",
		Long: `streamcsv generates, benchmarks, and converts CSV streams using the
streamcsv codec. Paths ending in .gz are read and written gzip-compressed,
and "-" selects stdin or stdout.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init(logging.Config{Level: logLevel})
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("streamcsv v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newGenCommand())
	root.AddCommand(newBenchCommand())
	root.AddCommand(newConvertCommand())

	err := root.Execute()
	_ = logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

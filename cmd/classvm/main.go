// Command classvm loads a compiled class file by name and executes
// its main method (§6).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	vm "classvm/vm"
)

func main() {
	os.Exit(run())
}

func run() int {
	var trace bool
	var dir string

	rootCmd := &cobra.Command{
		Use:           "classvm <class-name>",
		Short:         "Run a compiled class file's main method",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return vm.Run(vm.Options{
				ClassName: args[0],
				Source:    vm.FileSource{Dir: dir},
				Stdout:    os.Stdout,
				Trace:     trace,
				TraceOut:  os.Stderr,
			})
		},
	}

	rootCmd.Flags().BoolVar(&trace, "trace", false, "print each executed instruction to stderr")
	rootCmd.Flags().StringVar(&dir, "dir", ".", "directory to resolve referenced classes from")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

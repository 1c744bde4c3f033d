// Command validate checks recorded Game Master replies and replays them
// against the starting character.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "validate",
		Short:         "Validate Game Master replies",
		Long:          `Validate recorded Game Master replies against the response contract, or replay them in order against the default character.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newResponseCmd())
	root.AddCommand(newReplayCmd())
	return root
}

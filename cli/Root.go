// Package cli implements the quadrl command-line interface
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/quadrl/agent"
	"github.com/samuelfneumann/quadrl/environment/envconfig"
	"github.com/samuelfneumann/quadrl/simulator"

	// Register agents
	_ "github.com/samuelfneumann/quadrl/agent/constant"
	_ "github.com/samuelfneumann/quadrl/agent/linear/actorcritic"
	_ "github.com/samuelfneumann/quadrl/agent/randomsearch"
)

// NewRootCmd returns the root quadrl command, writing its output to
// out
func NewRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "quadrl",
		Short:         "Train and evaluate agents on simulated quadcopter tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(newRunCmd())
	root.AddCommand(&cobra.Command{
		Use:   "tasks",
		Short: "List the tasks that can be run",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range envconfig.Tasks() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "agents",
		Short: "List the agents that can be trained",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range agent.Types() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "simulators",
		Short: "List the simulators that can drive tasks",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, s := range simulator.Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
		},
	})

	return root
}

// Execute runs the root command with the process arguments, exiting
// with a non-zero status on failure
func Execute() {
	root := NewRootCmd(os.Stdout)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

type Workloads struct{}

func (Workloads) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "workloads",
		Short: "list the workloads the run command can submit",
		Run: func(c *cobra.Command, _ []string) {
			for _, name := range workloadNames() {
				fmt.Fprintf(c.OutOrStdout(), "%-6s %s\n", name, workloads[name].Describe())
			}
		},
	}
}

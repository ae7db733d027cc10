// internal/cli/arch.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/debpack/pkg/arch"
)

var archCmd = &cobra.Command{
	Use:   "arch",
	Short: "Show the host machine and its package architecture",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		machine, err := arch.Machine()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Machine: %s\n", machine)
		fmt.Fprintf(out, "Architecture: %s\n", arch.FromMachine(machine))
		return nil
	},
}

// internal/cli/version.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// version works even with a broken config file
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "debpack version %s\n", Version)
		fmt.Fprintln(out, "Debian packager for prebuilt binaries")
		fmt.Fprintln(out, "https://github.com/arc-language/debpack")
	},
}

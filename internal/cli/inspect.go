// internal/cli/inspect.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/debpack/pkg/archive"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file.deb]",
	Short: "Show the control record and contents of a .deb",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	pkg, err := archive.Inspect(args[0])
	if err != nil {
		return fmt.Errorf("inspecting package: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := pkg.Control.Format(out); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nFiles (%d):\n", len(pkg.Files))
	for _, f := range pkg.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}

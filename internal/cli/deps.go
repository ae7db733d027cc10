// internal/cli/deps.go
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/debpack"
)

var depsCmd = &cobra.Command{
	Use:   "deps [binary]",
	Short: "List the shared libraries a binary would embed",
	Long: `Print the library closure of a binary as JSON, mapping each soname to
the path it resolves to. Unresolved libraries map to an empty string.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeps,
}

func runDeps(cmd *cobra.Command, args []string) error {
	p, err := debpack.New(config)
	if err != nil {
		return fmt.Errorf("initializing packager: %w", err)
	}

	closure, err := p.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(closure, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding closure: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// internal/cli/config.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arc-language/debpack/pkg/core"
)

var configSave bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file and flags have
been applied. With --save it is written back to the config file.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configSave, "save", false, "write the effective configuration to the config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	if configSave {
		if err := core.SaveConfig(config, cfgFile); err != nil {
			return err
		}
		config.Logger.Info("Saved configuration")
	}
	return nil
}

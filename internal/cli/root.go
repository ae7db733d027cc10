// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/arc-language/debpack/pkg/core"
)

// Version is the debpack release
const Version = "0.1.0"

var (
	cfgFile   string
	debug     bool
	config    *core.Config
	configErr error
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "debpack",
	Short: "Debian packager for prebuilt binaries",
	Long: `debpack - Debian packager for prebuilt binaries

Builds two .deb packages from one executable: a thin package that depends
on the host's shared libraries, and a with_deps package that ships its own
copies of them.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	// A config file that fails to load or validate stops every command
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configErr
	},
}

// Execute executes the root command. An interrupt cancels the running build.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/debpack/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(archCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	configErr = nil
	config, err = core.LoadConfig(cfgFile)
	if err != nil {
		configErr = fmt.Errorf("loading config: %w", err)
		config = core.DefaultConfig()
	}

	// Override config with flags
	if debug {
		config.Debug = true
	}
	config.Logger = core.NewLogger(config.Debug)
}

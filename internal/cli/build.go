// internal/cli/build.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/debpack"
	"github.com/arc-language/debpack/pkg/command"
	"github.com/arc-language/debpack/pkg/core"
)

var (
	buildTarget     string
	buildInfo       string
	buildOutput     string
	buildArchiver   string
	buildArch       string
	buildNoArchive  bool
	buildSequential bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the thin and with_deps packages of a binary",
	Long: `Resolve the shared libraries of the target binary, lay out both install
roots in the output directory and archive each of them into a .deb.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildTarget, "target", "../pcb2gcode", "binary to package")
	buildCmd.Flags().StringVar(&buildInfo, "info", "info.json", "package info file (json, yaml or toml)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output directory (default from config)")
	buildCmd.Flags().StringVar(&buildArchiver, "archiver", "", "archiver to use (dpkg-deb, native)")
	buildCmd.Flags().StringVar(&buildArch, "arch", "", "package architecture (default: detected)")
	buildCmd.Flags().BoolVar(&buildNoArchive, "no-archive", false, "stop after laying out the install roots")
	buildCmd.Flags().BoolVar(&buildSequential, "sequential", false, "build the install roots one after the other")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildOutput != "" {
		config.OutputDir = buildOutput
	}
	if buildArchiver != "" {
		config.Archiver = buildArchiver
	}
	if buildSequential {
		config.Sequential = true
	}

	p, err := debpack.New(config)
	if err != nil {
		return fmt.Errorf("initializing packager: %w", err)
	}

	if !buildNoArchive && config.Archiver == core.ArchiverDpkgDeb {
		tool := config.ArchiverPath
		if tool == "" {
			tool = "dpkg-deb"
		}
		if !command.Exists(tool) {
			config.Logger.Warnf("%s not found in PATH, archiving will fail (try --archiver native)", tool)
		}
	}

	res, err := p.Build(cmd.Context(), debpack.BuildRequest{
		Target:      buildTarget,
		InfoPath:    buildInfo,
		Arch:        buildArch,
		SkipArchive: buildNoArchive,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Package: %s %s (%s)\n", res.Info.Name, res.Info.Version, res.Arch)
	for _, root := range res.Roots {
		fmt.Fprintf(out, "Root:    %s\n", root)
	}
	for _, pkg := range res.Packages {
		fmt.Fprintf(out, "Built:   %s\n", pkg)
	}
	return nil
}

// Package archive turns committed install roots into .deb files and reads
// them back.
package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/arc-language/debpack/pkg/command"
	"github.com/arc-language/debpack/pkg/core"
)

// Result describes one archived root
type Result struct {
	Root    string // install root that was archived
	Package string // path of the produced .deb
	Output  string // captured tool output, if any
}

// Archiver builds a .deb from an install root containing DEBIAN/control
type Archiver interface {
	Name() string
	Build(ctx context.Context, root string) (Result, error)
}

// Options configures New
type Options struct {
	Runner command.Runner // used by dpkg-deb; Default: ExecRunner
	Path   string         // dpkg-deb executable; Default: dpkg-deb
}

// New returns the archiver registered under kind
func New(kind string, opts Options) (Archiver, error) {
	switch kind {
	case core.ArchiverDpkgDeb, "":
		return NewDpkgDeb(opts.Runner, opts.Path), nil
	case core.ArchiverNative:
		return NewNative(), nil
	default:
		return nil, fmt.Errorf("unknown archiver: %s", kind)
	}
}

// PackagePath is where an archiver leaves the .deb for root: next to it,
// named after it.
func PackagePath(root string) string {
	return filepath.Clean(root) + ".deb"
}

// Run archives roots one at a time in the order given. The first failure
// stops the run; later roots are not attempted. Results for the roots
// archived so far are returned either way.
func Run(ctx context.Context, a Archiver, roots []string, logger *log.Logger) ([]Result, error) {
	if logger == nil {
		logger = core.DiscardLogger()
	}

	results := make([]Result, 0, len(roots))
	for i, root := range roots {
		if err := ctx.Err(); err != nil {
			return results, core.Fail(core.ErrArchiveToolFailed, err, "root", root)
		}

		logger.Infof("Archiving %s (%d/%d) with %s", filepath.Base(root), i+1, len(roots), a.Name())
		res, err := a.Build(ctx, root)
		logOutput(logger, res.Output)
		if err != nil {
			return results, core.Fail(core.ErrArchiveToolFailed, err,
				"root", root, "archiver", a.Name())
		}
		logger.Infof("✓ %s", res.Package)
		results = append(results, res)
	}

	return results, nil
}

func logOutput(logger *log.Logger, output string) {
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line != "" {
			logger.Debug(line)
		}
	}
}

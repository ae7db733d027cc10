package archive

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/arc-language/debpack/pkg/command"
)

// DpkgDeb delegates to the system dpkg-deb tool
type DpkgDeb struct {
	runner command.Runner
	path   string
}

// NewDpkgDeb creates an archiver running path (default dpkg-deb) through runner
func NewDpkgDeb(runner command.Runner, path string) *DpkgDeb {
	if runner == nil {
		runner = &command.ExecRunner{}
	}
	if path == "" {
		path = "dpkg-deb"
	}
	return &DpkgDeb{runner: runner, path: path}
}

func (d *DpkgDeb) Name() string { return "dpkg-deb" }

// Build runs dpkg-deb --build root, which writes root.deb
func (d *DpkgDeb) Build(ctx context.Context, root string) (Result, error) {
	root = filepath.Clean(root)
	res := Result{Root: root, Package: PackagePath(root)}

	out, err := d.runner.Run(ctx, d.path, "--build", root)
	res.Output = string(out)
	if err != nil {
		var exitErr *command.ExitError
		if errors.As(err, &exitErr) && res.Output == "" {
			res.Output = exitErr.Stdout + exitErr.Stderr
		}
		return res, err
	}
	return res, nil
}

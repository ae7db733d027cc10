package ldd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/arc-language/debpack/pkg/command"
	"github.com/arc-language/debpack/pkg/core"
)

// Options configures a Resolver
type Options struct {
	Runner  command.Runner // Default: ExecRunner without timeout
	LddPath string         // Default: ldd
	Exclude []string       // Extra denylist entries (name or name*)
	Logger  *log.Logger
}

// Resolver lists the shared libraries a binary needs
type Resolver struct {
	runner   command.Runner
	lddPath  string
	denylist Denylist
	logger   *log.Logger
}

// NewResolver creates a resolver backed by the dynamic linker's ldd
func NewResolver(opts Options) *Resolver {
	if opts.Runner == nil {
		opts.Runner = &command.ExecRunner{}
	}
	if opts.LddPath == "" {
		opts.LddPath = "ldd"
	}
	if opts.Logger == nil {
		opts.Logger = core.DiscardLogger()
	}

	return &Resolver{
		runner:   opts.Runner,
		lddPath:  opts.LddPath,
		denylist: DefaultDenylist.With(opts.Exclude...),
		logger:   opts.Logger,
	}
}

// Denylist returns the exclusion rules in effect
func (r *Resolver) Denylist() Denylist {
	return r.denylist
}

// Resolve runs ldd on target and returns its library closure minus the
// always-present loader libraries. Any failure to inspect the target is
// fatal.
func (r *Resolver) Resolve(ctx context.Context, target string) (Closure, error) {
	if err := CheckTarget(target); err != nil {
		return nil, err
	}

	r.logger.Debugf("Running %s %s", r.lddPath, target)

	out, err := r.runner.Run(ctx, r.lddPath, target)
	if err != nil {
		return nil, core.Fail(core.ErrInspectFailed, err, "target", target)
	}

	all, err := Parse(bytes.NewReader(out))
	if err != nil {
		return nil, core.Fail(core.ErrInspectFailed, err, "target", target)
	}

	closure := r.denylist.Filter(all)

	for _, lib := range all.Sorted() {
		if _, kept := closure[lib.Soname]; !kept {
			r.logger.Debugf("  excluded %s", lib.Soname)
		}
	}
	for _, lib := range closure.Sorted() {
		if lib.Resolved() {
			r.logger.Debugf("  %s => %s", lib.Soname, lib.Path)
		} else {
			r.logger.Warnf("  %s => not found (left to the target host)", lib.Soname)
		}
	}

	return closure, nil
}

// CheckTarget verifies that target is an existing, executable regular file
func CheckTarget(target string) error {
	if target == "" {
		return core.Fail(core.ErrTargetNotFound, errors.New("no target given"))
	}

	info, err := os.Stat(target)
	if err != nil {
		return core.Fail(core.ErrTargetNotFound, err, "target", target)
	}
	if !info.Mode().IsRegular() {
		return core.Fail(core.ErrTargetNotFound, fmt.Errorf("%s: not a regular file", target), "target", target)
	}
	if info.Mode().Perm()&0111 == 0 {
		return core.Fail(core.ErrTargetNotFound, fmt.Errorf("%s: not executable", target), "target", target)
	}

	return nil
}

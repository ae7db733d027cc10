// Package tree lays out the install roots fed to the archiver.
//
// A root is assembled in a staging directory next to its final location and
// renamed into place only once it is complete, so the canonical path never
// holds a half-built tree.
package tree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arc-language/debpack/pkg/arch"
	"github.com/arc-language/debpack/pkg/core"
	"github.com/arc-language/debpack/pkg/ldd"
	"github.com/arc-language/debpack/pkg/meta"
)

// Profile selects which of the two packages a root represents
type Profile int

const (
	// Thin relies on the libraries already installed on the target host
	Thin Profile = iota
	// Full embeds its own copies of every resolved library
	Full
)

// Profiles lists both profiles in build order
var Profiles = []Profile{Thin, Full}

func (p Profile) String() string {
	switch p {
	case Thin:
		return "thin"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("profile(%d)", int(p))
	}
}

// EmbedsDeps reports whether libraries are copied into the root
func (p Profile) EmbedsDeps() bool {
	return p == Full
}

// Layout paths, relative to an install root
var (
	BinDir = filepath.Join("usr", "bin")
	LibDir = filepath.Join("usr", "lib")
)

// RootName returns {name}-{arch}-{version} for Thin and
// {name}-with_deps-{arch}-{version} for Full.
func RootName(info *meta.PackageInfo, a arch.Architecture, p Profile) string {
	if p == Full {
		return fmt.Sprintf("%s-with_deps-%s-%s", info.Name, a, info.Version)
	}
	return fmt.Sprintf("%s-%s-%s", info.Name, a, info.Version)
}

// Staging is an install root under construction
type Staging struct {
	Dir   string // where the tree is being built
	Final string // where Commit moves it
}

// chmod is swapped out in tests
var chmod = os.Chmod

// Stage creates an empty staging root (containing only usr/) for the root
// called name inside outDir. name must be a single path element. Nothing is
// left behind when Stage fails.
func Stage(outDir, name string) (*Staging, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid root name %q", name)
	}
	if err := mkdir(outDir); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(outDir, "."+name+".stage-")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory for %s: %w", name, err)
	}

	// MkdirTemp uses 0700; the root becomes / of the package
	if err := chmod(dir, 0755); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("setting mode on %s: %w", dir, err)
	}
	if err := mkdir(filepath.Join(dir, "usr")); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	return &Staging{
		Dir:   dir,
		Final: filepath.Join(outDir, name),
	}, nil
}

// CopyBinary copies target into usr/bin and returns the destination path
func (s *Staging) CopyBinary(target string) (string, error) {
	dir := filepath.Join(s.Dir, BinDir)
	if err := mkdir(dir); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, filepath.Base(target))
	if err := copyFile(target, dst); err != nil {
		return "", core.Fail(core.ErrTargetNotFound, err, "target", target, "staging", s.Dir)
	}
	return dst, nil
}

// CopyLibraries copies every resolved closure entry into usr/lib, in soname
// order. Unresolved entries are left to the target host. Any failure aborts
// the copy.
func (s *Staging) CopyLibraries(ctx context.Context, closure ldd.Closure) ([]string, error) {
	dir := filepath.Join(s.Dir, LibDir)
	if err := mkdir(dir); err != nil {
		return nil, err
	}

	var copied []string
	for _, lib := range closure.Resolved() {
		if err := ctx.Err(); err != nil {
			return copied, err
		}

		dst := filepath.Join(dir, filepath.Base(lib.Path))
		if err := copyFile(lib.Path, dst); err != nil {
			return copied, core.Fail(core.ErrLibraryCopyFailed, err,
				"library", lib.Soname, "path", lib.Path, "staging", s.Dir)
		}
		copied = append(copied, dst)
	}

	return copied, nil
}

// Commit replaces whatever sits at the final path with the staged tree.
// Anything previously at Final is destroyed.
func (s *Staging) Commit() error {
	if err := os.RemoveAll(s.Final); err != nil {
		return fmt.Errorf("removing previous root %s: %w", s.Final, err)
	}
	if err := os.Rename(s.Dir, s.Final); err != nil {
		return fmt.Errorf("moving %s into place: %w", s.Final, err)
	}
	s.Dir = s.Final
	return nil
}

// Discard removes the staging directory
func (s *Staging) Discard() error {
	if s.Dir == s.Final {
		return nil
	}
	return os.RemoveAll(s.Dir)
}

func mkdir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

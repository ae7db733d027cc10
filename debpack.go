// debpack.go
package debpack

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/arc-language/debpack/pkg/arch"
	"github.com/arc-language/debpack/pkg/archive"
	"github.com/arc-language/debpack/pkg/command"
	"github.com/arc-language/debpack/pkg/control"
	"github.com/arc-language/debpack/pkg/core"
	"github.com/arc-language/debpack/pkg/ldd"
	"github.com/arc-language/debpack/pkg/meta"
	"github.com/arc-language/debpack/pkg/tree"
)

// Re-export types for convenience
type (
	Config       = core.Config
	PackageInfo  = meta.PackageInfo
	Architecture = arch.Architecture
	Closure      = ldd.Closure
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return core.DefaultConfig()
}

// LoadConfig reads the YAML config at path, or the default location when
// path is empty.
func LoadConfig(path string) (*Config, error) {
	return core.LoadConfig(path)
}

// BuildRequest names the inputs of one packaging run
type BuildRequest struct {
	Target      string // binary to package
	InfoPath    string // JSON, YAML or TOML package info
	Arch        string // overrides host detection when set
	SkipArchive bool   // stop after the install roots are committed
}

// Result reports what a run produced
type Result struct {
	Info     *PackageInfo
	Arch     Architecture
	Closure  Closure
	Roots    []string // thin root, then full root
	Packages []string // .deb files, same order as Roots
}

// Option customises a Packager
type Option func(*Packager)

// WithRunner runs ldd and dpkg-deb through r
func WithRunner(r command.Runner) Option {
	return func(p *Packager) { p.runner = r }
}

// WithArchiver replaces the configured archiver
func WithArchiver(a archive.Archiver) Option {
	return func(p *Packager) { p.archiver = a }
}

// Packager builds the thin and full packages of a binary
type Packager struct {
	config   *Config
	runner   command.Runner
	resolver *ldd.Resolver
	archiver archive.Archiver
	logger   *log.Logger
}

// New creates a Packager. A nil config means DefaultConfig.
func New(config *Config, opts ...Option) (*Packager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.ApplyDefaults()

	p := &Packager{
		config: config,
		logger: config.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.runner == nil {
		p.runner = &command.ExecRunner{Timeout: config.Timeout}
	}
	if p.archiver == nil {
		a, err := archive.New(config.Archiver, archive.Options{
			Runner: p.runner,
			Path:   config.ArchiverPath,
		})
		if err != nil {
			return nil, err
		}
		p.archiver = a
	}

	p.resolver = ldd.NewResolver(ldd.Options{
		Runner:  p.runner,
		LddPath: config.LddPath,
		Exclude: config.Exclude,
		Logger:  p.logger,
	})

	return p, nil
}

// Resolve returns the library closure of target
func (p *Packager) Resolve(ctx context.Context, target string) (Closure, error) {
	closure, err := p.resolver.Resolve(ctx, target)
	if err != nil {
		return nil, &Error{Op: "resolve", Package: filepath.Base(target), Err: err}
	}
	return closure, nil
}

// Build packages req.Target twice: a thin package depending on the host's
// libraries and a full package embedding them. The info file is validated
// before anything is written. Install roots are staged and only replace the
// previous ones once both are complete.
func (p *Packager) Build(ctx context.Context, req BuildRequest) (*Result, error) {
	p.logger.Infof("Step 1: Loading package info from %s", req.InfoPath)
	info, err := meta.Load(req.InfoPath)
	if err != nil {
		return nil, &Error{Op: "load", Package: req.InfoPath, Err: err}
	}
	p.logger.Infof("✓ %s %s", info.Name, info.Version)

	p.logger.Infof("Step 2: Resolving shared libraries of %s", req.Target)
	closure, err := p.resolver.Resolve(ctx, req.Target)
	if err != nil {
		return nil, &Error{Op: "resolve", Package: info.Name, Err: err}
	}
	p.logger.Infof("✓ %d libraries (%d unresolved)", len(closure), len(closure.Unresolved()))

	p.logger.Info("Step 3: Determining architecture")
	a, err := p.architecture(req.Arch)
	if err != nil {
		return nil, &Error{Op: "detect architecture", Package: info.Name, Err: err}
	}
	p.logger.Infof("✓ %s", a)

	p.logger.Infof("Step 4: Building install roots in %s", p.config.OutputDir)
	stagings, err := p.buildRoots(ctx, info, a, closure, req.Target)
	if err != nil {
		return nil, &Error{Op: "build", Package: info.Name, Err: err}
	}

	res := &Result{Info: info, Arch: a, Closure: closure}
	for _, s := range stagings {
		if err := s.Commit(); err != nil {
			return nil, &Error{Op: "commit", Package: info.Name, Err: err}
		}
		res.Roots = append(res.Roots, s.Final)
		p.logger.Infof("✓ %s", s.Final)
	}

	if req.SkipArchive {
		p.logger.Info("Skipping archive step")
		return res, nil
	}

	p.logger.Infof("Step 5: Archiving with %s", p.archiver.Name())
	results, err := archive.Run(ctx, p.archiver, res.Roots, p.logger)
	for _, r := range results {
		res.Packages = append(res.Packages, r.Package)
	}
	if err != nil {
		return res, &Error{Op: "archive", Package: info.Name, Err: err}
	}

	p.logger.Infof("✓ Built %d packages", len(res.Packages))
	return res, nil
}

func (p *Packager) architecture(override string) (Architecture, error) {
	if override == "" {
		return arch.Detect()
	}
	a := Architecture(override)
	if !a.IsValid() {
		return "", core.Fail(core.ErrInvalidArchitecture,
			fmt.Errorf("unknown architecture %q", override), "arch", override)
	}
	return a, nil
}

// buildRoots stages one root per profile. On failure the staging directory
// of the failed profile is left in place and the others are discarded.
func (p *Packager) buildRoots(ctx context.Context, info *PackageInfo, a Architecture, closure Closure, target string) ([]*tree.Staging, error) {
	stagings := make([]*tree.Staging, len(tree.Profiles))

	g, gctx := errgroup.WithContext(ctx)
	if p.config.Sequential {
		g.SetLimit(1)
	}
	for i, profile := range tree.Profiles {
		g.Go(func() error {
			s, err := p.buildRoot(gctx, info, a, closure, target, profile)
			if err != nil {
				if s != nil {
					p.logger.Warnf("Left %s build in %s", profile, s.Dir)
				}
				return err
			}
			stagings[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, s := range stagings {
			if s == nil {
				continue
			}
			if derr := s.Discard(); derr != nil {
				p.logger.Warnf("Could not remove %s: %v", s.Dir, derr)
			}
		}
		return nil, err
	}
	return stagings, nil
}

func (p *Packager) buildRoot(ctx context.Context, info *PackageInfo, a Architecture, closure Closure, target string, profile tree.Profile) (*tree.Staging, error) {
	name := tree.RootName(info, a, profile)
	s, err := tree.Stage(p.config.OutputDir, name)
	if err != nil {
		return nil, err
	}

	if _, err := s.CopyBinary(target); err != nil {
		return s, err
	}

	if profile.EmbedsDeps() {
		copied, err := s.CopyLibraries(ctx, closure)
		if err != nil {
			return s, err
		}
		p.logger.Debugf("Embedded %d libraries in %s", len(copied), name)
	}

	rec := control.NewRecord(info, a, profile.EmbedsDeps(), control.Identity{
		Maintainer: p.config.Maintainer,
		Homepage:   p.config.Homepage,
	})
	if err := control.Write(s.Dir, rec); err != nil {
		return s, err
	}

	p.logger.Debugf("Staged %s root in %s", profile, s.Dir)
	return s, nil
}

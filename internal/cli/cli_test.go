package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/debpack/pkg/arch"
	"github.com/arc-language/debpack/pkg/archive"
	"github.com/arc-language/debpack/pkg/control"
	"github.com/arc-language/debpack/pkg/core"
	"github.com/arc-language/debpack/pkg/meta"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return buf.String(), err
}

func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--config", missingConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "debpack version "+Version)
}

func TestArch(t *testing.T) {
	out, err := execute(t, "arch", "--config", missingConfig(t))
	require.NoError(t, err)

	a, err := arch.Detect()
	require.NoError(t, err)
	assert.Contains(t, out, "Architecture: "+a.String())
}

func TestInspect(t *testing.T) {
	root := filepath.Join(t.TempDir(), "foo-amd64-1.0")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "usr", "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "usr", "bin", "foo"), []byte("bin"), 0755))
	info := &meta.PackageInfo{Name: "foo", Version: "1.0", Description: "a tool"}
	require.NoError(t, control.Write(root, control.NewRecord(info, arch.ArchAmd64, true, control.Identity{})))

	res, err := archive.NewNative().Build(context.Background(), root)
	require.NoError(t, err)

	out, err := execute(t, "inspect", res.Package, "--config", missingConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Package: foo\n")
	assert.Contains(t, out, "Architecture: amd64\n")
	assert.Contains(t, out, "  usr/bin/foo\n")
}

func TestBuildBadInfo(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "build",
		"--config", missingConfig(t),
		"--info", filepath.Join(dir, "missing.json"),
		"--target", filepath.Join(dir, "foo"),
		"--output", filepath.Join(dir, "dist"),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMalformedMetadata)
	assert.NoDirExists(t, filepath.Join(dir, "dist"))
}

func TestConfigSave(t *testing.T) {
	path := missingConfig(t)
	t.Cleanup(func() { configSave = false })

	out, err := execute(t, "config", "--config", path, "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "archiver: dpkg-deb")

	saved, err := core.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, core.ArchiverDpkgDeb, saved.Archiver)
	assert.Equal(t, core.DefaultTimeout, saved.Timeout)
}

func TestInvalidConfigStopsCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("archiver: rpmbuild\n"), 0644))

	dir := t.TempDir()
	_, err := execute(t, "build",
		"--config", path,
		"--info", filepath.Join(dir, "info.json"),
		"--target", filepath.Join(dir, "foo"),
		"--output", filepath.Join(dir, "dist"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
	assert.Contains(t, err.Error(), "rpmbuild")
	assert.NoDirExists(t, filepath.Join(dir, "dist"))

	out, err := execute(t, "version", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "debpack version")
}

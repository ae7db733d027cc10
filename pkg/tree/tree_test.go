package tree

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/debpack/pkg/arch"
	"github.com/arc-language/debpack/pkg/core"
	"github.com/arc-language/debpack/pkg/ldd"
	"github.com/arc-language/debpack/pkg/meta"
)

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	require.NoError(t, os.Chmod(path, mode))
}

func TestRootName(t *testing.T) {
	info := &meta.PackageInfo{Name: "foo", Version: "1.2-3"}

	assert.Equal(t, "foo-amd64-1.2-3", RootName(info, arch.ArchAmd64, Thin))
	assert.Equal(t, "foo-with_deps-amd64-1.2-3", RootName(info, arch.ArchAmd64, Full))
	assert.Equal(t, "foo-armhf-1.2-3", RootName(info, arch.ArchArmhf, Thin))
}

func TestProfile(t *testing.T) {
	assert.False(t, Thin.EmbedsDeps())
	assert.True(t, Full.EmbedsDeps())
	assert.Equal(t, "thin", Thin.String())
	assert.Equal(t, "full", Full.String())
	assert.Equal(t, []Profile{Thin, Full}, Profiles)
}

func TestStage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist")

	s, err := Stage(out, "foo-amd64-1.0")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "foo-amd64-1.0"), s.Final)
	assert.Equal(t, out, filepath.Dir(s.Dir))

	st, err := os.Stat(s.Dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), st.Mode().Perm())

	entries, err := os.ReadDir(s.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "usr", entries[0].Name())

	_, err = os.Stat(s.Final)
	assert.True(t, os.IsNotExist(err), "final path must not exist before commit")
}

func TestCopyBinary(t *testing.T) {
	src := filepath.Join(t.TempDir(), "foo")
	writeFile(t, src, "#!/bin/sh\necho foo\n", 0755)

	s, err := Stage(t.TempDir(), "foo")
	require.NoError(t, err)

	dst, err := s.CopyBinary(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "usr", "bin", "foo"), dst)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho foo\n", string(data))

	st, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), st.Mode().Perm())
}

func TestCopyBinaryMissing(t *testing.T) {
	s, err := Stage(t.TempDir(), "foo")
	require.NoError(t, err)

	_, err = s.CopyBinary(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTargetNotFound)
}

func TestCopyLibraries(t *testing.T) {
	libs := t.TempDir()
	writeFile(t, filepath.Join(libs, "libbar.so.1.2.3"), "bar", 0644)
	require.NoError(t, os.Symlink("libbar.so.1.2.3", filepath.Join(libs, "libbar.so.1")))
	writeFile(t, filepath.Join(libs, "libbaz.so.2"), "baz", 0644)

	closure := ldd.Closure{
		"libbar.so.1":     filepath.Join(libs, "libbar.so.1"),
		"libbaz.so.2":     filepath.Join(libs, "libbaz.so.2"),
		"libmissing.so.9": "",
	}

	s, err := Stage(t.TempDir(), "foo-with_deps")
	require.NoError(t, err)

	copied, err := s.CopyLibraries(context.Background(), closure)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(s.Dir, "usr", "lib", "libbar.so.1"),
		filepath.Join(s.Dir, "usr", "lib", "libbaz.so.2"),
	}, copied)

	// symlinks are followed and stored under the linked name
	st, err := os.Lstat(copied[0])
	require.NoError(t, err)
	assert.True(t, st.Mode().IsRegular())
	data, err := os.ReadFile(copied[0])
	require.NoError(t, err)
	assert.Equal(t, "bar", string(data))

	_, err = os.Stat(filepath.Join(s.Dir, "usr", "lib", "libmissing.so.9"))
	assert.True(t, os.IsNotExist(err))
}

func TestCopyLibrariesFailure(t *testing.T) {
	closure := ldd.Closure{"libgone.so.1": filepath.Join(t.TempDir(), "libgone.so.1")}

	s, err := Stage(t.TempDir(), "foo-with_deps")
	require.NoError(t, err)

	_, err = s.CopyLibraries(context.Background(), closure)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrLibraryCopyFailed)

	md := core.Metadata(err)
	assert.Equal(t, "libgone.so.1", md["library"])
	assert.Equal(t, s.Dir, md["staging"])
}

func TestCopyLibrariesCancelled(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "libbar.so.1")
	writeFile(t, lib, "bar", 0644)

	s, err := Stage(t.TempDir(), "foo-with_deps")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.CopyLibraries(ctx, ldd.Closure{"libbar.so.1": lib})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCommitReplacesExisting(t *testing.T) {
	out := t.TempDir()
	final := filepath.Join(out, "foo-amd64-1.0")
	writeFile(t, filepath.Join(final, "stale.txt"), "old", 0644)

	s, err := Stage(out, "foo-amd64-1.0")
	require.NoError(t, err)
	staged := s.Dir

	require.NoError(t, s.Commit())
	assert.Equal(t, final, s.Dir)

	_, err = os.Stat(filepath.Join(final, "stale.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(final, "usr"))
	assert.NoError(t, err)
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err))

	// discarding a committed root is a no-op
	require.NoError(t, s.Discard())
	_, err = os.Stat(final)
	assert.NoError(t, err)
}

func TestDiscard(t *testing.T) {
	s, err := Stage(t.TempDir(), "foo")
	require.NoError(t, err)

	require.NoError(t, s.Discard())
	_, err = os.Stat(s.Dir)
	assert.True(t, os.IsNotExist(err))
}

func TestCopyFileDetectsDirectory(t *testing.T) {
	err := copyFile(t.TempDir(), filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}

func TestStageRejectsNestedName(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist")

	for _, name := range []string{"", ".", "..", "foo/bar", "../foo"} {
		_, err := Stage(out, name)
		assert.Error(t, err, name)
	}
	assert.NoDirExists(t, out)
}

func TestStageCleansUpOnFailure(t *testing.T) {
	out := t.TempDir()
	chmod = func(string, os.FileMode) error { return errors.New("read-only file system") }
	t.Cleanup(func() { chmod = os.Chmod })

	s, err := Stage(out, "foo-amd64-1.0")
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "read-only file system")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

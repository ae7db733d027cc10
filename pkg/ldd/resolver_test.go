package ldd_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/debpack/pkg/core"
	"github.com/arc-language/debpack/pkg/ldd"
)

type fakeRunner struct {
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.out), f.err
}

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
	return path
}

func TestResolver_Resolve(t *testing.T) {
	target := writeExecutable(t, t.TempDir(), "pcb2gcode")
	runner := &fakeRunner{out: glibcOutput}

	r := ldd.NewResolver(ldd.Options{Runner: runner, LddPath: "/usr/bin/ldd"})
	closure, err := r.Resolve(context.Background(), target)
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"/usr/bin/ldd", target}, runner.calls[0])

	assert.Equal(t, ldd.Closure{
		"libboost_program_options.so.1.74.0": "/lib/x86_64-linux-gnu/libboost_program_options.so.1.74.0",
		"libgerbv.so.1":                      "/lib/x86_64-linux-gnu/libgerbv.so.1",
		"libstdc++.so.6":                     "/lib/x86_64-linux-gnu/libstdc++.so.6",
		"libm.so.6":                          "/lib/x86_64-linux-gnu/libm.so.6",
		"libgcc_s.so.1":                      "/lib/x86_64-linux-gnu/libgcc_s.so.1",
		"libmissing.so.3":                    "",
	}, closure)
}

func TestResolver_ExtraExclude(t *testing.T) {
	target := writeExecutable(t, t.TempDir(), "app")
	runner := &fakeRunner{out: glibcOutput}

	r := ldd.NewResolver(ldd.Options{Runner: runner, Exclude: []string{"libstdc++*", "libm.so.6"}})
	closure, err := r.Resolve(context.Background(), target)
	require.NoError(t, err)

	assert.NotContains(t, closure, "libstdc++.so.6")
	assert.NotContains(t, closure, "libm.so.6")
	assert.Contains(t, closure, "libgcc_s.so.1")
}

func TestResolver_InspectFailure(t *testing.T) {
	target := writeExecutable(t, t.TempDir(), "static-app")
	runner := &fakeRunner{err: errors.New("not a dynamic executable")}

	r := ldd.NewResolver(ldd.Options{Runner: runner})
	closure, err := r.Resolve(context.Background(), target)

	require.Error(t, err)
	assert.Nil(t, closure)
	assert.True(t, errors.Is(err, core.ErrInspectFailed))
	assert.Contains(t, err.Error(), "not a dynamic executable")
	assert.Equal(t, target, core.Metadata(err)["target"])
}

func TestResolver_TargetChecks(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(plain, []byte("data"), 0644))

	tests := []struct {
		name   string
		target string
	}{
		{"missing", filepath.Join(dir, "nope")},
		{"empty path", ""},
		{"directory", dir},
		{"not executable", plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{out: glibcOutput}
			r := ldd.NewResolver(ldd.Options{Runner: runner})

			_, err := r.Resolve(context.Background(), tt.target)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrTargetNotFound))
			assert.Empty(t, runner.calls, "ldd must not run for an invalid target")
		})
	}
}

func TestResolver_StaticBinaryExitZero(t *testing.T) {
	target := writeExecutable(t, t.TempDir(), "static-app")
	runner := &fakeRunner{out: "\tstatically linked\n"}

	r := ldd.NewResolver(ldd.Options{Runner: runner})
	closure, err := r.Resolve(context.Background(), target)

	require.Error(t, err)
	assert.Nil(t, closure)
	assert.True(t, errors.Is(err, core.ErrInspectFailed))
	assert.True(t, errors.Is(err, ldd.ErrNotDynamic))
	assert.Equal(t, target, core.Metadata(err)["target"])
}

package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFail(t *testing.T) {
	cause := errors.New("permission denied")
	err := Fail(ErrLibraryCopyFailed, cause, "library", "libbar.so.1", "path", "/lib/libbar.so.1")

	assert.ErrorIs(t, err, ErrLibraryCopyFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "library copy failed: permission denied", err.Error())
	assert.Equal(t, map[string]any{
		"library": "libbar.so.1",
		"path":    "/lib/libbar.so.1",
	}, Metadata(err))
}

func TestFailWithoutCause(t *testing.T) {
	err := Fail(ErrTargetNotFound, nil, "target", "./foo")

	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.Equal(t, "target not found", err.Error())
	assert.Equal(t, "./foo", Metadata(err)["target"])
}

func TestMetadataThroughWrapping(t *testing.T) {
	inner := Fail(ErrInspectFailed, errors.New("exit status 1"), "target", "inner")
	outer := fmt.Errorf("resolve: %w", inner)

	assert.Equal(t, map[string]any{"target": "inner"}, Metadata(outer))
	assert.Empty(t, Metadata(errors.New("plain")))
	assert.Empty(t, Metadata(nil))
}

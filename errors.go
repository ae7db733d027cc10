// errors.go
package debpack

import (
	"fmt"

	"github.com/arc-language/debpack/pkg/core"
)

// Sentinels, matchable with errors.Is on anything Build returns
var (
	ErrTargetNotFound       = core.ErrTargetNotFound
	ErrInspectFailed        = core.ErrInspectFailed
	ErrMalformedMetadata    = core.ErrMalformedMetadata
	ErrMissingRequiredField = core.ErrMissingRequiredField
	ErrLibraryCopyFailed    = core.ErrLibraryCopyFailed
	ErrArchiveToolFailed    = core.ErrArchiveToolFailed
	ErrInvalidArchitecture  = core.ErrInvalidArchitecture
)

// Error wraps an error with additional context
type Error struct {
	Op      string // Operation that failed
	Package string // Package name if applicable
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Package, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

package core

import (
	"fmt"

	"go.trai.ch/zerr"
)

var (
	// ErrTargetNotFound is returned when the binary to package is missing or not executable.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrInspectFailed is returned when the dependency listing of the target cannot be obtained.
	ErrInspectFailed = zerr.New("dependency inspection failed")

	// ErrMalformedMetadata is returned when the info file cannot be read or parsed.
	ErrMalformedMetadata = zerr.New("malformed metadata")

	// ErrMissingRequiredField is returned when the info file lacks a package name.
	ErrMissingRequiredField = zerr.New("missing required field")

	// ErrLibraryCopyFailed is returned when a resolved library cannot be embedded.
	ErrLibraryCopyFailed = zerr.New("library copy failed")

	// ErrArchiveToolFailed is returned when building a package archive fails.
	ErrArchiveToolFailed = zerr.New("archive tool failed")

	// ErrInvalidArchitecture is returned when an explicit architecture override is unknown.
	ErrInvalidArchitecture = zerr.New("invalid architecture")
)

// Fail ties a sentinel to its underlying cause so errors.Is matches both.
// Metadata pairs are attached with zerr.With.
func Fail(sentinel, cause error, keyvals ...any) error {
	var err error
	if cause == nil {
		err = zerr.Wrap(sentinel, "")
	} else {
		err = fmt.Errorf("%w: %w", sentinel, cause)
	}
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		err = zerr.With(err, key, keyvals[i+1])
	}
	return err
}

// Metadata collects the zerr metadata attached anywhere along err's chain,
// outermost values winning.
func Metadata(err error) map[string]any {
	out := make(map[string]any)
	for err != nil {
		if z, ok := err.(*zerr.Error); ok {
			for k, v := range z.Metadata() {
				if _, seen := out[k]; !seen {
					out[k] = v
				}
			}
		}
		switch u := err.(type) {
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		case interface{ Unwrap() []error }:
			errs := u.Unwrap()
			if len(errs) == 0 {
				return out
			}
			for _, e := range errs[1:] {
				for k, v := range Metadata(e) {
					if _, seen := out[k]; !seen {
						out[k] = v
					}
				}
			}
			err = errs[0]
		default:
			return out
		}
	}
	return out
}

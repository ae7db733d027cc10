package ldd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrNotDynamic is returned by Parse when ldd reports a binary without a
// dynamic section, whatever its exit status.
var ErrNotDynamic = errors.New("not a dynamically linked executable")

// Parse reads ldd output and returns every library it lists, without filtering.
// A "statically linked" or "not a dynamic executable" line is ErrNotDynamic.
//
// Recognised line shapes:
//
//	libfoo.so.1 => /usr/lib/libfoo.so.1 (0x00007f...)
//	libbar.so.2 => not found
//	linux-vdso.so.1 (0x00007ffc...)
//	/lib64/ld-linux-x86-64.so.2 (0x00007f...)
func Parse(r io.Reader) (Closure, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	closure := make(Closure)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "statically linked" || strings.Contains(line, "not a dynamic executable") {
			return nil, fmt.Errorf("%w: %s", ErrNotDynamic, line)
		}

		soname, path, ok := parseLine(line)
		if !ok {
			continue
		}
		if existing, seen := closure[soname]; seen && existing != "" {
			continue
		}
		closure[soname] = path
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning ldd output: %w", err)
	}

	return closure, nil
}

func parseLine(line string) (soname, path string, ok bool) {
	if line == "" {
		return "", "", false
	}

	if left, rest, found := strings.Cut(line, "=>"); found {
		soname = strings.TrimSpace(left)
		rest = strings.TrimSpace(rest)
		if rest != "" {
			// "not found" and bare load addresses leave the path unresolved
			if tok := strings.Fields(rest)[0]; filepath.IsAbs(tok) {
				path = tok
			}
		}
		return soname, path, soname != ""
	}

	tok := strings.Fields(line)[0]
	if strings.HasPrefix(tok, "(") || strings.HasSuffix(tok, ":") {
		return "", "", false
	}
	if filepath.IsAbs(tok) {
		path = tok
	}
	return filepath.Base(tok), path, true
}

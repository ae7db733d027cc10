package control

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arc-language/debpack/pkg/arch"
	"github.com/arc-language/debpack/pkg/meta"
)

const (
	// DirName is the metadata directory inside an install root
	DirName = "DEBIAN"
	// FileName is the control record inside DirName
	FileName = "control"

	// Section is written into every record
	Section = "base"
	// Priority is written into every record
	Priority = "optional"
)

// Identity is the project identity stamped into every record
type Identity struct {
	Maintainer string
	Homepage   string
}

// Record is a binary package control stanza
type Record struct {
	Package      string
	Version      string
	Section      string
	Depends      string
	Priority     string
	Architecture string
	Description  string
	Maintainer   string
	Homepage     string
}

// NewRecord builds the control record for one install root. Depends is only
// set when the root does not embed its libraries and the package declares
// dependencies; that is the whole manifest difference between the thin and
// full packages.
func NewRecord(info *meta.PackageInfo, a arch.Architecture, embedsDeps bool, id Identity) *Record {
	rec := &Record{
		Package:      info.Name,
		Version:      info.Version,
		Section:      Section,
		Priority:     Priority,
		Architecture: a.String(),
		Description:  info.Description,
		Maintainer:   id.Maintainer,
		Homepage:     id.Homepage,
	}
	if !embedsDeps && info.Dependencies != "" {
		rec.Depends = info.Dependencies
	}
	return rec
}

// Format renders the record with fields in their fixed order. Every field
// but Description must fit on one line.
func (r *Record) Format(w io.Writer) error {
	fields := []struct{ name, value string }{
		{"Package", r.Package},
		{"Version", r.Version},
		{"Section", r.Section},
		{"Depends", r.Depends},
		{"Priority", r.Priority},
		{"Architecture", r.Architecture},
		{"Description", foldDescription(r.Description)},
		{"Maintainer", r.Maintainer},
		{"Homepage", r.Homepage},
	}

	var b bytes.Buffer
	for _, f := range fields {
		if f.name == "Depends" && f.value == "" {
			continue
		}
		if f.name != "Description" && strings.ContainsAny(f.value, "\r\n") {
			return fmt.Errorf("control field %s spans several lines: %q", f.name, f.value)
		}
		fmt.Fprintf(&b, "%s: %s\n", f.name, f.value)
	}

	_, err := w.Write(b.Bytes())
	return err
}

// Bytes returns the formatted record, or nil when it cannot be formatted
func (r *Record) Bytes() []byte {
	var b bytes.Buffer
	if err := r.Format(&b); err != nil {
		return nil
	}
	return b.Bytes()
}

// Write replaces <root>/DEBIAN and writes the control file into it
func Write(root string, r *Record) error {
	var record bytes.Buffer
	if err := r.Format(&record); err != nil {
		return err
	}

	dir := filepath.Join(root, DirName)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	// dpkg-deb rejects a control directory outside 0755..0775
	if err := os.Mkdir(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := os.Chmod(dir, 0755); err != nil {
		return fmt.Errorf("setting mode on %s: %w", dir, err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, record.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// foldDescription turns extra lines into control-file continuation lines
func foldDescription(desc string) string {
	lines := strings.Split(strings.TrimRight(desc, "\n"), "\n")
	for i := 1; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")
		if line == "" {
			line = "."
		}
		lines[i] = " " + line
	}
	return strings.Join(lines, "\n")
}

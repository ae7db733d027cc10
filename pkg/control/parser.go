package control

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Parse reads the first stanza of a control file
func Parse(r io.Reader) (*Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // Handle large descriptions

	var rec *Record
	var last string

	for scanner.Scan() {
		line := scanner.Text()

		// Empty line ends the stanza
		if line == "" {
			if rec != nil {
				break
			}
			continue
		}

		// Continuation line (starts with space or tab)
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if rec != nil && last == "Description" {
				cont := strings.TrimSpace(line)
				if cont == "." {
					cont = ""
				}
				rec.Description += "\n" + cont
			}
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)
		last = field

		if rec == nil {
			rec = &Record{}
		}

		switch field {
		case "Package":
			rec.Package = value
		case "Version":
			rec.Version = value
		case "Section":
			rec.Section = value
		case "Depends":
			rec.Depends = value
		case "Priority":
			rec.Priority = value
		case "Architecture":
			rec.Architecture = value
		case "Description":
			rec.Description = value
		case "Maintainer":
			rec.Maintainer = value
		case "Homepage":
			rec.Homepage = value
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning control file: %w", err)
	}
	if rec == nil || rec.Package == "" {
		return nil, fmt.Errorf("control file has no Package field")
	}

	return rec, nil
}

// Read parses <root>/DEBIAN/control
func Read(root string) (*Record, error) {
	f, err := os.Open(filepath.Join(root, DirName, FileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

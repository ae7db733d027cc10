package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/arc-language/debpack/pkg/control"
)

// Package is the content of a .deb file
type Package struct {
	Path    string
	Version string          // debian-binary, e.g. 2.0
	Members []string        // ar members in archive order
	Control *control.Record // DEBIAN/control
	Files   []string        // data entries, directories with a trailing slash
}

// Inspect reads the .deb at path. Members may be gzip, xz or zstd
// compressed, or plain tar.
func Inspect(path string) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening .deb file: %w", err)
	}
	defer f.Close()

	pkg := &Package{Path: path}
	arReader := ar.NewReader(f)

	for {
		header, err := arReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ar entry: %w", err)
		}

		name := strings.TrimSuffix(strings.TrimSpace(header.Name), "/")
		pkg.Members = append(pkg.Members, name)

		switch {
		case name == memberDebianBinary:
			data, err := io.ReadAll(arReader)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", name, err)
			}
			pkg.Version = strings.TrimSpace(string(data))

		case strings.HasPrefix(name, "control.tar"):
			rec, err := readControl(arReader, name)
			if err != nil {
				return nil, err
			}
			pkg.Control = rec

		case strings.HasPrefix(name, "data.tar"):
			files, err := listData(arReader, name)
			if err != nil {
				return nil, err
			}
			pkg.Files = files
		}
	}

	if len(pkg.Members) == 0 || pkg.Members[0] != memberDebianBinary {
		return nil, fmt.Errorf("%s: not a debian package", path)
	}
	if pkg.Control == nil {
		return nil, fmt.Errorf("%s: no control.tar.* member", path)
	}

	return pkg, nil
}

// openTar picks the decompressor from the member's extension
func openTar(r io.Reader, name string) (*tar.Reader, func(), error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return tar.NewReader(gzReader), func() { gzReader.Close() }, nil

	case strings.HasSuffix(name, ".xz"):
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating xz reader: %w", err)
		}
		return tar.NewReader(xzReader), func() {}, nil

	case strings.HasSuffix(name, ".zst"):
		zstdReader, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		return tar.NewReader(zstdReader), zstdReader.Close, nil

	case strings.HasSuffix(name, ".tar"):
		return tar.NewReader(r), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported member compression: %s", name)
	}
}

func readControl(r io.Reader, member string) (*control.Record, error) {
	tarReader, closeFn, err := openTar(r, member)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", member, err)
		}

		if cleanName(header.Name) != control.FileName {
			continue
		}
		data, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, fmt.Errorf("reading control file: %w", err)
		}
		return control.Parse(bytes.NewReader(data))
	}

	return nil, fmt.Errorf("%s has no control file", member)
}

func listData(r io.Reader, member string) ([]string, error) {
	tarReader, closeFn, err := openTar(r, member)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var files []string
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", member, err)
		}

		name := cleanName(header.Name)
		if name == "" {
			continue
		}
		if header.Typeflag == tar.TypeDir {
			name += "/"
		}
		files = append(files, name)
	}
	return files, nil
}

// cleanName strips the ./ prefix and any trailing slash
func cleanName(name string) string {
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimSuffix(name, "/")
	if name == "." {
		return ""
	}
	return name
}

package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/blakesmith/ar"
	"github.com/ulikunitz/xz"

	"github.com/arc-language/debpack/pkg/control"
)

const (
	// BinaryVersion is the content of the debian-binary member
	BinaryVersion = "2.0\n"

	memberDebianBinary = "debian-binary"
	memberControl      = "control.tar.xz"
	memberData         = "data.tar.xz"
)

// Native writes .deb files in-process: an ar container holding
// debian-binary, control.tar.xz and data.tar.xz. Every timestamp is ModTime
// and every entry is owned by root, so the same tree always produces the
// same bytes.
type Native struct {
	ModTime time.Time
}

// NewNative creates a native archiver stamped with SOURCE_DATE_EPOCH, or the
// Unix epoch when it is unset.
func NewNative() *Native {
	mtime := time.Unix(0, 0)
	if v := os.Getenv("SOURCE_DATE_EPOCH"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			mtime = time.Unix(secs, 0)
		}
	}
	return &Native{ModTime: mtime}
}

func (n *Native) Name() string { return "native" }

// Build archives root into root.deb. The package is written to a temporary
// file first and renamed into place.
func (n *Native) Build(ctx context.Context, root string) (Result, error) {
	root = filepath.Clean(root)
	res := Result{Root: root, Package: PackagePath(root)}

	if _, err := os.Stat(filepath.Join(root, control.DirName, control.FileName)); err != nil {
		return res, fmt.Errorf("no control file in %s: %w", root, err)
	}

	controlTar, err := n.tarXZ(filepath.Join(root, control.DirName), nil)
	if err != nil {
		return res, fmt.Errorf("building %s: %w", memberControl, err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	dataTar, err := n.tarXZ(root, func(rel string) bool { return rel == control.DirName })
	if err != nil {
		return res, fmt.Errorf("building %s: %w", memberData, err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(res.Package), "."+filepath.Base(res.Package)+".*")
	if err != nil {
		return res, err
	}
	defer os.Remove(tmp.Name())

	err = n.writeAr(tmp, []member{
		{memberDebianBinary, []byte(BinaryVersion)},
		{memberControl, controlTar},
		{memberData, dataTar},
	})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return res, fmt.Errorf("writing %s: %w", res.Package, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return res, err
	}
	if err := os.Rename(tmp.Name(), res.Package); err != nil {
		return res, err
	}

	res.Output = fmt.Sprintf("dpkg-deb: building package in '%s'.", res.Package)
	return res, nil
}

type member struct {
	name string
	data []byte
}

func (n *Native) writeAr(f *os.File, members []member) error {
	w := ar.NewWriter(f)
	if err := w.WriteGlobalHeader(); err != nil {
		return err
	}
	for _, m := range members {
		hdr := &ar.Header{
			Name:    m.name,
			ModTime: n.ModTime,
			Mode:    0644,
			Size:    int64(len(m.data)),
		}
		if err := w.WriteHeader(hdr); err != nil {
			return err
		}
		// ar pads odd-sized members per Write call, so write each in one go
		if _, err := w.Write(m.data); err != nil {
			return err
		}
	}
	return nil
}

// tarXZ archives the tree under dir as ./-relative entries, skipping any
// top-level entry for which skip returns true, and compresses it with xz.
func (n *Native) tarXZ(dir string, skip func(rel string) bool) ([]byte, error) {
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	tw := tar.NewWriter(xw)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if skip != nil && rel != "." && skip(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		return n.addEntry(tw, path, rel, d)
	})
	if err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := xw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Native) addEntry(tw *tar.Writer, path, rel string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	name := "./"
	if rel != "." {
		name += filepath.ToSlash(rel)
	}

	hdr := &tar.Header{
		Name:    name,
		Mode:    int64(info.Mode().Perm()),
		ModTime: n.ModTime,
		Uname:   "root",
		Gname:   "root",
		Format:  tar.FormatGNU,
	}

	switch {
	case info.IsDir():
		hdr.Typeflag = tar.TypeDir
		if rel != "." {
			hdr.Name += "/"
		}
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return err
		}
		hdr.Typeflag = tar.TypeSymlink
		hdr.Linkname = target
	case info.Mode().IsRegular():
		hdr.Typeflag = tar.TypeReg
		hdr.Size = info.Size()
	default:
		return fmt.Errorf("%s: unsupported file type %s", path, info.Mode().Type())
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if hdr.Typeflag != tar.TypeReg {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = tw.Write(data)
	return err
}

package tree

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// copyFile copies src (following symlinks) to dst with src's permissions and
// checks that both sides hash the same.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return err
	}
	if !st.Mode().IsRegular() {
		return fmt.Errorf("%s: not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, st.Mode().Perm())
	if err != nil {
		return err
	}

	srcHash := xxhash.New()
	written, err := io.Copy(io.MultiWriter(out, srcHash), in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if written != st.Size() {
		return fmt.Errorf("size mismatch for %s: expected %d, got %d", src, st.Size(), written)
	}

	// OpenFile only applies the mode on creation and through the umask
	if err := os.Chmod(dst, st.Mode().Perm()); err != nil {
		return err
	}

	dstHash, err := hashFile(dst)
	if err != nil {
		return err
	}
	if dstHash != srcHash.Sum64() {
		return fmt.Errorf("checksum mismatch after copying %s", src)
	}

	return nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

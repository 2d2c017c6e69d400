package stream

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Neumenon/nbt/nbt"
)

// ErrNoRoot is returned by ReadFile for a file holding no root.
var ErrNoRoot = errors.New("stream: no NBT root in file")

// ReadFile reads every root of an NBT file, detecting its compression
// unless WithCompression is given.
func ReadFile(path string, opts ...ReaderOption) ([]nbt.NamedTag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := NewReader(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer r.Close()

	roots, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRoot)
	}
	return roots, nil
}

// WriteFile writes root to path with compression c. The file is written to
// a temporary name in the same directory and renamed into place, so a
// failed write leaves any existing file untouched.
func WriteFile(path string, root nbt.NamedTag, c Compression, opts ...WriterOption) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w, err := NewWriter(tmp, c, opts...)
	if err != nil {
		return err
	}
	if err = w.WriteRoot(root); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

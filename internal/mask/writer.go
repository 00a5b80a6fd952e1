package mask

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteError reports a mask that could not be written to Path.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing mask %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Write emits one integer per line, in location order.
func Write(w io.Writer, m Mask) error {
	bw := bufio.NewWriter(w)
	for _, v := range m {
		bw.WriteString(strconv.Itoa(int(v)))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes the mask to path through a temporary file in the same
// directory, so path either holds the complete mask or is left untouched.
// The directory must already exist.
func WriteFile(path string, m Mask) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if err := Write(tmp, m); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

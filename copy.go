package roarchive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Copy writes the rest of the stream to w.
func Copy(w io.Writer, s *IStream) (int64, error) {
	n, err := io.Copy(w, s)
	if err != nil {
		return n, fmt.Errorf("copy %s: %w", s.Path(), err)
	}
	return n, nil
}

// CopyFile writes the rest of the stream to destPath atomically using a
// temp file in the destination directory. An existing file is replaced.
func CopyFile(s *IStream, destPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".roarchive-")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := Copy(tmp, s); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming to destination: %w", err)
	}

	success = true
	return nil
}

// Package fileutil holds the small file primitives shared by the flat-file stores.
package fileutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MaxLineSize bounds a single ledger or budget record. Longer lines are still
// read, so rewrites keep them, but they are never decoded.
const MaxLineSize = 1 << 20

// ErrLineTooLong marks a line over MaxLineSize.
var ErrLineTooLong = errors.New("line too long")

// ReadLines returns every line of path without trailing newlines. Blank lines
// are kept so that positions match the file. A missing file yields no lines
// and no error. Line length is not limited here; see CheckLine.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
}

// CheckLine returns an error wrapping ErrLineTooLong when line exceeds
// MaxLineSize.
func CheckLine(line string) error {
	if len(line) > MaxLineSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrLineTooLong, len(line), MaxLineSize)
	}
	return nil
}

// Excerpt shortens line for diagnostics.
func Excerpt(line string) string {
	const n = 80
	if len(line) <= n {
		return line
	}
	return line[:n] + "..."
}

// AppendLines appends each line followed by a newline, creating the file and its
// directory when needed. Lines already written stay written if a later write fails.
func AppendLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", path, err)
	}
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("append to %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WriteLinesAtomic replaces path with the given lines by writing a temporary
// file in the same directory and renaming it over the target.
func WriteLinesAtomic(path string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return WriteFileAtomic(path, []byte(b.String()))
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

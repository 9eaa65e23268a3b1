// Package backup archives the ledger and budget files into timestamped zip
// bundles, keeps a bounded number of them and restores from a chosen one.
package backup

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"fintrack/internal/fileutil"
	"fintrack/internal/log"
)

const (
	DefaultPrefix    = "finance_tracker_backup"
	DefaultRetention = 10

	timestampLayout = "20060102_150405"
	archiveExt      = ".zip"
)

var (
	ErrNotFound    = errors.New("backup archive not found")
	ErrUnsafeEntry = errors.New("archive entry escapes the restore directory")
)

// Manager creates, lists and restores archives in Dir.
type Manager struct {
	// Sources are the files bundled into each archive, stored by base name.
	Sources   []string
	Dir       string
	Prefix    string
	Retention int
	Now       func() time.Time

	remove func(string) error // os.Remove when nil
}

// Result describes one Create call.
type Result struct {
	Path     string
	Included []string
	Missing  []string
	Removed  []string
}

// Archive is one backup file on disk.
type Archive struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time

	stamp time.Time
	seq   int
}

func (m *Manager) prefix() string {
	if m.Prefix == "" {
		return DefaultPrefix
	}
	return m.Prefix
}

func (m *Manager) retention() int {
	if m.Retention <= 0 {
		return DefaultRetention
	}
	return m.Retention
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// Create writes a new archive and then evicts the oldest ones beyond the
// retention cap. A missing source is skipped with a warning. A failed
// eviction is logged and does not fail the call.
func (m *Manager) Create(ctx context.Context) (Result, error) {
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return Result{}, errors.Wrap(err, "create backup directory")
	}

	final, err := m.nextName(m.now())
	if err != nil {
		return Result{}, err
	}

	tmp, err := os.CreateTemp(m.Dir, "."+m.prefix()+"-*.tmp")
	if err != nil {
		return Result{}, errors.Wrap(err, "create temp archive")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	res := Result{Path: final}
	zw := zip.NewWriter(tmp)
	for _, src := range m.Sources {
		ok, err := addFile(zw, src)
		if err != nil {
			zw.Close()
			tmp.Close()
			return Result{}, err
		}
		if !ok {
			slog.WarnContext(ctx, "Backup source missing, skipped", log.FieldPath, src)
			res.Missing = append(res.Missing, src)
			continue
		}
		res.Included = append(res.Included, filepath.Base(src))
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return Result{}, errors.Wrap(err, "finish archive")
	}
	if err := tmp.Close(); err != nil {
		return Result{}, errors.Wrap(err, "close archive")
	}
	if err := os.Rename(tmpName, final); err != nil {
		return Result{}, errors.Wrap(err, "move archive into place")
	}

	slog.InfoContext(ctx, "Backup created",
		log.FieldArchive, filepath.Base(final),
		"included", len(res.Included),
		"missing", len(res.Missing))

	res.Removed = m.cleanup(ctx)
	return res, nil
}

// nextName picks <prefix>_<stamp>.zip. When archives with the same stamp
// exist it appends _N, one past the highest sequence in use.
func (m *Manager) nextName(at time.Time) (string, error) {
	archives, err := m.scan()
	if err != nil {
		return "", err
	}
	stamp := at.Format(timestampLayout)
	seq := -1
	for _, a := range archives {
		if a.stamp.Format(timestampLayout) == stamp && a.seq > seq {
			seq = a.seq
		}
	}
	name := m.prefix() + "_" + stamp
	if seq >= 0 {
		name += "_" + strconv.Itoa(seq+1)
	}
	return filepath.Join(m.Dir, name+archiveExt), nil
}

func addFile(zw *zip.Writer, src string) (bool, error) {
	f, err := os.Open(src)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "open %s", src)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, errors.Wrapf(err, "stat %s", src)
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return false, errors.Wrapf(err, "header for %s", src)
	}
	hdr.Name = filepath.Base(src)
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return false, errors.Wrapf(err, "add %s", src)
	}
	if _, err := io.Copy(w, f); err != nil {
		return false, errors.Wrapf(err, "write %s", src)
	}
	return true, nil
}

// cleanup removes the oldest archives beyond the retention cap and returns
// the names it removed.
func (m *Manager) cleanup(ctx context.Context) []string {
	archives, err := m.scan()
	if err != nil {
		slog.WarnContext(ctx, "Backup cleanup skipped", log.FieldError, err)
		return nil
	}
	keep := m.retention()
	if len(archives) <= keep {
		return nil
	}
	var removed []string
	for _, a := range archives[:len(archives)-keep] {
		if err := m.removeFile(a.Path); err != nil {
			slog.ErrorContext(ctx, "Failed to remove old backup", log.FieldArchive, a.Name, log.FieldError, err)
			continue
		}
		removed = append(removed, a.Name)
	}
	if len(removed) > 0 {
		slog.InfoContext(ctx, "Old backups removed", log.FieldCount, len(removed))
	}
	return removed
}

func (m *Manager) removeFile(p string) error {
	if m.remove != nil {
		return m.remove(p)
	}
	return os.Remove(p)
}

// List returns the archives newest first.
func (m *Manager) List() ([]Archive, error) {
	archives, err := m.scan()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(archives)-1; i < j; i, j = i+1, j-1 {
		archives[i], archives[j] = archives[j], archives[i]
	}
	return archives, nil
}

// scan returns the archives oldest first: by modification time, then by
// the timestamp and sequence in the name.
func (m *Manager) scan() ([]Archive, error) {
	entries, err := os.ReadDir(m.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read backup directory")
	}

	var out []Archive
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stamp, seq, ok := m.parseName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Archive{
			Name:    e.Name(),
			Path:    filepath.Join(m.Dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			stamp:   stamp,
			seq:     seq,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.Before(b.ModTime)
		}
		if !a.stamp.Equal(b.stamp) {
			return a.stamp.Before(b.stamp)
		}
		return a.seq < b.seq
	})
	return out, nil
}

func (m *Manager) parseName(name string) (time.Time, int, bool) {
	rest, ok := strings.CutPrefix(name, m.prefix()+"_")
	if !ok {
		return time.Time{}, 0, false
	}
	rest, ok = strings.CutSuffix(rest, archiveExt)
	if !ok || len(rest) < len(timestampLayout) {
		return time.Time{}, 0, false
	}
	stamp, err := time.Parse(timestampLayout, rest[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, 0, false
	}
	seq := 0
	if suffix := rest[len(timestampLayout):]; suffix != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(suffix, "_"))
		if err != nil || !strings.HasPrefix(suffix, "_") {
			return time.Time{}, 0, false
		}
		seq = n
	}
	return stamp, seq, true
}

// Restore extracts every entry of archive into destDir, overwriting files
// already there. archive is either a name inside Dir or a path. The call never
// asks for confirmation. Entries are written one by one, so a failure can
// leave some files restored.
func (m *Manager) Restore(ctx context.Context, archive, destDir string) ([]string, error) {
	p := archive
	if filepath.Base(archive) == archive {
		p = filepath.Join(m.Dir, archive)
	}
	zr, err := zip.OpenReader(p)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrNotFound, archive)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open archive %s", archive)
	}
	defer zr.Close()

	var files []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !safeEntry(f.Name) {
			return nil, errors.Wrap(ErrUnsafeEntry, f.Name)
		}
		files = append(files, f)
	}

	restored := make([]string, 0, len(files))
	for _, f := range files {
		name := path.Base(f.Name)
		if err := extract(f, filepath.Join(destDir, name)); err != nil {
			return restored, err
		}
		restored = append(restored, name)
	}

	slog.InfoContext(ctx, "Backup restored",
		log.FieldArchive, filepath.Base(p),
		"restored", strings.Join(restored, ","))
	return restored, nil
}

// safeEntry accepts plain file names only.
func safeEntry(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return false
	}
	return !strings.Contains(name, ":")
}

func extract(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, "open entry %s", f.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return errors.Wrapf(err, "read entry %s", f.Name)
	}
	if err := fileutil.WriteFileAtomic(dest, data); err != nil {
		return errors.Wrapf(err, "restore %s", f.Name)
	}
	return nil
}

// String renders the archive for listings.
func (a Archive) String() string {
	return fmt.Sprintf("%s (%d bytes, %s)", a.Name, a.Size, a.ModTime.Format(time.DateTime))
}

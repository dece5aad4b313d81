package logkit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
)

// RotateOptions tunes file rotation behavior.
type RotateOptions struct {
	// MaxBytes is the size threshold for size-based rotation. Zero means
	// the 10 MiB default.
	MaxBytes int64
	// Backups is how many rotated files to retain (numbered backups for
	// size rotation, days for date rotation). Zero means the default of 5
	// backups / 14 days.
	Backups int
	// Compress gzips rotated backups.
	Compress bool
}

const (
	defaultMaxBytes = int64(10 << 20)
	defaultBackups  = 5
	defaultMaxDays  = 14
)

func openLogFile(path string) (*os.File, int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, 0, fmt.Errorf("logkit: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, 0, fmt.Errorf("logkit: open log file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("logkit: stat log file: %w", err)
	}
	return f, st.Size(), nil
}

// SizeRotatingFileHandler writes UTF-8 lines to a file and rotates when the
// file would exceed a byte threshold: the current file becomes path.1,
// existing backups shift up, and the oldest beyond the retention count is
// deleted. The rotation check and the write share one critical section.
type SizeRotatingFileHandler struct {
	mu        sync.Mutex
	f         *os.File
	size      int64
	path      string
	maxBytes  int64
	backups   int
	compress  bool
	level     Level
	formatter Formatter
}

// NewSizeRotatingFileHandler opens (or creates) path for appending. An
// unwritable path fails construction immediately.
func NewSizeRotatingFileHandler(path string, level Level, formatter Formatter, opts RotateOptions) (*SizeRotatingFileHandler, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.Backups <= 0 {
		opts.Backups = defaultBackups
	}
	f, size, err := openLogFile(path)
	if err != nil {
		return nil, err
	}
	return &SizeRotatingFileHandler{
		f:         f,
		size:      size,
		path:      path,
		maxBytes:  opts.MaxBytes,
		backups:   opts.Backups,
		compress:  opts.Compress,
		level:     level,
		formatter: formatter,
	}, nil
}

func (h *SizeRotatingFileHandler) Write(r *Record) error {
	if r.Level < h.level {
		return nil
	}
	line, err := h.formatter.Format(r)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.size > 0 && h.size+int64(len(line)) > h.maxBytes {
		if err := h.rotate(); err != nil {
			return err
		}
	}
	n, err := h.f.Write(line)
	h.size += int64(n)
	return err
}

// rotate renames the current file to path.1 after shifting existing
// backups up by one index. Caller holds h.mu.
func (h *SizeRotatingFileHandler) rotate() error {
	if err := h.f.Close(); err != nil {
		return err
	}
	ext := ""
	if h.compress {
		ext = ".gz"
	}
	os.Remove(h.backupName(h.backups) + ext)
	for i := h.backups - 1; i >= 1; i-- {
		src := h.backupName(i) + ext
		if _, err := os.Stat(src); err == nil {
			os.Rename(src, h.backupName(i+1)+ext)
		}
	}
	if h.compress {
		if err := gzipFile(h.path, h.backupName(1)+ext); err != nil {
			return err
		}
		os.Remove(h.path)
	} else if err := os.Rename(h.path, h.backupName(1)); err != nil {
		return err
	}
	f, size, err := openLogFile(h.path)
	if err != nil {
		return err
	}
	h.f, h.size = f, size
	return nil
}

func (h *SizeRotatingFileHandler) backupName(i int) string {
	return h.path + "." + strconv.Itoa(i)
}

func (h *SizeRotatingFileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.f.Close()
}

// DailyRotatingFileHandler rotates at local midnight regardless of size.
// Backups are suffixed with the rotation date (path.2006-01-02) and pruned
// beyond the retained number of days.
type DailyRotatingFileHandler struct {
	mu        sync.Mutex
	f         *os.File
	path      string
	day       time.Time
	maxDays   int
	compress  bool
	level     Level
	formatter Formatter
	now       func() time.Time
}

// NewDailyRotatingFileHandler opens (or creates) path for appending. The
// current file's day is taken from its modification time when it already
// holds data, so a restart does not reset the rotation boundary.
func NewDailyRotatingFileHandler(path string, level Level, formatter Formatter, opts RotateOptions) (*DailyRotatingFileHandler, error) {
	if opts.Backups <= 0 {
		opts.Backups = defaultMaxDays
	}
	f, size, err := openLogFile(path)
	if err != nil {
		return nil, err
	}
	h := &DailyRotatingFileHandler{
		f:         f,
		path:      path,
		maxDays:   opts.Backups,
		compress:  opts.Compress,
		level:     level,
		formatter: formatter,
		now:       time.Now,
	}
	h.day = midnightOf(h.now())
	if size > 0 {
		if st, err := os.Stat(path); err == nil {
			h.day = midnightOf(st.ModTime())
		}
	}
	return h, nil
}

func midnightOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (h *DailyRotatingFileHandler) Write(r *Record) error {
	if r.Level < h.level {
		return nil
	}
	line, err := h.formatter.Format(r)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if today := midnightOf(h.now()); today.After(h.day) {
		if err := h.rotate(); err != nil {
			return err
		}
		h.day = today
	}
	_, err = h.f.Write(line)
	return err
}

// rotate archives the current file under its day's date suffix and reopens
// a fresh file. Caller holds h.mu.
func (h *DailyRotatingFileHandler) rotate() error {
	if err := h.f.Close(); err != nil {
		return err
	}
	backup := h.path + "." + h.day.Format("2006-01-02")
	if h.compress {
		if err := gzipFile(h.path, backup+".gz"); err != nil {
			return err
		}
		os.Remove(h.path)
	} else if err := os.Rename(h.path, backup); err != nil {
		return err
	}
	h.prune()
	f, _, err := openLogFile(h.path)
	if err != nil {
		return err
	}
	h.f = f
	return nil
}

// prune deletes dated backups beyond the newest maxDays.
func (h *DailyRotatingFileHandler) prune() {
	matches, err := filepath.Glob(h.path + ".*")
	if err != nil {
		return
	}
	type backup struct {
		path string
		day  time.Time
	}
	var dated []backup
	for _, m := range matches {
		suffix := strings.TrimPrefix(m, h.path+".")
		suffix = strings.TrimSuffix(suffix, ".gz")
		day, err := time.ParseInLocation("2006-01-02", suffix, h.day.Location())
		if err != nil {
			continue
		}
		dated = append(dated, backup{path: m, day: day})
	}
	sort.Slice(dated, func(i, j int) bool { return dated[i].day.After(dated[j].day) })
	for i := h.maxDays; i < len(dated); i++ {
		os.Remove(dated[i].path)
	}
}

func (h *DailyRotatingFileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.f.Close()
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		out.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Package sessionlog reads and writes archived session logs. Files are JSON
// objects named playerlog_YYYYMMDD_HHMMSS.json.
package sessionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/okian/persona/internal/domain/model"
)

// Default file naming.
const (
	DefaultPattern = "playerlog_*.json"
	filePrefix     = "playerlog_"
	fileLayout     = "20060102_150405"
	fileExt        = ".json"
)

// FileName is the log file name for a session that ended at ts.
func FileName(ts time.Time) string {
	return filePrefix + ts.Format(fileLayout) + fileExt
}

// Write stores log in dir under FileName(ts). The file is written to a temp
// file in dir and renamed into place, so readers never see a partial log. A
// name already taken gets a numeric suffix.
func Write(dir string, log *model.SessionLog, ts time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrWriteLog, dir, err)
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encode: %w", ErrWriteLog, err)
	}

	tmp, err := os.CreateTemp(dir, ".playerlog-*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: create temp: %w", ErrWriteLog, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%w: write temp: %w", ErrWriteLog, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%w: sync temp: %w", ErrWriteLog, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close temp: %w", ErrWriteLog, err)
	}

	path := uniquePath(dir, FileName(ts))
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("%w: rename: %w", ErrWriteLog, err)
	}
	return path, nil
}

// Save writes log to dir. If that fails it makes a best-effort copy in the
// system temp directory and returns its path together with the original error.
func Save(dir string, log *model.SessionLog, ts time.Time) (string, error) {
	path, err := Write(dir, log, ts)
	if err == nil {
		return path, nil
	}
	partial, perr := Write(os.TempDir(), log, ts)
	if perr != nil {
		return "", err
	}
	return partial, err
}

func uniquePath(dir, name string) string {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	base := name[:len(name)-len(fileExt)]
	for i := 1; ; i++ {
		p := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, fileExt))
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p
		}
	}
}

// Read loads one log file.
func Read(path string) (*model.SessionLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadLog, path, err)
	}
	var log model.SessionLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeLog, path, err)
	}
	if (len(log.PositionT) > 0 && len(log.PositionT) != len(log.Positions)) ||
		(len(log.ActionT) > 0 && len(log.ActionT) != len(log.Actions)) {
		return nil, fmt.Errorf("%w: %s: timestamp arrays do not match samples", ErrDecodeLog, path)
	}
	return &log, nil
}

// List returns the files in dir matching pattern, sorted by name. An empty
// pattern means DefaultPattern.
func List(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadLog, dir, err)
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %w", ErrReadLog, pattern, err)
	}
	sort.Strings(files)
	return files, nil
}

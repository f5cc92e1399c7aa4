package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrDataUnavailable signals that no dataset exists for a requested BS year.
// Callers treat it as "no events found", never as fatal.
var ErrDataUnavailable = errors.New("calendar data unavailable")

// Loader supplies the yearly dataset. The file loader is the production
// implementation; tests substitute in-memory loaders.
type Loader interface {
	LoadYear(ctx context.Context, bsYear int) (YearCalendar, error)
}

// FileLoader reads per-year JSON documents named <bsYear>.json from a
// single directory.
type FileLoader struct {
	dir string
}

// NewFileLoader creates a loader rooted at dir. The directory is not
// validated up front; a missing directory surfaces as ErrDataUnavailable
// on the first load.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir}
}

// LoadYear reads and decodes the dataset for one BS year.
func (l *FileLoader) LoadYear(ctx context.Context, bsYear int) (YearCalendar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(l.dir, fmt.Sprintf("%d.json", bsYear))
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("year %d: %w", bsYear, ErrDataUnavailable)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cal YearCalendar
	if err := json.Unmarshal(raw, &cal); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if cal.Days() == 0 {
		return nil, fmt.Errorf("year %d: empty dataset: %w", bsYear, ErrDataUnavailable)
	}
	return cal, nil
}

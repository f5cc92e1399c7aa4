package flagstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File is a Store backed by a single JSON document on disk. Flags are
// held in memory and written through on every mutation. Any I/O error
// downgrades the store to memory-only behavior for that operation.
type File struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	flags map[string]string
}

// OpenFile loads (or initializes) the flag file at path. A missing file
// is a normal first run; an unreadable or corrupt file starts empty so
// the reminder feature keeps working, at the cost of possible repeats.
func OpenFile(path string, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.Default()
	}
	f := &File{path: path, logger: logger, flags: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Flag file unreadable, starting empty", "path", path, "error", err)
		}
		return f
	}
	if err := json.Unmarshal(raw, &f.flags); err != nil {
		logger.Warn("Flag file corrupt, starting empty", "path", path, "error", err)
		f.flags = make(map[string]string)
	}
	return f
}

func (f *File) Get(_ context.Context, key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.flags[key]
	return v, ok
}

func (f *File) Set(_ context.Context, key, value string) {
	f.mu.Lock()
	f.flags[key] = value
	f.mu.Unlock()
	f.persist()
}

func (f *File) Remove(_ context.Context, key string) {
	f.mu.Lock()
	delete(f.flags, key)
	f.mu.Unlock()
	f.persist()
}

func (f *File) List(_ context.Context, prefix string) map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string)
	for k, v := range f.flags {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out
}

// persist writes the whole map atomically (temp file + rename). Failures
// are logged and swallowed; the in-memory view stays authoritative.
func (f *File) persist() {
	f.mu.RLock()
	raw, err := json.MarshalIndent(f.flags, "", "  ")
	f.mu.RUnlock()
	if err != nil {
		f.logger.Warn("Flag file marshal failed", "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		f.logger.Warn("Flag dir create failed", "path", f.path, "error", err)
		return
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		f.logger.Warn("Flag file write failed", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, f.path); err != nil {
		f.logger.Warn("Flag file rename failed", "path", f.path, "error", err)
	}
}

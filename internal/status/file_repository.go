package status

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const statusFileName = "daily_notification_status.json"

// FileRepository stores the status document as a JSON file in the storage
// directory. The whole document is rewritten on every update.
type FileRepository struct {
	path string

	mu sync.Mutex
}

// NewFileRepository creates a file-backed status repository rooted at the
// given directory.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{path: filepath.Join(dir, statusFileName)}
}

// Sent reports whether the day's notification was recorded.
func (r *FileRepository) Sent(_ context.Context, day string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return false, err
	}
	return doc[day], nil
}

// MarkSent records the day's notification in the document.
func (r *FileRepository) MarkSent(_ context.Context, day string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	doc[day] = true
	return r.save(doc)
}

// load reads the whole document; a missing file is an empty document.
func (r *FileRepository) load() (map[string]bool, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read status file: %w", err)
	}

	var doc map[string]bool
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse status file: %w", err)
	}
	if doc == nil {
		doc = map[string]bool{}
	}
	return doc, nil
}

// save rewrites the whole document.
func (r *FileRepository) save(doc map[string]bool) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status document: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write status file: %w", err)
	}
	return nil
}

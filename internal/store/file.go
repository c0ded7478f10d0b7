package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/comigor/chatlogger-go/internal/logger"
	"github.com/comigor/chatlogger-go/internal/record"
)

// FileStore keeps one JSON file per record in Dir. Recency is the file
// modification time, which equals creation time since files are never rewritten.
type FileStore struct {
	Dir string

	now func() time.Time
}

// NewFileStore returns a store rooted at dir. The directory is created on the
// first Append, not here.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, now: time.Now}
}

// FileName is the name a record is written under.
func FileName(conversationID string, at time.Time) string {
	return fmt.Sprintf("conversation_%s_%s.json", conversationID, at.Format("20060102_150405"))
}

// Append writes rec as indented JSON and returns the file path.
func (s *FileStore) Append(ctx context.Context, rec record.ConversationRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := record.ValidateConversationID(rec.ConversationID); err != nil {
		return "", fmt.Errorf("record %q: %w", rec.ConversationID, err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create store dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	path := filepath.Join(s.Dir, FileName(rec.ConversationID, s.now()))
	// O_EXCL: records are immutable, never overwrite an existing file.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create record file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write record file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close record file: %w", err)
	}
	return path, nil
}

// List reads every *.json file in Dir. A missing Dir is an empty store; a file
// that cannot be read is logged and skipped.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.Dir, de.Name())
		info, err := de.Info()
		if err != nil {
			logger.L.Warn("skipping unreadable record file", "file", path, "error", err)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logger.L.Warn("skipping unreadable record file", "file", path, "error", err)
			continue
		}
		entries = append(entries, Entry{Key: de.Name(), ModTime: info.ModTime(), Data: data})
	}
	SortNewestFirst(entries)
	logger.L.Debug("listed record files", "dir", s.Dir, "count", len(entries))
	return entries, nil
}

// Package store persists conversation records and lists them newest-first.
package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/comigor/chatlogger-go/internal/config"
	"github.com/comigor/chatlogger-go/internal/record"
)

// Entry is one persisted record as stored. Data is undecoded: readers must
// treat it as untrusted input.
type Entry struct {
	Key     string
	ModTime time.Time
	Data    []byte
}

// Store is an append-only collection of records. List returns entries sorted
// by ModTime descending; a store that does not exist yet lists as empty.
type Store interface {
	List(ctx context.Context) ([]Entry, error)
	Append(ctx context.Context, rec record.ConversationRecord) (string, error)
}

// New opens the store selected by cfg.Driver.
func New(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverFile, "":
		return NewFileStore(cfg.Dir), nil
	case config.DriverSQLite:
		return NewSQLiteStore(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// SortNewestFirst orders by ModTime descending, then Key for a stable order.
func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].ModTime.After(entries[j].ModTime)
		}
		return entries[i].Key > entries[j].Key
	})
}

// Package store persists the clip history between runs.
//
// Two backends exist. File keeps the history as a JSON array of strings,
// optionally sealed with a passphrase. SQLite keeps one row per entry.
// Both treat the history as an opaque ordered list; deduplication and
// bounds belong to the history package.
package store

import (
	"errors"
	"fmt"
	"os"
)

// ErrCorrupt is returned when persisted history cannot be decoded.
var ErrCorrupt = errors.New("history data is corrupt")

// ErrSealed is returned when the history file is sealed and no passphrase
// was configured.
var ErrSealed = errors.New("history file is sealed; a passphrase is required")

// Kind selects a backend.
type Kind string

const (
	KindJSON   Kind = "json"
	KindSQLite Kind = "sqlite"
)

// Persister loads and saves the ordered history, most recent first.
type Persister interface {
	// Load returns the stored entries. A missing store yields an empty list
	// and no error.
	Load() ([]string, error)
	Save(entries []string) error
	// Location describes where the data lives, for logs and status output.
	Location() string
	Close() error
}

// Options configures Open.
type Options struct {
	Kind       Kind
	Dir        string
	Passphrase string
}

// Open creates the data directory if needed and returns the selected backend.
func Open(opts Options) (Persister, error) {
	if opts.Dir == "" {
		return nil, errors.New("store: data directory not set")
	}
	if err := os.MkdirAll(opts.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", opts.Dir, err)
	}
	switch opts.Kind {
	case KindJSON, "":
		return OpenFile(opts.Dir, opts.Passphrase)
	case KindSQLite:
		if opts.Passphrase != "" {
			return nil, errors.New("store: passphrase sealing is only supported by the json store")
		}
		return OpenSQLite(opts.Dir)
	default:
		return nil, fmt.Errorf("store: unknown kind %q (want json or sqlite)", opts.Kind)
	}
}

package store

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.klb.dev/smartclip/internal/crypto"
)

// FileName is the history file inside the data directory.
const FileName = "history.json"

var sealedMagic = []byte("smartclip-sealed-v1\n")

// File stores the history as a JSON array in a single file.
type File struct {
	path       string
	passphrase string
	key        *crypto.Key
}

// OpenFile returns the JSON file store in dir. A non-empty passphrase seals
// the file on every save; existing plain files are still read.
func OpenFile(dir, passphrase string) (*File, error) {
	return &File{path: filepath.Join(dir, FileName), passphrase: passphrase}, nil
}

func (f *File) Location() string { return f.path }

func (f *File) Close() error { return nil }

func (f *File) Load() ([]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	if bytes.HasPrefix(data, sealedMagic) {
		data, err = f.open(data[len(sealedMagic):])
		if err != nil {
			return nil, err
		}
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	if entries == nil {
		entries = []string{}
	}
	return entries, nil
}

// Save writes entries to a temp file and renames it into place, so a crash
// mid-write never leaves a truncated history.
func (f *File) Save(entries []string) error {
	if entries == nil {
		entries = []string{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if f.passphrase != "" {
		if data, err = f.seal(data); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (f *File) seal(plain []byte) ([]byte, error) {
	if f.key == nil {
		k, err := crypto.NewKey(f.passphrase)
		if err != nil {
			return nil, fmt.Errorf("seal history: %w", err)
		}
		f.key = k
	}
	sealed, err := f.key.Seal(plain)
	if err != nil {
		return nil, fmt.Errorf("seal history: %w", err)
	}
	out := append([]byte(nil), sealedMagic...)
	return base64.StdEncoding.AppendEncode(out, sealed), nil
}

func (f *File) open(body []byte) ([]byte, error) {
	if f.passphrase == "" {
		return nil, ErrSealed
	}
	sealed, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	salt, err := crypto.SaltOf(sealed)
	if err != nil {
		return nil, err
	}
	if f.key == nil || !bytes.Equal(f.key.Salt(), salt) {
		k, err := crypto.DeriveKey(f.passphrase, salt)
		if err != nil {
			return nil, err
		}
		f.key = k
	}
	return f.key.Open(sealed)
}

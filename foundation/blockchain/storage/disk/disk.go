// Package disk implements the ability to read and write the chain to a
// single JSON document on disk.
package disk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Disk represents the serialization implementation for reading and storing
// the chain in one file on disk. This implements the database.Storage
// interface.
type Disk struct {
	mu     sync.Mutex
	dbPath string
}

// New constructs a Disk value for use. The directory holding the file is
// created if it doesn't exist.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since the file is
// opened and closed on every read and write.
func (d *Disk) Close() error {
	return nil
}

// Load reads the chain back from disk. A missing or empty file returns no
// blocks. A file that can't be decoded returns database.ErrCorrupt.
func (d *Disk) Load() ([]database.Block, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.dbPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var blocks []database.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", database.ErrCorrupt, d.dbPath, err)
	}

	return blocks, nil
}

// Save replaces the file on disk with the specified chain. The chain is
// written to a temporary file first and renamed into place so a crash
// never leaves a partial document behind.
func (d *Disk) Save(blocks []database.Block) error {

	// Marshal the chain for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	f, err := os.CreateTemp(filepath.Dir(d.dbPath), filepath.Base(d.dbPath)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, d.dbPath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}

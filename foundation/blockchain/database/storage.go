package database

import "errors"

// ErrCorrupt is returned by a Storage when the persisted chain exists but
// can't be decoded.
var ErrCorrupt = errors.New("stored chain is corrupt")

// Storage interface represents the behavior required to be implemented by any
// package providing support for persisting the chain. The chain is always
// written and read back as one document.
type Storage interface {
	Load() ([]Block, error)
	Save(blocks []Block) error
	Close() error
}

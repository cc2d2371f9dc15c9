// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Default genesis values. Every node must agree on these so independently
// initialized nodes produce the same genesis block.
const (
	DefaultTimestamp  = 1700000000
	DefaultPayload    = "GENESIS"
	DefaultDifficulty = 4
)

// maxDifficulty is the number of hex digits in a block hash.
const maxDifficulty = 64

// Genesis represents the genesis file.
type Genesis struct {
	Timestamp  int64  `json:"timestamp"`  // Fixed creation time of the genesis block.
	Payload    string `json:"payload"`    // Sentinel payload carried by the genesis block.
	Difficulty uint16 `json:"difficulty"` // Number of leading 0's a block hash needs.
}

// Default returns the genesis values used when no file is provided.
func Default() Genesis {
	return Genesis{
		Timestamp:  DefaultTimestamp,
		Payload:    DefaultPayload,
		Difficulty: DefaultDifficulty,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. An empty path returns the
// default genesis. Fields missing from the file keep their default value.
func Load(path string) (Genesis, error) {
	genesis := Default()
	if path == "" {
		return genesis, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis file: %w", err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis values can produce a usable chain.
func (g Genesis) Validate() error {
	if g.Difficulty == 0 || g.Difficulty > maxDifficulty {
		return fmt.Errorf("difficulty must be between 1 and %d, got %d", maxDifficulty, g.Difficulty)
	}

	if g.Payload == "" {
		return errors.New("payload sentinel must not be empty")
	}

	return nil
}

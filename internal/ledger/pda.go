// Package ledger reads accumulated trading fees for a campaign token from
// its on-chain bonding-curve pool account.
package ledger

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// DBCProgramID is the dynamic bonding curve program that owns pool accounts.
const DBCProgramID = "dbcij3LWUppWqq96dh6gJWwBifmcGfLSB5D4DuSMaqN"

const (
	poolSeed  = "pool"
	pdaMarker = "ProgramDerivedAddress"
)

// DerivePoolAddress derives the bonding-curve pool account address for a
// token. Seeds are "pool", the pool config key, then the two mint keys
// ordered by descending byte comparison, matching the program's own
// derivation. All keys are base58-encoded 32-byte addresses.
func DerivePoolAddress(quoteMint, baseMint, poolConfig string) (string, error) {
	quote, err := decodeKey(quoteMint)
	if err != nil {
		return "", fmt.Errorf("quote mint: %w", err)
	}
	base, err := decodeKey(baseMint)
	if err != nil {
		return "", fmt.Errorf("base mint: %w", err)
	}
	config, err := decodeKey(poolConfig)
	if err != nil {
		return "", fmt.Errorf("pool config: %w", err)
	}
	program, err := decodeKey(DBCProgramID)
	if err != nil {
		return "", fmt.Errorf("program id: %w", err)
	}

	first, second := orderKeys(quote, base)
	seeds := [][]byte{[]byte(poolSeed), config, first, second}

	addr := derivePDA(seeds, program)
	if addr == "" {
		return "", fmt.Errorf("no off-curve bump found for mint %s", baseMint)
	}
	return addr, nil
}

// decodeKey decodes a base58 address and checks its length.
func decodeKey(key string) ([]byte, error) {
	decoded, err := base58.Decode(key)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("key %q is %d bytes, want 32", key, len(decoded))
	}
	return decoded, nil
}

// orderKeys returns the two keys with the bytewise-larger one first.
func orderKeys(a, b []byte) ([]byte, []byte) {
	if bytes.Compare(a, b) > 0 {
		return a, b
	}
	return b, a
}

// derivePDA derives a Program Derived Address using the Solana algorithm:
// hash seeds + bump + program id + marker, taking the first bump from 255
// downward whose hash is off the ed25519 curve.
func derivePDA(seeds [][]byte, programID []byte) string {
	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID...)
		data = append(data, []byte(pdaMarker)...)

		hash := sha256.Sum256(data)

		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}

	return ""
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

package resolver

import (
	"crypto/sha256"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ZeroKey is the 32-byte zero value used for an absent class or parent seed.
var ZeroKey solana.PublicKey

// NameHash computes the 32-byte content hash of a name label under a
// registry family's hash prefix: SHA-256(prefix || label). Pure function.
func NameHash(prefix, label string) []byte {
	h := sha256.Sum256([]byte(prefix + label))
	return h[:]
}

// DeriveNameAccountKey derives the on-chain account key for a hashed name
// via program-derived-address search over (hash, class, parent) under the
// given program. The result is deterministic for identical inputs and lives
// in a distinct key space per program.
func DeriveNameAccountKey(hash []byte, class, parent, program solana.PublicKey) (solana.PublicKey, error) {
	seeds := [][]byte{hash, class.Bytes(), parent.Bytes()}
	key, _, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive name account key: %w", err)
	}
	return key, nil
}

package resolver

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Well-known name-registry program identities and root accounts.
var (
	// SNSProgramID is the Solana name service program.
	SNSProgramID = solana.MustPublicKeyFromBase58("namesLPneUpt7WZvRBTBCqmb1pne1MkCcHmZ3vncKWH")

	// SolRootTLD is the registered root account of the .sol top-level domain.
	SolRootTLD = solana.MustPublicKeyFromBase58("58P9EgQDuyfwP7F9fGf9L6asv9pABAnaa9AyFCfjkpf")

	// TLDHouseProgramID is the AllDomains (TLD House) program.
	TLDHouseProgramID = solana.MustPublicKeyFromBase58("TLDHkysf5pCnKsVA4gXpNvmy7psXLPEu4LAdDJthT9S")

	// SeekerRootTLD is the AllDomains parent account for .skr Seeker IDs.
	SeekerRootTLD = solana.MustPublicKeyFromBase58("F3A8kuikEiu6k2399oSJ1PWfcJYDHqpwoQ2e8psSDNuF")
)

// RegistryFamily selects which naming system a handle belongs to. The two
// families use different hash prefixes, programs, and account layouts.
type RegistryFamily int

const (
	// FamilySNS is the Solana name service (.sol and derived TLDs).
	FamilySNS RegistryFamily = iota

	// FamilyAllDomains is the AllDomains / TLD House registry (.skr).
	FamilyAllDomains
)

func (f RegistryFamily) String() string {
	switch f {
	case FamilySNS:
		return "sns"
	case FamilyAllDomains:
		return "alldomains"
	default:
		return "unknown"
	}
}

// Schema describes how to work with one registry family: the hash prefix fed
// into NameHash, the derivation program, and where the owner key sits in the
// raw account bytes.
//
// SNS accounts open with parent(32) + owner(32) + class(32); AllDomains
// accounts open with an 8-byte discriminator followed by parent(32) +
// owner(32).
type Schema struct {
	HashPrefix  string
	Program     solana.PublicKey
	OwnerOffset int
	OwnerLength int
}

var familySchemas = map[RegistryFamily]Schema{
	FamilySNS: {
		HashPrefix:  "Solana name service",
		Program:     SNSProgramID,
		OwnerOffset: 32,
		OwnerLength: 32,
	},
	FamilyAllDomains: {
		HashPrefix:  "ALT Name Service",
		Program:     TLDHouseProgramID,
		OwnerOffset: 40,
		OwnerLength: 32,
	},
}

// SchemaFor returns the account schema for a registry family.
func SchemaFor(f RegistryFamily) Schema {
	return familySchemas[f]
}

// FamilyForTLD maps a top-level domain label (without the dot) to its
// registry family. Seeker IDs live in AllDomains; everything else is SNS.
func FamilyForTLD(tld string) RegistryFamily {
	if tld == "skr" {
		return FamilyAllDomains
	}
	return FamilySNS
}

// Owner extracts the owner public key from raw name-account bytes according
// to the family's layout.
func (s Schema) Owner(data []byte) (solana.PublicKey, error) {
	if len(data) < s.OwnerOffset+s.OwnerLength {
		return solana.PublicKey{}, fmt.Errorf("account data too short: %d bytes, owner at offset %d", len(data), s.OwnerOffset)
	}
	return solana.PublicKeyFromBytes(data[s.OwnerOffset : s.OwnerOffset+s.OwnerLength]), nil
}

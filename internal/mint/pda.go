package mint

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// CPMMProgramID is the Raydium CPMM program.
const CPMMProgramID = "CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"

const (
	maxSeeds      = 16
	maxSeedLength = 32
	pdaMarker     = "ProgramDerivedAddress"
)

// ErrNoProgramAddress is returned when no bump yields an off-curve address.
var ErrNoProgramAddress = errors.New("unable to find a viable program address")

// FindProgramAddress searches bumps 255..1 for the first off-curve address
// derived from seeds and program. Returns the base58 address and the bump.
// Bump 0 is never tried, matching the runtime.
func FindProgramAddress(seeds [][]byte, program string) (string, uint8, error) {
	programBytes, err := Decode(program)
	if err != nil {
		return "", 0, fmt.Errorf("program id: %w", err)
	}
	if len(seeds) > maxSeeds-1 {
		return "", 0, fmt.Errorf("too many seeds: %d", len(seeds))
	}
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return "", 0, fmt.Errorf("seed longer than %d bytes", maxSeedLength)
		}
	}

	for bump := 255; bump > 0; bump-- {
		var buf bytes.Buffer
		for _, s := range seeds {
			buf.Write(s)
		}
		buf.WriteByte(byte(bump))
		buf.Write(programBytes)
		buf.WriteString(pdaMarker)

		hash := sha256.Sum256(buf.Bytes())
		if !IsOnCurve(hash[:]) {
			return base58.Encode(hash[:]), uint8(bump), nil
		}
	}

	return "", 0, ErrNoProgramAddress
}

// IsOnCurve reports whether b is a valid compressed ed25519 point.
// Program derived addresses are always off the curve.
func IsOnCurve(b []byte) bool {
	if len(b) != PublicKeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CPMMPoolID derives the CPMM pool state address for a config and mint pair.
// Mints are ordered by their raw key bytes, as the program requires.
func CPMMPoolID(program, ammConfig, mintA, mintB string) (string, error) {
	if program == "" {
		program = CPMMProgramID
	}
	cfg, err := Decode(ammConfig)
	if err != nil {
		return "", fmt.Errorf("amm config: %w", err)
	}
	na, err := Normalize(mintA)
	if err != nil {
		return "", err
	}
	nb, err := Normalize(mintB)
	if err != nil {
		return "", err
	}
	if na == "" || nb == "" {
		return "", fmt.Errorf("%w: both mints are required", ErrInvalidMint)
	}

	a, _ := Decode(na)
	b, _ := Decode(nb)
	if bytes.Compare(a, b) > 0 {
		a, b = b, a
	}

	addr, _, err := FindProgramAddress([][]byte{[]byte("pool"), cfg, a, b}, program)
	return addr, err
}

// CPMMConfigID derives the CPMM amm config address for a config index.
func CPMMConfigID(program string, index uint16) (string, error) {
	if program == "" {
		program = CPMMProgramID
	}
	addr, _, err := FindProgramAddress([][]byte{[]byte("amm_config"), {byte(index >> 8), byte(index)}}, program)
	return addr, err
}

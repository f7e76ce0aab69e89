// Package mint validates and canonicalizes Solana token mint addresses.
package mint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const (
	// NativeSOL is the sentinel used for native SOL (the default public key).
	NativeSOL = "11111111111111111111111111111111"
	// WrappedSOL is the SPL mint that stands in for native SOL in pools.
	WrappedSOL = "So11111111111111111111111111111111111111112"
	// USDC is the Circle USDC mint.
	USDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// PublicKeyLength is the size of a decoded Solana public key.
const PublicKeyLength = 32

// ErrInvalidMint is returned for identifiers that are not 32-byte base58 keys.
var ErrInvalidMint = errors.New("invalid mint address")

// Normalize validates m and rewrites native SOL to the wrapped SOL mint.
// An empty identifier is returned unchanged.
func Normalize(m string) (string, error) {
	m = strings.TrimSpace(m)
	if m == "" {
		return "", nil
	}
	if _, err := Decode(m); err != nil {
		return "", err
	}
	if m == NativeSOL {
		return WrappedSOL, nil
	}
	return m, nil
}

// Decode decodes a base58 public key.
func Decode(m string) ([]byte, error) {
	b, err := base58.Decode(m)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidMint, m, err)
	}
	if len(b) != PublicKeyLength {
		return nil, fmt.Errorf("%w %q: decoded length %d", ErrInvalidMint, m, len(b))
	}
	return b, nil
}

// Pair is an unordered mint pair in canonical (Base, Quote) order.
type Pair struct {
	Base  string
	Quote string
}

// IsEmpty reports whether neither side is set.
func (p Pair) IsEmpty() bool {
	return p.Base == "" && p.Quote == ""
}

// String returns "base/quote".
func (p Pair) String() string {
	return p.Base + "/" + p.Quote
}

// Canonicalize normalizes both mints and orders them so that swapping the
// arguments never changes the result. With two mints the lexicographically
// smaller one is Base; with one mint it is Base and Quote stays empty.
func Canonicalize(a, b string) (Pair, error) {
	na, err := Normalize(a)
	if err != nil {
		return Pair{}, err
	}
	nb, err := Normalize(b)
	if err != nil {
		return Pair{}, err
	}

	switch {
	case na == "":
		return Pair{Base: nb}, nil
	case nb == "":
		return Pair{Base: na}, nil
	case na > nb:
		return Pair{Base: nb, Quote: na}, nil
	default:
		return Pair{Base: na, Quote: nb}, nil
	}
}

package mint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPMMConfigID(t *testing.T) {
	addr, err := CPMMConfigID("", 0)
	require.NoError(t, err)
	assert.Equal(t, "D4FPEruKEHrG5TenZ2mpDGEfu1iUvTiqBxvpU8HLBvC2", addr)
}

func TestCPMMPoolID(t *testing.T) {
	const config = "D4FPEruKEHrG5TenZ2mpDGEfu1iUvTiqBxvpU8HLBvC2"

	id, err := CPMMPoolID("", config, WrappedSOL, USDC)
	require.NoError(t, err)
	assert.Equal(t, "7JuwJuNU88gurFnyWeiyGKbFmExMWcmRZntn9imEzdny", id)

	// Mint order and the native sentinel do not change the derived id.
	swapped, err := CPMMPoolID(CPMMProgramID, config, USDC, NativeSOL)
	require.NoError(t, err)
	assert.Equal(t, id, swapped)
}

func TestCPMMPoolID_RequiresBothMints(t *testing.T) {
	_, err := CPMMPoolID("", "D4FPEruKEHrG5TenZ2mpDGEfu1iUvTiqBxvpU8HLBvC2", USDC, "")
	assert.ErrorIs(t, err, ErrInvalidMint)
}

func TestFindProgramAddress_OffCurve(t *testing.T) {
	addr, bump, err := FindProgramAddress([][]byte{[]byte("seed")}, CPMMProgramID)
	require.NoError(t, err)
	assert.NotZero(t, bump)

	b, err := Decode(addr)
	require.NoError(t, err)
	assert.False(t, IsOnCurve(b))
}

func TestFindProgramAddress_SeedTooLong(t *testing.T) {
	_, _, err := FindProgramAddress([][]byte{make([]byte, 33)}, CPMMProgramID)
	assert.Error(t, err)
}

func TestIsOnCurve(t *testing.T) {
	usdc, err := Decode(USDC)
	require.NoError(t, err)
	assert.True(t, IsOnCurve(usdc))

	assert.False(t, IsOnCurve([]byte{1, 2, 3}))
}

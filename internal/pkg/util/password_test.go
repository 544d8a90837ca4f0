package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2Password(t *testing.T) {
	p := NewArgon2Password(WithCost(1024, 1))

	hash, err := p.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	assert.NoError(t, p.Compare(hash, "s3cret-pass"))
	assert.ErrorIs(t, p.Compare(hash, "wrong"), ErrInvalidPassword)
	assert.ErrorIs(t, p.Compare("plain", "s3cret-pass"), ErrInvalidHash)

	other, err := p.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salt must differ per hash")
}

func TestArgon2Password_CostChangeKeepsOldHashes(t *testing.T) {
	cheap := NewArgon2Password(WithCost(1024, 1))
	hash, err := cheap.Hash("pw")
	require.NoError(t, err)

	assert.NoError(t, NewArgon2Password(WithCost(2048, 2)).Compare(hash, "pw"))
}

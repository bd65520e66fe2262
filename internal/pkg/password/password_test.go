package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	digest, err := HashWithCost("secret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "secret", digest)
	assert.True(t, Verify("secret", digest))
	assert.False(t, Verify("wrong", digest))
}

func TestVerifyRejectsMalformedDigest(t *testing.T) {
	assert.False(t, Verify("secret", "not-a-digest"))
}

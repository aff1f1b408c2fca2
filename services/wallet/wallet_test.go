package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestGenerate(t *testing.T) {
	pub1, sec1 := Generate()
	pub2, sec2 := Generate()

	assert.NotEmpty(t, pub1)
	assert.NotEmpty(t, sec1)
	assert.NotEqual(t, pub1, pub2)
	assert.NotEqual(t, sec1, sec2)
}

func TestStoreRevealRoundtrip(t *testing.T) {
	t.Setenv("WALLET_ENCRYPTION_KEY", testKey)

	for i := 0; i < 5; i++ {
		_, secret := Generate()

		envelope, err := Store(secret)
		require.NoError(t, err)
		require.Contains(t, envelope, ":")
		assert.NotContains(t, envelope, secret)

		revealed, err := Reveal(envelope)
		require.NoError(t, err)
		assert.Equal(t, secret, revealed)
	}
}

func TestStoreFreshIVPerCall(t *testing.T) {
	t.Setenv("WALLET_ENCRYPTION_KEY", testKey)

	env1, err := Store("same secret")
	require.NoError(t, err)
	env2, err := Store("same secret")
	require.NoError(t, err)

	assert.NotEqual(t, env1, env2)
	assert.NotEqual(t, strings.SplitN(env1, ":", 2)[0], strings.SplitN(env2, ":", 2)[0])
}

func TestRevealMalformedEnvelope(t *testing.T) {
	t.Setenv("WALLET_ENCRYPTION_KEY", testKey)

	for _, envelope := range []string{
		"",
		"no-separator",
		"zzzz:abcd",
		"00112233445566778899aabbccddeeff:not-hex",
		"0011:00112233445566778899aabbccddeeff", // short iv
	} {
		_, err := Reveal(envelope)
		assert.Error(t, err, "envelope %q", envelope)
	}
}

func TestMisconfiguredKey(t *testing.T) {
	t.Setenv("WALLET_ENCRYPTION_KEY", "too-short")

	assert.Error(t, CheckKey())

	_, err := Store("secret")
	assert.Error(t, err)

	_, err = Reveal("00112233445566778899aabbccddeeff:00112233445566778899aabbccddeeff")
	assert.Error(t, err)
}

func TestCheckKey(t *testing.T) {
	t.Setenv("WALLET_ENCRYPTION_KEY", testKey)
	assert.NoError(t, CheckKey())
}

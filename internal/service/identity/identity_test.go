package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("TEST_CLIENT_ID", "Client 1")

	id, ok := FromEnv("TEST_CLIENT_ID").CurrentClientIdentity()
	assert.True(t, ok)
	assert.Equal(t, "Client 1", id)
}

func TestEnvProviderUnset(t *testing.T) {
	t.Setenv("TEST_CLIENT_ID", "")

	_, ok := FromEnv("TEST_CLIENT_ID").CurrentClientIdentity()
	assert.False(t, ok)
}

func TestStaticProvider(t *testing.T) {
	id, ok := Static("Client 2").CurrentClientIdentity()
	assert.True(t, ok)
	assert.Equal(t, "Client 2", id)

	_, ok = Static("").CurrentClientIdentity()
	assert.False(t, ok)
}

package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	cases := []struct {
		in   Identity
		want string
	}{
		{"Bob", "bob"},
		{"josé", "jose"},
		{"JOSÉ", "jose"},
		{"Ñandú", "nandu"},
		{"maría.garcía", "maria.garcia"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.in.Fold(), "Fold(%q)", c.in)
	}
}

func TestFoldEquivalence(t *testing.T) {
	assert.Equal(t, Identity("José").Fold(), Identity("jose").Fold())
	assert.NotEqual(t, Identity("jose").Fold(), Identity("josef").Fold())
}

func TestNewIdentity(t *testing.T) {
	_, err := NewIdentity("")
	assert.ErrorIs(t, err, ErrIdentityEmpty)

	_, err = NewIdentity(strings.Repeat("x", MaxIdentityLen+1))
	assert.ErrorIs(t, err, ErrIdentityTooLong)

	id, err := NewIdentity("alice")
	assert.NoError(t, err)
	assert.Equal(t, Identity("alice"), id)
}

func TestRoleElevated(t *testing.T) {
	assert.True(t, RoleAdmin.Elevated())
	assert.True(t, RoleCoordinator.Elevated())
	assert.False(t, RoleAgent.Elevated())
	assert.False(t, Role("").Elevated())
}

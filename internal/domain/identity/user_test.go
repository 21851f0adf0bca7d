package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates unapproved non-admin user", func(t *testing.T) {
		user, err := NewUser("jdoe", "jdoe@example.com", "Jane Doe", "$2a$10$hash")
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, "jdoe", user.Username)
		assert.Equal(t, "jdoe@example.com", user.Email)
		assert.False(t, user.IsApproved)
		assert.False(t, user.IsAdmin)
		assert.NotEmpty(t, user.ID)
	})

	t.Run("lowercases email", func(t *testing.T) {
		user, err := NewUser("jdoe", "JDoe@Example.COM", "Jane Doe", "$2a$10$hash")
		require.NoError(t, err)
		assert.Equal(t, "jdoe@example.com", user.Email)
	})

	t.Run("fails with empty username", func(t *testing.T) {
		_, err := NewUser("", "jdoe@example.com", "Jane Doe", "$2a$10$hash")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Username cannot be empty")
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		_, err := NewUser("jdoe", "not-an-email", "Jane Doe", "$2a$10$hash")
		require.Error(t, err)
	})

	t.Run("fails with empty full name", func(t *testing.T) {
		_, err := NewUser("jdoe", "jdoe@example.com", "  ", "$2a$10$hash")
		require.Error(t, err)
	})

	t.Run("fails with empty password hash", func(t *testing.T) {
		_, err := NewUser("jdoe", "jdoe@example.com", "Jane Doe", "")
		require.Error(t, err)
	})
}

func TestUserApprove(t *testing.T) {
	user, err := NewUser("jdoe", "jdoe@example.com", "Jane Doe", "$2a$10$hash")
	require.NoError(t, err)

	t.Run("approves pending user", func(t *testing.T) {
		require.NoError(t, user.Approve())
		assert.True(t, user.IsApproved)
		assert.True(t, user.CanLogin())
	})

	t.Run("fails when already approved", func(t *testing.T) {
		err := user.Approve()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already approved")
	})
}

func TestUserPromoteToAdmin(t *testing.T) {
	user, err := NewUser("jdoe", "jdoe@example.com", "Jane Doe", "$2a$10$hash")
	require.NoError(t, err)

	user.PromoteToAdmin()
	assert.True(t, user.IsAdmin)
}

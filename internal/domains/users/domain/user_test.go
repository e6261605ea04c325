package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserHashesPassword(t *testing.T) {
	user, err := NewUser(" jan ", "jan@example.com", "secret", RoleBuyer)
	require.NoError(t, err)
	assert.Equal(t, "jan", user.Username)
	assert.NotEqual(t, "secret", user.PasswordHash)
	assert.True(t, user.CheckPassword("secret"))
	assert.False(t, user.CheckPassword("wrong"))
	assert.False(t, user.CheckPassword(""))
}

func TestNewUserValidation(t *testing.T) {
	cases := map[string]struct {
		username, email, password string
		role                      Role
		want                      error
	}{
		"missing username": {"", "a@b.pl", "secret", RoleBuyer, ErrEmptyUsername},
		"bad email":        {"jan", "nope", "secret", RoleBuyer, ErrInvalidEmail},
		"short password":   {"jan", "", "abc", RoleBuyer, ErrWeakPassword},
		"empty password":   {"jan", "", " ", RoleBuyer, ErrEmptyPassword},
		"unknown role":     {"jan", "", "secret", Role("Root"), ErrInvalidRole},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewUser(tc.username, tc.email, tc.password, tc.role)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("seller")
	require.NoError(t, err)
	assert.Equal(t, RoleSeller, role)

	_, err = ParseRole("owner")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRoleAllows(t *testing.T) {
	assert.True(t, RoleAdmin.Allows(RoleSeller))
	assert.True(t, RoleSeller.Allows(RoleBuyer, RoleSeller))
	assert.False(t, RoleBuyer.Allows(RoleSeller))
	assert.False(t, RoleBuyer.Allows())
}

func TestDisplayName(t *testing.T) {
	user := &User{Username: "jan"}
	assert.Equal(t, "jan", user.DisplayName())
	user.FirstName, user.LastName = "Jan", "Kowalski"
	assert.Equal(t, "Jan Kowalski", user.DisplayName())
}

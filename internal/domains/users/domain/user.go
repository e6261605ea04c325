package domain

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyUsername = errors.New("username is required")
	ErrEmptyPassword = errors.New("password is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrWeakPassword  = errors.New("password must be at least 4 characters")
	ErrInvalidRole   = errors.New("role must be Admin, Seller or Buyer")
	// ErrForbidden is returned when the user's role does not grant an action.
	ErrForbidden = errors.New("role does not permit this action")
)

// Role gates what a user may do.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleSeller Role = "Seller"
	RoleBuyer  Role = "Buyer"
)

// ParseRole accepts the role names case-insensitively.
func ParseRole(raw string) (Role, error) {
	for _, role := range []Role{RoleAdmin, RoleSeller, RoleBuyer} {
		if strings.EqualFold(strings.TrimSpace(raw), string(role)) {
			return role, nil
		}
	}
	return "", ErrInvalidRole
}

// Allows reports whether the role is one of allowed. Admin is allowed
// everywhere.
func (r Role) Allows(allowed ...Role) bool {
	if r == RoleAdmin {
		return true
	}
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}

// User is a marketplace account. PasswordHash holds a bcrypt hash.
type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
}

// NewUser builds a user ensuring required invariants and hashes password.
func NewUser(username, email, password string, role Role) (*User, error) {
	user := &User{}
	if err := user.SetUsername(username); err != nil {
		return nil, err
	}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	user.Role = role
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUsername trims and validates the username.
func (u *User) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	u.Username = username
	return nil
}

// SetEmail accepts an empty address; a non-empty one needs an '@'.
func (u *User) SetEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

// SetPassword validates basic password strength and stores its bcrypt hash.
func (u *User) SetPassword(password string) error {
	password = strings.TrimSpace(password)
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < 4 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	password = strings.TrimSpace(password)
	if password == "" || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// DisplayName is the name shown to payment providers and in listings.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Username
	}
	return name
}

package mapper

import (
	"time"

	userdomain "github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
	userports "github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
)

// Registration is the transport-level registration payload.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is the public view of an account; it never carries the password hash.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role"`
}

// RefreshRequest carries a refresh token in the body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Session is returned by registration, login and token refresh.
type Session struct {
	Message          string     `json:"message"`
	AccessToken      string     `json:"access_token"`
	RefreshToken     string     `json:"refresh_token,omitempty"`
	TokenType        string     `json:"token_type"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
	User             User       `json:"user"`
}

// ToRegisterInput converts a registration payload; an empty role means buyer.
func ToRegisterInput(model Registration) (userports.RegisterInput, error) {
	input := userports.RegisterInput{
		Username:  model.Username,
		Email:     model.Email,
		Password:  model.Password,
		FirstName: model.FirstName,
		LastName:  model.LastName,
	}
	if model.Role != "" {
		role, err := userdomain.ParseRole(model.Role)
		if err != nil {
			return userports.RegisterInput{}, err
		}
		input.Role = role
	}
	return input, nil
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	}
}

// FromDomainUsers converts a slice of domain users to transport representation.
func FromDomainUsers(users []*userdomain.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, FromDomainUser(user))
	}
	return result
}

// FromLoginResult builds the session payload with message.
func FromLoginResult(result *userports.LoginResult, message string) Session {
	session := Session{
		Message:      message,
		AccessToken:  result.Token,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    result.ExpiresAt,
		User:         FromDomainUser(result.User),
	}
	if result.RefreshToken != "" {
		expires := result.RefreshExpiresAt
		session.RefreshExpiresAt = &expires
	}
	return session
}

package shopserver

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	ordersdomain "github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	usersdomain "github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
	usersports "github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
	apierrors "github.com/jakubzimnol/internet-shop/internal/shared/errors"
)

const (
	currentUserKey = "shop.user"
	bearerTokenKey = "shop.token"
)

// Authenticator resolves bearer tokens into users and enforces roles.
type Authenticator struct {
	users usersports.Service
}

func NewAuthenticator(users usersports.Service) Authenticator {
	return Authenticator{users: users}
}

// Authenticate rejects requests without a live session token.
func (a Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("missing bearer token"))
			c.Abort()
			return
		}
		user, err := a.users.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(currentUserKey, user)
		c.Set(bearerTokenKey, token)
		c.Next()
	}
}

// RequireRole lets the request through when the user holds one of roles.
// Admins always pass.
func (a Authenticator) RequireRole(roles ...usersdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			respondProblem(c, apierrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !user.Role.Allows(roles...) {
			respondError(c, usersdomain.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func currentUser(c *gin.Context) (*usersdomain.User, bool) {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*usersdomain.User)
	return user, ok && user != nil
}

// mustCurrentUser is used by handlers behind Authenticate.
func mustCurrentUser(c *gin.Context) (*usersdomain.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, errors.Join(usersports.ErrInvalidToken, errors.New("no authenticated user")))
	}
	return user, ok
}

// buyerOf projects the authenticated user onto the identity an order carries.
func buyerOf(user *usersdomain.User) ordersdomain.Buyer {
	return ordersdomain.Buyer{ID: user.ID, Email: user.Email, Name: user.DisplayName()}
}

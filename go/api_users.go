package shopserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/http/mapper"
	usersapp "github.com/jakubzimnol/internet-shop/internal/domains/users/application"
	usersports "github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
	apierrors "github.com/jakubzimnol/internet-shop/internal/shared/errors"
)

// UserAPI serves registration, sessions and the admin user listing.
type UserAPI struct {
	service usersports.Service
}

// NewUserAPI wires dependencies.
func NewUserAPI(service usersports.Service) UserAPI {
	return UserAPI{service: service}
}

// Post /api/registration
// Register a new account and open a session for it
func (api *UserAPI) Register(c *gin.Context) {
	var payload userhttpmapper.Registration
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input, err := userhttpmapper.ToRegisterInput(payload)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %w", usersapp.ErrInvalidInput, err))
		return
	}
	result, err := api.service.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromLoginResult(result, "User registered"))
}

// Post /api/login
// Exchange credentials for a bearer token
func (api *UserAPI) Login(c *gin.Context) {
	var payload userhttpmapper.Credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromLoginResult(result, "Logged in"))
}

// Post /api/logout
// Revoke the session behind the bearer token
func (api *UserAPI) Logout(c *gin.Context) {
	token := c.GetString(bearerTokenKey)
	if err := api.service.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /api/token/refresh
// Exchange a refresh token for a new access token
func (api *UserAPI) RefreshToken(c *gin.Context) {
	token, ok := refreshToken(c)
	if !ok {
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail("missing refresh token"))
		return
	}
	result, err := api.service.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromLoginResult(result, "Token refreshed"))
}

// Post /api/logout/refresh
// Revoke a refresh token
func (api *UserAPI) LogoutRefresh(c *gin.Context) {
	token, ok := refreshToken(c)
	if !ok {
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail("missing refresh token"))
		return
	}
	if err := api.service.LogoutRefresh(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// refreshToken reads the refresh token from the Authorization header or,
// failing that, from a JSON body.
func refreshToken(c *gin.Context) (string, bool) {
	if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
		return token, true
	}
	var payload userhttpmapper.RefreshRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		return "", false
	}
	token := strings.TrimSpace(payload.RefreshToken)
	return token, token != ""
}

// Get /api/users
func (api *UserAPI) ListUsers(c *gin.Context) {
	users, err := api.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUsers(users))
}

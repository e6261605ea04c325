package shopserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usersdomain "github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
)

// Access describes who may call a route.
type Access int

const (
	// Public routes need no token.
	Public Access = iota
	// Authenticated routes need a live session.
	Authenticated
	// Restricted routes need a live session and one of Route.Roles.
	Restricted
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	Access      Access
	Roles       []usersdomain.Role
}

// ApiHandleFunctions groups every API the router exposes.
type ApiHandleFunctions struct {
	Auth       Authenticator
	UserAPI    UserAPI
	CatalogAPI CatalogAPI
	OrderAPI   OrderAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing engine. Middleware
// must be attached to router before calling it.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		var chain []gin.HandlerFunc
		switch route.Access {
		case Authenticated:
			chain = append(chain, handleFunctions.Auth.Authenticate())
		case Restricted:
			chain = append(chain, handleFunctions.Auth.Authenticate(), handleFunctions.Auth.RequireRole(route.Roles...))
		}
		chain = append(chain, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

// DefaultHandleFunc answers routes that have no handler wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	sellers := []usersdomain.Role{usersdomain.RoleSeller}
	shoppers := []usersdomain.Role{usersdomain.RoleBuyer, usersdomain.RoleSeller}
	admins := []usersdomain.Role{usersdomain.RoleAdmin}

	return []Route{
		{Name: "Healthz", Method: http.MethodGet, Pattern: "/healthz", HandlerFunc: Healthz},

		{Name: "Register", Method: http.MethodPost, Pattern: "/api/registration", HandlerFunc: handleFunctions.UserAPI.Register},
		{Name: "Login", Method: http.MethodPost, Pattern: "/api/login", HandlerFunc: handleFunctions.UserAPI.Login},
		{Name: "Logout", Method: http.MethodPost, Pattern: "/api/logout", HandlerFunc: handleFunctions.UserAPI.Logout, Access: Authenticated},
		{Name: "LogoutAccess", Method: http.MethodPost, Pattern: "/api/logout/access", HandlerFunc: handleFunctions.UserAPI.Logout, Access: Authenticated},
		{Name: "LogoutRefresh", Method: http.MethodPost, Pattern: "/api/logout/refresh", HandlerFunc: handleFunctions.UserAPI.LogoutRefresh},
		{Name: "RefreshToken", Method: http.MethodPost, Pattern: "/api/token/refresh", HandlerFunc: handleFunctions.UserAPI.RefreshToken},
		{Name: "ListUsers", Method: http.MethodGet, Pattern: "/api/users", HandlerFunc: handleFunctions.UserAPI.ListUsers, Access: Restricted, Roles: admins},

		{Name: "ListItems", Method: http.MethodGet, Pattern: "/api/item", HandlerFunc: handleFunctions.CatalogAPI.ListItems, Access: Authenticated},
		{Name: "GetItem", Method: http.MethodGet, Pattern: "/api/item/:itemId", HandlerFunc: handleFunctions.CatalogAPI.GetItem, Access: Authenticated},
		{Name: "CreateItem", Method: http.MethodPost, Pattern: "/api/item", HandlerFunc: handleFunctions.CatalogAPI.CreateItem, Access: Restricted, Roles: sellers},
		{Name: "UpdateItem", Method: http.MethodPut, Pattern: "/api/item/:itemId", HandlerFunc: handleFunctions.CatalogAPI.UpdateItem, Access: Restricted, Roles: sellers},
		{Name: "DeleteItem", Method: http.MethodDelete, Pattern: "/api/item/:itemId", HandlerFunc: handleFunctions.CatalogAPI.DeleteItem, Access: Restricted, Roles: sellers},

		{Name: "ListCategories", Method: http.MethodGet, Pattern: "/api/category", HandlerFunc: handleFunctions.CatalogAPI.ListCategories, Access: Authenticated},
		{Name: "GetCategory", Method: http.MethodGet, Pattern: "/api/category/:categoryId", HandlerFunc: handleFunctions.CatalogAPI.GetCategory, Access: Authenticated},
		{Name: "CreateCategory", Method: http.MethodPost, Pattern: "/api/category", HandlerFunc: handleFunctions.CatalogAPI.CreateCategory, Access: Restricted, Roles: sellers},
		{Name: "UpdateCategory", Method: http.MethodPut, Pattern: "/api/category/:categoryId", HandlerFunc: handleFunctions.CatalogAPI.UpdateCategory, Access: Restricted, Roles: sellers},
		{Name: "DeleteCategory", Method: http.MethodDelete, Pattern: "/api/category/:categoryId", HandlerFunc: handleFunctions.CatalogAPI.DeleteCategory, Access: Restricted, Roles: sellers},

		{Name: "CreateOrder", Method: http.MethodPost, Pattern: "/api/orders", HandlerFunc: handleFunctions.OrderAPI.CreateOrder, Access: Restricted, Roles: shoppers},
		{Name: "ListOrders", Method: http.MethodGet, Pattern: "/api/orders", HandlerFunc: handleFunctions.OrderAPI.ListOrders, Access: Authenticated},
		{Name: "GetOrder", Method: http.MethodGet, Pattern: "/api/orders/:orderId", HandlerFunc: handleFunctions.OrderAPI.GetOrder, Access: Authenticated},
		{Name: "SubmitPayment", Method: http.MethodPost, Pattern: "/api/orders/:orderId/payment", HandlerFunc: handleFunctions.OrderAPI.SubmitPayment, Access: Restricted, Roles: shoppers},
		{Name: "AdvanceFulfillment", Method: http.MethodPatch, Pattern: "/api/orders/:orderId/fulfillment", HandlerFunc: handleFunctions.OrderAPI.AdvanceFulfillment, Access: Restricted, Roles: sellers},
		{Name: "Buy", Method: http.MethodPost, Pattern: "/api/buy", HandlerFunc: handleFunctions.OrderAPI.Buy, Access: Restricted, Roles: shoppers},

		{Name: "Notify", Method: http.MethodPost, Pattern: "/api/items/notify", HandlerFunc: handleFunctions.OrderAPI.Notify},
		{Name: "NotifyPayments", Method: http.MethodPost, Pattern: "/api/payments/notify", HandlerFunc: handleFunctions.OrderAPI.Notify},
	}
}

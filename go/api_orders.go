package shopserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/jakubzimnol/internet-shop/internal/domains/orders/adapters/http/mapper"
	ordersdomain "github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	ordersports "github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	usersdomain "github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
)

// IdempotencyKeyHeader lets clients retry order creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderAPI wires HTTP transport with the orders service and payment workflows.
type OrderAPI struct {
	service   ordersports.Service
	workflows ordersports.PaymentOrchestrator
	baseURL   string
}

// NewOrderAPI creates an OrderAPI. baseURL is the public root handed to the
// gateway for callbacks; when empty it is derived from each request.
func NewOrderAPI(service ordersports.Service, workflows ordersports.PaymentOrchestrator, baseURL string) OrderAPI {
	return OrderAPI{service: service, workflows: workflows, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Post /api/orders
// Reserve inventory and place an order
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.Cart
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	input := orderhttpmapper.ToCreateOrderInput(buyerOf(user), payload, key)
	order, err := api.service.CreateOrder(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", "/api/orders/"+strconv.FormatInt(order.ID, 10))
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}

// Get /api/orders
// Buyers see their own orders, admins see every order
func (api *OrderAPI) ListOrders(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	buyerID := user.ID
	if user.Role == usersdomain.RoleAdmin {
		buyerID = 0
	}
	orders, err := api.service.ListOrders(c.Request.Context(), buyerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// Get /api/orders/:orderId
func (api *OrderAPI) GetOrder(c *gin.Context) {
	order, ok := api.loadOwnedOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Post /api/orders/:orderId/payment
// Submit an order to the payment gateway and return the payment page
func (api *OrderAPI) SubmitPayment(c *gin.Context) {
	order, ok := api.loadOwnedOrder(c)
	if !ok {
		return
	}
	input := api.paymentInput(c)
	input.OrderID = order.ID
	result, err := api.workflows.SubmitForPayment(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.PaymentRedirect{OrderID: result.Order.ID, RedirectURI: result.RedirectURI})
}

// Post /api/buy
// Place an order and redirect the buyer straight to the payment page
func (api *OrderAPI) Buy(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.Cart
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	cart := orderhttpmapper.ToCreateOrderInput(buyerOf(user), payload, key)
	result, err := api.service.Checkout(c.Request.Context(), cart, api.paymentInput(c))
	if err != nil {
		if result != nil && result.Order != nil {
			c.Header("Location", "/api/orders/"+strconv.FormatInt(result.Order.ID, 10))
		}
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, result.RedirectURI)
}

// Patch /api/orders/:orderId/fulfillment
// Move a paid order to SEND or FINISHED
func (api *OrderAPI) AdvanceFulfillment(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload orderhttpmapper.FulfillmentUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	status, err := ordersdomain.ParseFulfillmentStatus(strings.ToUpper(strings.TrimSpace(payload.Status)))
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := api.service.AdvanceFulfillment(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(updated))
}

// Post /api/items/notify
// Gateway callback; the signature covers the raw body
func (api *OrderAPI) Notify(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.HandleNotification(c.Request.Context(), ordersports.Notification{
		Headers: c.Request.Header.Clone(),
		Body:    body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromNotificationResult(result))
}

// loadOwnedOrder answers 403 when a non-admin asks for someone else's order.
func (api *OrderAPI) loadOwnedOrder(c *gin.Context) (*ordersdomain.Order, bool) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return nil, false
	}
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return nil, false
	}
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if order.Buyer.ID != user.ID && user.Role != usersdomain.RoleAdmin {
		respondError(c, usersdomain.ErrForbidden)
		return nil, false
	}
	return order, true
}

func (api *OrderAPI) paymentInput(c *gin.Context) ordersports.SubmitPaymentInput {
	return ordersports.SubmitPaymentInput{
		BuyerIP:  c.ClientIP(),
		Language: preferredLanguage(c.GetHeader("Accept-Language")),
		BaseURL:  api.publicBaseURL(c),
	}
}

func (api *OrderAPI) publicBaseURL(c *gin.Context) string {
	if api.baseURL != "" {
		return api.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + c.Request.Host
}

// preferredLanguage returns the primary subtag of the first listed language.
func preferredLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	primary, _, _ := strings.Cut(strings.TrimSpace(first), "-")
	primary = strings.ToLower(primary)
	if len(primary) != 2 {
		return ""
	}
	return primary
}

package payu

import openapi_types "github.com/oapi-codegen/runtime/types"

// Amounts are minor currency units encoded as JSON strings.

// OrderRequest is the body of POST api/v2_1/orders.
type OrderRequest struct {
	NotifyURL     string    `json:"notifyUrl"`
	ContinueURL   string    `json:"continueUrl,omitempty"`
	CustomerIP    string    `json:"customerIp"`
	MerchantPosID string    `json:"merchantPosId"`
	Description   string    `json:"description"`
	CurrencyCode  string    `json:"currencyCode"`
	TotalAmount   int64     `json:"totalAmount,string"`
	ExtOrderID    string    `json:"extOrderId,omitempty"`
	Buyer         *Buyer    `json:"buyer,omitempty"`
	Products      []Product `json:"products"`
}

type Buyer struct {
	Email     openapi_types.Email `json:"email"`
	FirstName string              `json:"firstName,omitempty"`
	Language  string              `json:"language,omitempty"`
}

type Product struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice,string"`
	Quantity  int32  `json:"quantity,string"`
}

// OrderResponse is returned together with the 302 redirect.
type OrderResponse struct {
	Status      Status `json:"status"`
	RedirectURI string `json:"redirectUri"`
	OrderID     string `json:"orderId"`
	ExtOrderID  string `json:"extOrderId,omitempty"`
}

type Status struct {
	StatusCode string `json:"statusCode"`
	StatusDesc string `json:"statusDesc,omitempty"`
	Code       string `json:"code,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	GrantType   string `json:"grant_type"`
}

type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

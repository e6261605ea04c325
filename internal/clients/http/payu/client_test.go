package payu

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayU struct {
	tokenCalls atomic.Int32
	orderCalls atomic.Int32
	lastOrder  map[string]any
	lastAuth   string
	tokenCode  int
	orderCode  int
	delay      time.Duration
}

func (f *fakePayU) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/pl/standard/user/oauth/authorize", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "145227", r.URL.Query().Get("client_id"))
		assert.Equal(t, "12f071174cb7eb79d4aac5bc2f07563f", r.URL.Query().Get("client_secret"))
		w.Header().Set("Content-Type", "application/json")
		if f.tokenCode != 0 && f.tokenCode != http.StatusOK {
			w.WriteHeader(f.tokenCode)
			if f.tokenCode == http.StatusUnauthorized {
				_, _ = io.WriteString(w, `{"error":"invalid_client","error_description":"Bad client credentials"}`)
			}
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"3e5cac39-7e38-4139-8fd6-30adc06a61bd","token_type":"bearer","expires_in":43199,"grant_type":"client_credentials"}`)
	})
	mux.HandleFunc("/api/v2_1/orders", func(w http.ResponseWriter, r *http.Request) {
		f.orderCalls.Add(1)
		if f.delay > 0 {
			time.Sleep(f.delay)
		}
		f.lastAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastOrder))
		w.Header().Set("Content-Type", "application/json")
		if f.orderCode != 0 && f.orderCode != http.StatusFound {
			w.WriteHeader(f.orderCode)
			_, _ = io.WriteString(w, `{"status":{"statusCode":"ERROR_VALUE_INVALID","statusDesc":"Invalid value"}}`)
			return
		}
		w.Header().Set("Location", "https://merch-prod.snd.payu.com/pay/?orderId=WZHF5FFDRJ140731GUEST000P01")
		w.WriteHeader(http.StatusFound)
		_, _ = io.WriteString(w, `{"status":{"statusCode":"SUCCESS"},"redirectUri":"https://merch-prod.snd.payu.com/pay/?orderId=WZHF5FFDRJ140731GUEST000P01","orderId":"WZHF5FFDRJ140731GUEST000P01"}`)
	})
	return mux
}

func newTestClient(t *testing.T, fake *fakePayU, httpClient *http.Client) *Client {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	client, err := NewClient(Config{
		BaseURL:      srv.URL,
		ClientID:     "145227",
		ClientSecret: "12f071174cb7eb79d4aac5bc2f07563f",
		PosID:        "145227",
	}, httpClient)
	require.NoError(t, err)
	return client
}

func sampleOrder() OrderRequest {
	return OrderRequest{
		NotifyURL:    "https://shop.example.com/api/items/notify",
		ContinueURL:  "https://shop.example.com/api/orders/1",
		CustomerIP:   "127.0.0.1",
		Description:  "RTV market",
		CurrencyCode: "PLN",
		TotalAmount:  21000,
		Buyer:        &Buyer{Email: "john.doe@example.com", FirstName: "John", Language: "pl"},
		Products: []Product{
			{Name: "Wireless Mouse", UnitPrice: 15000, Quantity: 1},
			{Name: "HDMI cable", UnitPrice: 6000, Quantity: 1},
		},
	}
}

func TestCreateOrder_Success(t *testing.T) {
	fake := &fakePayU{}
	client := newTestClient(t, fake, nil)

	resp, err := client.CreateOrder(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, "WZHF5FFDRJ140731GUEST000P01", resp.OrderID)
	assert.Contains(t, resp.RedirectURI, "orderId=WZHF5FFDRJ140731GUEST000P01")
	assert.Equal(t, "Bearer 3e5cac39-7e38-4139-8fd6-30adc06a61bd", fake.lastAuth)

	assert.Equal(t, "21000", fake.lastOrder["totalAmount"])
	assert.Equal(t, "145227", fake.lastOrder["merchantPosId"])
	products := fake.lastOrder["products"].([]any)
	first := products[0].(map[string]any)
	assert.Equal(t, "15000", first["unitPrice"])
	assert.Equal(t, "1", first["quantity"])
}

func TestAuthenticate_CachesToken(t *testing.T) {
	fake := &fakePayU{}
	client := newTestClient(t, fake, nil)

	for i := 0; i < 3; i++ {
		_, err := client.CreateOrder(context.Background(), sampleOrder())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), fake.tokenCalls.Load())
	assert.Equal(t, int32(3), fake.orderCalls.Load())

	client.now = func() time.Time { return time.Now().Add(13 * time.Hour) }
	_, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), fake.tokenCalls.Load())
}

func TestAuthenticate_EscapesCredentials(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"token","token_type":"bearer","expires_in":60}`)
	}))
	t.Cleanup(srv.Close)
	client, err := NewClient(Config{BaseURL: srv.URL, ClientID: "145 227", ClientSecret: "a&b=c+d"}, nil)
	require.NoError(t, err)

	token, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token", token)
	assert.Equal(t, "client_credentials", query.Get("grant_type"))
	assert.Equal(t, "145 227", query.Get("client_id"))
	assert.Equal(t, "a&b=c+d", query.Get("client_secret"))
}

func TestAuthenticate_ExplicitErrorIsRejected(t *testing.T) {
	fake := &fakePayU{tokenCode: http.StatusUnauthorized}
	client := newTestClient(t, fake, nil)

	_, err := client.Authenticate(context.Background())
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "invalid_client: Bad client credentials", rejected.Reason)
}

func TestAuthenticate_ServerErrorIsUnavailable(t *testing.T) {
	fake := &fakePayU{tokenCode: http.StatusServiceUnavailable}
	client := newTestClient(t, fake, nil)

	_, err := client.Authenticate(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateOrder_NonRedirectIsRejected(t *testing.T) {
	fake := &fakePayU{orderCode: http.StatusBadRequest}
	client := newTestClient(t, fake, nil)

	_, err := client.CreateOrder(context.Background(), sampleOrder())
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusBadRequest, rejected.StatusCode)
	assert.Equal(t, "ERROR_VALUE_INVALID: Invalid value", rejected.Reason)
}

func TestCreateOrder_TimeoutIsUnavailable(t *testing.T) {
	fake := &fakePayU{delay: 200 * time.Millisecond}
	client := newTestClient(t, fake, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.CreateOrder(ctx, sampleOrder())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateOrder_UnreachableIsUnavailable(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://127.0.0.1:1", PosID: "1"}, nil)
	require.NoError(t, err)
	_, err = client.CreateOrder(context.Background(), sampleOrder())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateOrder_InvalidBuyerEmail(t *testing.T) {
	client := newTestClient(t, &fakePayU{}, nil)
	order := sampleOrder()
	order.Buyer.Email = "not-an-email"
	_, err := client.CreateOrder(context.Background(), order)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	require.Error(t, err)
}

package payu

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

const secondKey = "b6ca15b0d1020e8094d9b5f8d163db54"

func header(value string) http.Header {
	h := http.Header{}
	h.Set(SignatureHeader, value)
	return h
}

func TestVerify_AcceptsValidSignature(t *testing.T) {
	body := []byte(`{"order":{"orderId":"LDLW5N7MF4140324GUEST000P01","status":"COMPLETED"}}`)
	sig := Sign(body, secondKey)
	v := NewVerifier(secondKey)

	require.NoError(t, v.Verify(header("sender=checkout;signature="+sig+";algorithm=MD5;content=DOCUMENT"), body))
	require.NoError(t, v.Verify(header("signature="+sig), body))
}

func TestVerify_SignsRawBodyBytes(t *testing.T) {
	raw := []byte(`{ "order": { "orderId": "LDLW5N7MF4140324GUEST000P01", "status": "COMPLETED" } }`)
	compact := []byte(`{"order":{"orderId":"LDLW5N7MF4140324GUEST000P01","status":"COMPLETED"}}`)
	sig := Sign(raw, secondKey)
	v := NewVerifier(secondKey)

	require.NoError(t, v.Verify(header("signature="+sig), raw))
	require.ErrorIs(t, v.Verify(header("signature="+sig), compact), ports.ErrUnauthenticated)
}

func TestVerify_Rejects(t *testing.T) {
	body := []byte(`{"order":{"orderId":"LDLW5N7MF4140324GUEST000P01","status":"COMPLETED"}}`)
	sig := Sign(body, secondKey)
	v := NewVerifier(secondKey)

	cases := map[string]struct {
		headers http.Header
		body    []byte
	}{
		"missing header":    {headers: http.Header{}, body: body},
		"no signature pair": {headers: header("sender=checkout;algorithm=MD5"), body: body},
		"empty signature":   {headers: header("sender=checkout;signature=;algorithm=MD5"), body: body},
		"tampered body":     {headers: header("signature=" + sig), body: []byte(`{"order":{"orderId":"LDLW5N7MF4140324GUEST000P01","status":"CANCELED"}}`)},
		"wrong key":         {headers: header("signature=" + Sign(body, "other")), body: body},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := v.Verify(tc.headers, tc.body)
			require.ErrorIs(t, err, ports.ErrUnauthenticated)
		})
	}
}

func TestVerify_UnconfiguredKeyFailsClosed(t *testing.T) {
	body := []byte(`{}`)
	err := NewVerifier("").Verify(header("signature="+Sign(body, "")), body)
	require.ErrorIs(t, err, ports.ErrUnauthenticated)
}

func TestExtractSignature(t *testing.T) {
	sig, ok := extractSignature("sender=checkout;signature=abc123;algorithm=MD5")
	assert.True(t, ok)
	assert.Equal(t, "abc123", sig)
}

package payu

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

// SignatureHeader carries the notification signature, e.g.
// "sender=checkout;signature=c33a38d89fb60f873c039fcec3a14743;algorithm=MD5;content=DOCUMENT".
const SignatureHeader = "OpenPayu-Signature"

var _ ports.NotificationVerifier = (*Verifier)(nil)

// Verifier checks md5(body + second key) against the signature header. MD5 is
// what PayU signs with; changing the algorithm breaks interoperability.
type Verifier struct {
	secondKey string
}

func NewVerifier(secondKey string) *Verifier {
	return &Verifier{secondKey: secondKey}
}

func (v *Verifier) Verify(headers http.Header, body []byte) error {
	header := headers.Get(SignatureHeader)
	if header == "" {
		return fmt.Errorf("%w: missing %s header", ports.ErrUnauthenticated, SignatureHeader)
	}
	provided, ok := extractSignature(header)
	if !ok {
		return fmt.Errorf("%w: no signature in %s header", ports.ErrUnauthenticated, SignatureHeader)
	}
	if v.secondKey == "" {
		return fmt.Errorf("%w: signature key not configured", ports.ErrUnauthenticated)
	}
	expected := Sign(body, v.secondKey)
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(provided)), []byte(expected)) != 1 {
		return fmt.Errorf("%w: signature mismatch", ports.ErrUnauthenticated)
	}
	return nil
}

// Sign returns the hex MD5 of body followed by key.
func Sign(body []byte, key string) string {
	h := md5.New()
	h.Write(body)
	h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}

// extractSignature isolates the value after "signature=" up to the next ";".
func extractSignature(header string) (string, bool) {
	_, rest, found := strings.Cut(header, "signature=")
	if !found {
		return "", false
	}
	value, _, _ := strings.Cut(rest, ";")
	value = strings.TrimSpace(value)
	return value, value != ""
}

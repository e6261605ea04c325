//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Participants of the two contracts: the storefront consuming the shop API,
// and the shop API consuming the PayU sandbox.
const (
	ProviderName = "internet-shop-api"
	ConsumerName = "storefront"

	PayUProviderName = "payu-sandbox"

	StateNoUsers     = "no registered users"
	StateBuyerExists = "buyer pact-buyer exists"
	StatePayUReady   = "payu accepts client credentials"
)

const (
	BuyerUsername = "pact-buyer"
	BuyerEmail    = "pact.buyer@example.com"
	BuyerPassword = "pact-pass-1"

	PayUClientID     = "145227"
	PayUClientSecret = "12f071174cb7eb79d4aac5bc2f07563f"
	PayUAccessToken  = "3e5cac39-7e38-4139-8fd6-30adc06a61bd"
	PayUOrderID      = "WZHF5FFDRJ140731GUEST000P01"
	PayURedirectURI  = "https://merch-prod.snd.payu.com/pay/?orderId=" + PayUOrderID
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file the storefront contract is written to.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleRegistration is the body the storefront posts to sign a buyer up.
func ExampleRegistration() map[string]any {
	return map[string]any{
		"username":  BuyerUsername,
		"email":     BuyerEmail,
		"password":  BuyerPassword,
		"firstName": "Pact",
		"lastName":  "Buyer",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
)

type normalizedCart struct {
	BuyerID     int64                `json:"buyerId"`
	Description string               `json:"description"`
	Lines       []normalizedCartLine `json:"lines"`
}

type normalizedCartLine struct {
	ItemID   int64 `json:"itemId"`
	Quantity int64 `json:"quantity"`
}

// FingerprintCart builds a deterministic hash of the cart (excluding the idempotency key).
func FingerprintCart(input ports.CreateOrderInput) (string, error) {
	payload, err := json.Marshal(normalizedCart{
		BuyerID:     input.Buyer.ID,
		Description: input.Description,
		Lines:       aggregateLines(input.Lines),
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// aggregateLines merges quantities per item and orders them by item id, which
// is also the order reservations take row locks in.
func aggregateLines(lines []ports.CartLine) []normalizedCartLine {
	totals := map[int64]int64{}
	for _, line := range lines {
		totals[line.ItemID] += int64(line.Quantity)
	}
	out := make([]normalizedCartLine, 0, len(totals))
	for id, qty := range totals {
		out = append(out, normalizedCartLine{ItemID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

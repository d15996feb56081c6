package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"roomAdvisorAi/internal/storage"
)

// ErrMalformedOutput indicates the completion could not be decoded as the
// expected JSON. The parse is attempted exactly once.
var ErrMalformedOutput = errors.New("model returned an unexpected format")

// ErrNoProducts indicates the model returned an empty product list.
var ErrNoProducts = errors.New("model returned no products")

// maxProducts caps how many recommendations reach the caller.
const maxProducts = 3

// stripFence removes the markdown code fence the model sometimes wraps
// around the JSON despite instructions: drop through the first line break,
// then drop from the last fence marker onward.
func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if _, rest, ok := strings.Cut(text, "\n"); ok {
		text = rest
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// ParseReport decodes a room-analysis completion into a DesignReport.
func ParseReport(raw string) (storage.DesignReport, error) {
	var report storage.DesignReport
	if err := json.Unmarshal([]byte(stripFence(raw)), &report); err != nil {
		return storage.DesignReport{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return report, nil
}

// ProductList is the canonical recommendations response shape.
type ProductList struct {
	Products []storage.Product `json:"products"`
}

// ParseProducts decodes a recommendations completion. An absent or empty
// products list is an error; more than maxProducts entries are silently
// truncated, keeping the original order.
func ParseProducts(raw string) (ProductList, error) {
	var list ProductList
	if err := json.Unmarshal([]byte(stripFence(raw)), &list); err != nil {
		return ProductList{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if len(list.Products) == 0 {
		return ProductList{}, ErrNoProducts
	}
	if len(list.Products) > maxProducts {
		list.Products = list.Products[:maxProducts]
	}
	return list, nil
}

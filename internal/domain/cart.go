package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Money is an amount in whole currency units (VND has no minor unit).
type Money int64

// MaxMoney is the largest representable amount. Add and Mul saturate at it.
const MaxMoney = Money(math.MaxInt64)

// Add returns m+o for non-negative amounts, saturating at MaxMoney.
func (m Money) Add(o Money) Money {
	if m > 0 && o > MaxMoney-m {
		return MaxMoney
	}
	return m + o
}

// Mul returns m*n, saturating at MaxMoney. A non-positive factor yields 0.
func (m Money) Mul(n int) Money {
	if m <= 0 || n <= 0 {
		return 0
	}
	if m > MaxMoney/Money(n) {
		return MaxMoney
	}
	return m * Money(n)
}

// ID is an opaque identifier. The static catalog and the stored user profile
// use numeric ids while other callers send strings, so both JSON forms are
// accepted. It always marshals as a string.
type ID string

// ProductID identifies a catalog product.
type ProductID = ID

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode product id: %w", err)
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode product id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// CartLineItem is one distinct product in the cart. Name, price and image are
// captured when the product is first added and are not refreshed afterwards.
type CartLineItem struct {
	ProductID  ProductID `json:"id"`
	Name       string    `json:"name"`
	PriceLabel string    `json:"price"`
	UnitPrice  Money     `json:"unit_price"`
	Image      string    `json:"image"`
	Quantity   int       `json:"quantity"`
}

// LineTotal returns unit price times quantity.
func (li CartLineItem) LineTotal() Money {
	return li.UnitPrice.Mul(li.Quantity)
}

// Cart is the ordered list of line items, in first-added order.
type Cart struct {
	Items []CartLineItem `json:"items"`
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{Items: []CartLineItem{}}
}

// ItemCount returns the sum of all line quantities.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Subtotal returns the sum of all line totals.
func (c *Cart) Subtotal() Money {
	var total Money
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItemIndex returns the index of the line for id, or -1.
func (c *Cart) FindItemIndex(id ProductID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy; callers may mutate it freely.
func (c *Cart) Clone() *Cart {
	items := make([]CartLineItem, len(c.Items))
	copy(items, c.Items)
	return &Cart{Items: items}
}

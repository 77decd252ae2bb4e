// Package pricing derives cart totals from line items and the applied promo.
// Everything here is a pure function of its inputs.
package pricing

import (
	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/promo"
)

// Policy holds the shipping fee rules.
type Policy struct {
	// FreeShippingThreshold is the subtotal at or above which shipping is free.
	FreeShippingThreshold domain.Money
	// FlatShippingFee is charged below the threshold. It is also the
	// reference amount reported as the discount of a free-shipping promo.
	FlatShippingFee domain.Money
}

// DefaultPolicy returns the storefront's standard shipping rules.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: 500000,
		FlatShippingFee:       30000,
	}
}

// Totals is the derived pricing of a cart. It is never stored.
//
// GrandTotal is Subtotal + ShippingFee - DiscountAmount, floored at 0, for
// every promo kind except free shipping. A free-shipping promo zeroes
// ShippingFee instead and reports the waived flat fee in DiscountAmount for
// display, so GrandTotal is Subtotal + ShippingFee there.
type Totals struct {
	Subtotal       domain.Money `json:"subtotal"`
	ShippingFee    domain.Money `json:"shipping_fee"`
	DiscountAmount domain.Money `json:"discount_amount"`
	GrandTotal     domain.Money `json:"grand_total"`
	// FreeShippingRemaining is how much more the shopper must add to reach
	// free shipping; 0 once shipping is already free or the cart is empty.
	FreeShippingRemaining domain.Money `json:"free_shipping_remaining"`
	PromoCode             string       `json:"promo_code,omitempty"`
	ShippingWaived        bool         `json:"shipping_waived"`
}

// Engine computes Totals under a fixed Policy.
type Engine struct {
	policy Policy
}

// NewEngine creates a pricing engine.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Policy returns the engine's shipping rules.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Compute derives totals for items with an optional applied promo rule.
func (e *Engine) Compute(items []domain.CartLineItem, applied *promo.Rule) Totals {
	var t Totals

	for _, item := range items {
		t.Subtotal = t.Subtotal.Add(item.LineTotal())
	}

	t.ShippingFee = e.shippingFee(t.Subtotal)

	var monetary domain.Money
	if applied != nil {
		t.PromoCode = applied.Code
		t.DiscountAmount = applied.Discount(t.Subtotal, e.policy.FlatShippingFee)
		if applied.Kind == promo.KindFreeShipping {
			// The shipping fee is dropped instead; the discount is display only.
			t.ShippingFee = 0
			t.ShippingWaived = t.Subtotal > 0
		} else {
			monetary = t.DiscountAmount
		}
	}

	t.GrandTotal = t.Subtotal.Add(t.ShippingFee) - monetary
	if t.GrandTotal < 0 {
		t.GrandTotal = 0
	}

	if t.ShippingFee > 0 {
		t.FreeShippingRemaining = e.policy.FreeShippingThreshold - t.Subtotal
	}

	return t
}

func (e *Engine) shippingFee(subtotal domain.Money) domain.Money {
	if subtotal <= 0 || subtotal >= e.policy.FreeShippingThreshold {
		return 0
	}
	return e.policy.FlatShippingFee
}

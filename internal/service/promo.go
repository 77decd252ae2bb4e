package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/pricing"
	"github.com/eldenfruit/storefront/internal/promo"
	apperrors "github.com/eldenfruit/storefront/pkg/errors"
)

// OrderQuote is the priced cart handed to checkout.
type OrderQuote struct {
	Items     []domain.CartLineItem `json:"items"`
	Totals    pricing.Totals        `json:"totals"`
	PromoCode string                `json:"promo_code,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// ApplyPromo applies a promo code to the cart, replacing any previous code.
// On failure the applied promo is left unchanged.
func (s *CartService) ApplyPromo(ctx context.Context, code string) (pricing.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if promo.Normalize(code) == "" {
		observeOperation(opApplyPromo, outcomeRejected)
		s.notify(ctx, domain.NoticeError, "Vui lòng nhập mã giảm giá")
		return pricing.Totals{}, apperrors.InvalidPromoCode("promo code is required")
	}

	cart, err := s.load(ctx)
	if err != nil {
		observeOperation(opApplyPromo, outcomeError)
		return pricing.Totals{}, err
	}
	if cart.IsEmpty() {
		observeOperation(opApplyPromo, outcomeRejected)
		s.notify(ctx, domain.NoticeError, "Giỏ hàng trống")
		return pricing.Totals{}, apperrors.InvalidPromoCode("cannot apply a promo code to an empty cart")
	}

	rule, err := s.promos.Lookup(code)
	if err != nil {
		observeOperation(opApplyPromo, outcomeRejected)
		s.logger.InfoContext(ctx, "promo code rejected", slog.String("code", promo.Normalize(code)))
		s.notify(ctx, domain.NoticeError, "Mã giảm giá không hợp lệ")
		return pricing.Totals{}, err
	}

	s.applied = &rule
	observeOperation(opApplyPromo, outcomeOK)
	s.logger.InfoContext(ctx, "promo code applied", slog.String("code", rule.Code))
	s.notify(ctx, domain.NoticeSuccess,
		fmt.Sprintf("Áp dụng mã %q thành công! %s", rule.Code, rule.Description))
	return s.engine.Compute(cart.Items, s.applied), nil
}

// ClearPromo removes the applied promo code, if any.
func (s *CartService) ClearPromo(ctx context.Context) (pricing.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applied = nil
	cart, err := s.load(ctx)
	if err != nil {
		return pricing.Totals{}, err
	}
	return s.engine.Compute(cart.Items, nil), nil
}

// AppliedPromo returns the applied promo rule, or nil.
func (s *CartService) AppliedPromo() *promo.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applied == nil {
		return nil
	}
	r := *s.applied
	return &r
}

// Totals prices the current cart. Nothing is cached.
func (s *CartService) Totals(ctx context.Context) (pricing.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return pricing.Totals{}, err
	}
	return s.engine.Compute(cart.Items, s.applied), nil
}

// Quote prices the current cart for checkout. An empty cart cannot be quoted.
func (s *CartService) Quote(ctx context.Context) (*OrderQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quoteLocked(ctx)
}

func (s *CartService) quoteLocked(ctx context.Context) (*OrderQuote, error) {
	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	snapshot := cart.Clone()
	q := &OrderQuote{
		Items:     snapshot.Items,
		Totals:    s.engine.Compute(snapshot.Items, s.applied),
		CreatedAt: s.now().UTC(),
	}
	if s.applied != nil {
		q.PromoCode = s.applied.Code
	}
	return q, nil
}

// Summary is the cart as the storefront page renders it.
type Summary struct {
	Items     []domain.CartLineItem `json:"items"`
	ItemCount int                   `json:"item_count"`
	Totals    pricing.Totals        `json:"totals"`
	Promo     *promo.Rule           `json:"promo,omitempty"`
}

// Summary returns the cart lines, item count, totals and applied promo taken
// together.
func (s *CartService) Summary(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := cart.Clone()
	sum := &Summary{
		Items:     snapshot.Items,
		ItemCount: snapshot.ItemCount(),
		Totals:    s.engine.Compute(snapshot.Items, s.applied),
	}
	if s.applied != nil {
		r := *s.applied
		sum.Promo = &r
	}
	return sum, nil
}

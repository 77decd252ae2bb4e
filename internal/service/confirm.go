package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/price"
	apperrors "github.com/eldenfruit/storefront/pkg/errors"
)

// Action names the mutation a confirmation guards.
type Action string

const (
	ActionRemoveItem Action = "remove_item"
	ActionClearCart  Action = "clear_cart"
	ActionCheckout   Action = "checkout"
)

// Confirmation is a pending destructive action awaiting the shopper's answer.
type Confirmation struct {
	ID        string           `json:"id"`
	Action    Action           `json:"action"`
	ProductID domain.ProductID `json:"product_id,omitempty"`
	Message   string           `json:"message"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Outcome is the result of answering a confirmation.
type Outcome struct {
	Action   Action       `json:"action"`
	Accepted bool         `json:"accepted"`
	Cart     *domain.Cart `json:"cart"`
	Quote    *OrderQuote  `json:"quote,omitempty"`
}

// RequestRemoval asks the shopper to confirm removing a line. It returns nil
// when the product is not in the cart.
func (s *CartService) RequestRemoval(ctx context.Context, productID domain.ProductID) (*Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := cart.FindItemIndex(productID)
	if idx < 0 {
		return nil, nil
	}

	msg := fmt.Sprintf("Bạn có chắc muốn xóa %q khỏi giỏ hàng?", cart.Items[idx].Name)
	return s.stage(ctx, ActionRemoveItem, productID, msg), nil
}

// RequestClear asks the shopper to confirm emptying the cart. It returns nil
// and emits an error notice when the cart is already empty.
func (s *CartService) RequestClear(ctx context.Context) (*Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		s.notify(ctx, domain.NoticeError, "Giỏ hàng đã trống")
		return nil, nil
	}

	return s.stage(ctx, ActionClearCart, "", "Bạn có chắc muốn xóa tất cả sản phẩm trong giỏ hàng?"), nil
}

// RequestCheckout asks the shopper to confirm the order at its current total.
func (s *CartService) RequestCheckout(ctx context.Context) (*Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.quoteLocked(ctx)
	if err != nil {
		observeOperation(opCheckout, outcomeRejected)
		s.notify(ctx, domain.NoticeError, "Giỏ hàng trống. Vui lòng thêm sản phẩm!")
		return nil, err
	}

	msg := fmt.Sprintf("Xác nhận đơn hàng với tổng tiền: %s?", price.Format(q.Totals.GrandTotal))
	return s.stage(ctx, ActionCheckout, "", msg), nil
}

// Confirm answers a pending confirmation. A confirmation can be answered
// once; unknown and expired ids are reported as not found.
func (s *CartService) Confirm(ctx context.Context, id string, accepted bool) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.pending[id]
	if !ok {
		return nil, apperrors.NotFound("confirmation", id)
	}
	delete(s.pending, id)
	if s.now().After(c.ExpiresAt) {
		return nil, apperrors.NotFound("confirmation", id)
	}

	s.logger.InfoContext(ctx, "confirmation answered",
		slog.String("confirmation_id", id),
		slog.String("action", string(c.Action)),
		slog.Bool("accepted", accepted),
	)

	out := &Outcome{Action: c.Action, Accepted: accepted}
	if !accepted {
		cart, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		out.Cart = cart.Clone()
		return out, nil
	}

	var err error
	switch c.Action {
	case ActionRemoveItem:
		out.Cart, err = s.removeLocked(ctx, c.ProductID)
	case ActionClearCart:
		out.Cart, err = s.clearLocked(ctx)
	case ActionCheckout:
		out.Quote, err = s.checkoutLocked(ctx)
		if err == nil {
			out.Cart = s.cart.Clone()
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checkoutLocked publishes the order. The cart is left as it is.
func (s *CartService) checkoutLocked(ctx context.Context) (*OrderQuote, error) {
	q, err := s.quoteLocked(ctx)
	if err != nil {
		observeOperation(opCheckout, outcomeRejected)
		s.notify(ctx, domain.NoticeError, "Giỏ hàng trống. Vui lòng thêm sản phẩm!")
		return nil, err
	}

	if err := s.events.PublishCartCheckedOut(ctx, &domain.Cart{Items: q.Items}, q.Totals); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart checked out event",
			slog.String("error", err.Error()),
		)
	}

	observeOperation(opCheckout, outcomeOK)
	s.logger.InfoContext(ctx, "order created",
		slog.Int("item_count", len(q.Items)),
		slog.Int64("grand_total", int64(q.Totals.GrandTotal)),
	)
	s.notify(ctx, domain.NoticeSuccess, "Đơn hàng đã được tạo thành công!")
	return q, nil
}

func (s *CartService) stage(ctx context.Context, action Action, productID domain.ProductID, msg string) *Confirmation {
	now := s.now()
	for id, c := range s.pending {
		if now.After(c.ExpiresAt) {
			delete(s.pending, id)
		}
	}

	c := &Confirmation{
		ID:        uuid.NewString(),
		Action:    action,
		ProductID: productID,
		Message:   msg,
		ExpiresAt: now.Add(s.confirmTTL),
	}
	s.pending[c.ID] = c

	s.logger.DebugContext(ctx, "confirmation requested",
		slog.String("confirmation_id", c.ID),
		slog.String("action", string(action)),
	)
	cp := *c
	return &cp
}

package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/price"
	apperrors "github.com/eldenfruit/storefront/pkg/errors"
)

// storedLine is the on-store shape of a line item. Records written by the
// browser storefront carry no unit_price and may hold the price as a number.
type storedLine struct {
	ID        domain.ID     `json:"id"`
	Name      string        `json:"name"`
	Price     priceText     `json:"price"`
	UnitPrice *domain.Money `json:"unit_price,omitempty"`
	Image     string        `json:"image"`
	Quantity  int           `json:"quantity"`
}

type priceText string

func (p *priceText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = priceText(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
		*p = priceText(n.String())
	}
	return nil
}

// CartStore implements CartRepository over a KV store, under KeyCart.
type CartStore struct {
	kv     KV
	logger *slog.Logger
}

// NewCartStore creates a cart store.
func NewCartStore(kv KV, logger *slog.Logger) *CartStore {
	return &CartStore{kv: kv, logger: logger}
}

// Load reads and decodes the stored cart. Lines without an id or with a
// non-positive quantity are dropped, and repeated ids are merged into the
// first occurrence.
func (s *CartStore) Load(ctx context.Context) (*domain.Cart, error) {
	data, err := s.kv.Get(ctx, KeyCart)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(), nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var lines []storedLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	cart := domain.NewCart()
	for _, l := range lines {
		if l.ID == "" || l.Quantity < 1 {
			s.logger.WarnContext(ctx, "dropping malformed cart line",
				slog.String("product_id", string(l.ID)),
				slog.Int("quantity", l.Quantity),
			)
			continue
		}

		if idx := cart.FindItemIndex(l.ID); idx >= 0 {
			cart.Items[idx].Quantity += l.Quantity
			continue
		}

		unit := price.Parse(string(l.Price))
		if l.UnitPrice != nil {
			unit = *l.UnitPrice
		}

		cart.Items = append(cart.Items, domain.CartLineItem{
			ProductID:  l.ID,
			Name:       l.Name,
			PriceLabel: string(l.Price),
			UnitPrice:  unit,
			Image:      l.Image,
			Quantity:   l.Quantity,
		})
	}

	return cart, nil
}

// Save encodes the cart as an ordered JSON list and stores it.
func (s *CartStore) Save(ctx context.Context, cart *domain.Cart) error {
	lines := make([]storedLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		unit := item.UnitPrice
		lines = append(lines, storedLine{
			ID:        item.ProductID,
			Name:      item.Name,
			Price:     priceText(item.PriceLabel),
			UnitPrice: &unit,
			Image:     item.Image,
			Quantity:  item.Quantity,
		})
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := s.kv.Set(ctx, KeyCart, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}

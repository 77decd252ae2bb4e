package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/repository/memory"
	"github.com/eldenfruit/storefront/pkg/logger"
)

type failingKV struct {
	err error
}

func (f failingKV) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingKV) Set(context.Context, string, []byte) error { return f.err }
func (f failingKV) Delete(context.Context, string) error { return f.err }
func (f failingKV) Ping(context.Context) error { return f.err }

func newCartStore(t *testing.T) (*CartStore, *memory.KV) {
	t.Helper()
	kv := memory.New()
	return NewCartStore(kv, logger.Discard()), kv
}

func TestCartStore_Load_EmptyWhenMissing(t *testing.T) {
	store, _ := newCartStore(t)

	cart, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.NotNil(t, cart.Items)
}

func TestCartStore_RoundTrip(t *testing.T) {
	store, _ := newCartStore(t)
	ctx := context.Background()

	want := &domain.Cart{Items: []domain.CartLineItem{
		{ProductID: "3", Name: "Xoai cat", PriceLabel: "95.000₫", UnitPrice: 95000, Image: "img/xoai.jpg", Quantity: 2},
		{ProductID: "1", Name: "Cam sanh", PriceLabel: "120.000₫", UnitPrice: 120000, Image: "img/cam.jpg", Quantity: 1},
		{ProductID: "sku-9", Name: "Gio qua", PriceLabel: "0₫", UnitPrice: 0, Image: "img/placeholder.jpg", Quantity: 4},
	}}

	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCartStore_Save_Format(t *testing.T) {
	store, kv := newCartStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Cart{Items: []domain.CartLineItem{
		{ProductID: "1", Name: "Cam", PriceLabel: "120.000₫", UnitPrice: 120000, Image: "img/cam.jpg", Quantity: 2},
	}}))

	raw, err := kv.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":"1","name":"Cam","price":"120.000₫","unit_price":120000,"image":"img/cam.jpg","quantity":2}]`,
		string(raw))
}

func TestCartStore_Save_EmptyCart(t *testing.T) {
	store, kv := newCartStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewCart()))

	raw, err := kv.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestCartStore_Load_LegacyRecords(t *testing.T) {
	store, kv := newCartStore(t)
	ctx := context.Background()

	legacy := `[
		{"id": 1, "name": "Cam sanh", "price": "120.000₫", "image": "img/cam.jpg", "quantity": 3},
		{"id": "2", "name": "Nho xanh", "price": 200000, "image": "img/nho.jpg", "quantity": 1},
		{"id": 4, "name": "Le", "image": "img/le.jpg", "quantity": 1}
	]`
	require.NoError(t, kv.Set(ctx, KeyCart, []byte(legacy)))

	cart, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, cart.Items, 3)

	assert.Equal(t, domain.ProductID("1"), cart.Items[0].ProductID)
	assert.Equal(t, domain.Money(120000), cart.Items[0].UnitPrice)
	assert.Equal(t, "120.000₫", cart.Items[0].PriceLabel)

	assert.Equal(t, domain.ProductID("2"), cart.Items[1].ProductID)
	assert.Equal(t, domain.Money(200000), cart.Items[1].UnitPrice)

	assert.Equal(t, domain.Money(0), cart.Items[2].UnitPrice)
	assert.Equal(t, domain.Money(560000), cart.Subtotal())
}

func TestCartStore_Load_DropsMalformedAndMergesDuplicates(t *testing.T) {
	store, kv := newCartStore(t)
	ctx := context.Background()

	raw := `[
		{"id": "1", "name": "Cam", "price": "10₫", "quantity": 1},
		{"id": "", "name": "No id", "price": "10₫", "quantity": 1},
		{"id": "2", "name": "Zero", "price": "10₫", "quantity": 0},
		{"id": "1", "name": "Cam again", "price": "99₫", "quantity": 2}
	]`
	require.NoError(t, kv.Set(ctx, KeyCart, []byte(raw)))

	cart, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Cam", cart.Items[0].Name)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, domain.Money(10), cart.Items[0].UnitPrice)
}

func TestCartStore_Load_InvalidJSON(t *testing.T) {
	store, kv := newCartStore(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, KeyCart, []byte("{{not-json")))

	cart, err := store.Load(ctx)
	assert.Nil(t, cart)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal cart")
}

func TestCartStore_StoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	store := NewCartStore(failingKV{err: boom}, logger.Discard())
	ctx := context.Background()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, boom)

	err = store.Save(ctx, domain.NewCart())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "save cart")
}

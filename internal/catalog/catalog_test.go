package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldenfruit/storefront/internal/domain"
	apperrors "github.com/eldenfruit/storefront/pkg/errors"
	"github.com/eldenfruit/storefront/pkg/httpclient"
	"github.com/eldenfruit/storefront/pkg/logger"
)

const sampleDoc = `{
  "products": [
    {"id": 1, "name": "Cherry Đỏ Mỹ", "category": "cherry", "newPrice": "450.000₫", "oldPrice": "500.000₫", "image": "img/cherry.jpg", "tags": ["flash-sale", "best-seller"]},
    {"id": 2, "name": "Nho Xanh Úc", "category": "nho", "price": "200.000₫", "image": "img/nho.jpg", "tags": ["best-seller"]},
    {"id": 3, "name": "Hộp Quà Cherry", "category": "gift-card", "price": "1.200.000₫", "image": "img/gift.jpg", "tags": ["gift"]},
    {"id": 4, "name": "Dưa Hấu Cắt", "category": "cat-san", "price": "45.000₫", "discount": "-5%", "newPrice": "45.000₫", "oldPrice": "90.000₫", "tags": ["cut-fruit"]},
    {"id": 2, "name": "Duplicate", "category": "nho"}
  ]
}`

func sampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)
	return c
}

func names(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestParse_IndexesAndComputesBadges(t *testing.T) {
	c := sampleCatalog(t)
	assert.Equal(t, 4, c.Len())

	cherry, ok := c.Lookup(context.Background(), "1")
	require.True(t, ok)
	assert.Equal(t, "-10%", cherry.Discount)
	assert.Equal(t, "450.000₫", cherry.CurrentPrice())

	melon, ok := c.Lookup(context.Background(), "4")
	require.True(t, ok)
	assert.Equal(t, "-5%", melon.Discount, "explicit badge is kept")

	grape, ok := c.Lookup(context.Background(), "2")
	require.True(t, ok)
	assert.Equal(t, "Nho Xanh Úc", grape.Name, "first occurrence wins")
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"products": "nope"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode catalog")
}

func TestGet_NotFound(t *testing.T) {
	_, err := sampleCatalog(t).Get(context.Background(), "999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestList_Filters(t *testing.T) {
	c := sampleCatalog(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"Cherry Đỏ Mỹ", "Nho Xanh Úc", "Hộp Quà Cherry", "Dưa Hấu Cắt"}},
		{"category", Filter{Category: "nho"}, []string{"Nho Xanh Úc"}},
		{"tag", Filter{Tag: "best-seller"}, []string{"Cherry Đỏ Mỹ", "Nho Xanh Úc"}},
		{"search case-insensitive", Filter{Query: "  CHERRY "}, []string{"Cherry Đỏ Mỹ", "Hộp Quà Cherry"}},
		{"search non-ascii", Filter{Query: "hấu"}, []string{"Dưa Hấu Cắt"}},
		{"search without accents", Filter{Query: "dua hau"}, []string{"Dưa Hấu Cắt"}},
		{"category display name", Filter{Category: "Gift Card"}, []string{"Hộp Quà Cherry"}},
		{"combined", Filter{Category: "gift-card", Query: "cherry"}, []string{"Hộp Quà Cherry"}},
		{"no match", Filter{Category: "kiwi"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(c.List(tt.filter)))
		})
	}
}

func TestCategoryTitle(t *testing.T) {
	assert.Equal(t, "Cherry Nhập Khẩu", CategoryTitle("cherry"))
	assert.Equal(t, "Đồ Uống", CategoryTitle("Đồ uống"))
	assert.Equal(t, "Tất Cả Sản Phẩm", CategoryTitle("unknown"))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o600))

	c, err := Load(context.Background(), path, nil, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"), nil, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read catalog file")
}

func TestLoad_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDoc))
	}))
	defer server.Close()

	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.Config{Timeout: 5 * time.Second, MaxConnsPerHost: 2}),
		httpclient.DefaultCircuitBreakerConfig("catalog-test"),
		logger.Discard(),
	)

	c, err := Load(context.Background(), server.URL+"/products.json", client, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	_, err = Load(context.Background(), server.URL+"/nope.json", client, logger.Discard())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = Load(context.Background(), server.URL+"/products.json", nil, logger.Discard())
	assert.Error(t, err)
}

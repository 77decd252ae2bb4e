// Package catalog serves the static product catalog loaded at start-up.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/price"
	apperrors "github.com/eldenfruit/storefront/pkg/errors"
	"github.com/eldenfruit/storefront/pkg/httpclient"
	"github.com/eldenfruit/storefront/pkg/slug"
)

// Document is the on-disk shape: {"products": [...]}.
type Document struct {
	Products []domain.Product `json:"products"`
}

var categoryTitles = map[string]string{
	"dang-mua":  "Trái Cây Đang Mùa",
	"cherry":    "Cherry Nhập Khẩu",
	"nho":       "Nho Nhập Khẩu",
	"tao":       "Táo Nhập Khẩu",
	"kiwi":      "Kiwi",
	"viet-nam":  "Trái Cây Việt Nam",
	"cat-san":   "Trái Cây Cắt Sẵn",
	"do-uong":   "Đồ Uống",
	"gift-card": "Gift Card",
}

// CategoryTitle returns the display title of a category.
func CategoryTitle(category string) string {
	if t, ok := categoryTitles[slug.Generate(category)]; ok {
		return t
	}
	return "Tất Cả Sản Phẩm"
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	// Category is a slug; a display name such as "Đồ Uống" is slugged first.
	Category string
	Tag      string
	// Query is matched as a substring of the name, ignoring case and accents.
	Query string
}

// Catalog is an immutable, indexed product list in document order.
type Catalog struct {
	products []domain.Product
	byID     map[domain.ProductID]int
}

// New indexes products. Sale products without a discount badge get one
// computed from their old and new prices. Later duplicates of an id are
// ignored.
func New(products []domain.Product) *Catalog {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[domain.ProductID]int, len(products)),
	}
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		if p.Discount == "" && p.NewPrice != "" && p.OldPrice != "" {
			p.Discount = price.DiscountBadge(p.OldPrice, p.NewPrice)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Products), nil
}

// Load reads the catalog from source, which is either a file path or an
// http(s) URL fetched through client.
func Load(ctx context.Context, source string, client *httpclient.CircuitBreakerClient, logger *slog.Logger) (*Catalog, error) {
	var (
		c   *Catalog
		err error
	)

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if client == nil {
			return nil, fmt.Errorf("load catalog %s: no http client configured", source)
		}
		var doc Document
		if err := client.GetJSON(ctx, source, &doc); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		c = New(doc.Products)
	} else {
		data, rerr := os.ReadFile(source)
		if rerr != nil {
			return nil, fmt.Errorf("read catalog file: %w", rerr)
		}
		if c, err = Parse(data); err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "catalog loaded",
		slog.String("source", source),
		slog.Int("products", c.Len()),
	)
	return c, nil
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Lookup returns the product with id.
func (c *Catalog) Lookup(_ context.Context, id domain.ProductID) (domain.Product, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[idx], true
}

// Get is Lookup with a NotFound error.
func (c *Catalog) Get(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	p, ok := c.Lookup(ctx, id)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", string(id))
	}
	return p, nil
}

// List returns the products matching f in document order.
func (c *Catalog) List(f Filter) []domain.Product {
	query := searchKey(f.Query)
	category := slug.Generate(f.Category)

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if category != "" && p.Category != category {
			continue
		}
		if f.Tag != "" && !p.HasTag(f.Tag) {
			continue
		}
		if query != "" && !strings.Contains(searchKey(p.Name), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func searchKey(s string) string {
	return strings.ToLower(slug.Fold(strings.TrimSpace(s)))
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eldenfruit/storefront/internal/catalog"
	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/pkg/httputil"
	"github.com/eldenfruit/storefront/pkg/pagination"
)

// ProductHandler serves the read-only product catalog.
type ProductHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(c *catalog.Catalog, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: c, logger: logger}
}

// productPage is a page of products with the category title for headings.
type productPage struct {
	Title string `json:"title"`
	pagination.Result[domain.Product]
}

// ListProducts handles GET /api/v1/products?category=&tag=&q=&page=&per_page=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.Filter{
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Query:    q.Get("q"),
	}

	products := h.catalog.List(filter)
	httputil.WriteData(w, http.StatusOK, productPage{
		Title:  catalog.CategoryTitle(filter.Category),
		Result: pagination.Paginate(products, pagination.FromRequest(r)),
	})
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), domain.ProductID(chi.URLParam(r, "id")))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

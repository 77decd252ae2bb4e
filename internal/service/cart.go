package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/price"
	"github.com/eldenfruit/storefront/internal/pricing"
	"github.com/eldenfruit/storefront/internal/promo"
	"github.com/eldenfruit/storefront/internal/repository"
	apperrors "github.com/eldenfruit/storefront/pkg/errors"
	"github.com/eldenfruit/storefront/pkg/validator"
)

const (
	// DefaultPriceLabel is stored when neither the caller nor the catalog knows the price.
	DefaultPriceLabel = "0₫"
	// PlaceholderImage is stored when neither the caller nor the catalog has an image.
	PlaceholderImage = "img/placeholder.jpg"

	// DefaultConfirmationTTL bounds how long a pending confirmation stays valid.
	DefaultConfirmationTTL = 5 * time.Minute
)

// Authenticator reports whether a shopper is signed in.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
}

// CatalogLookup finds a product in the storefront catalog.
type CatalogLookup interface {
	Lookup(ctx context.Context, id domain.ProductID) (domain.Product, bool)
}

// Notifier receives the cart badge count and shopper-facing notices.
type Notifier interface {
	CartChanged(ctx context.Context, itemCount int)
	Notify(ctx context.Context, notice domain.Notice)
}

// EventPublisher publishes cart domain events.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, cart *domain.Cart, totals pricing.Totals) error
	PublishCartCleared(ctx context.Context) error
	PublishCartCheckedOut(ctx context.Context, cart *domain.Cart, totals pricing.Totals) error
}

// AddItemInput is the input for adding a product to the cart. Price and image
// are optional; missing values are filled from the catalog.
type AddItemInput struct {
	ProductID domain.ProductID `json:"product_id" validate:"required"`
	Name      string           `json:"name" validate:"required"`
	Price     string           `json:"price"`
	Image     string           `json:"image"`
	Quantity  int              `json:"quantity" validate:"omitempty,gte=1,lte=99"`
}

// Dependencies are the collaborators of a CartService. Repo, Promos and
// Pricing are required; the rest fall back to no-ops.
type Dependencies struct {
	Repo            repository.CartRepository
	Auth            Authenticator
	Catalog         CatalogLookup
	Notifier        Notifier
	Events          EventPublisher
	Promos          *promo.Catalog
	Pricing         *pricing.Engine
	Logger          *slog.Logger
	ConfirmationTTL time.Duration
}

// CartService owns the shopper's cart, the applied promo code and the
// pending confirmations. All calls are serialized.
type CartService struct {
	mu sync.Mutex

	repo     repository.CartRepository
	auth     Authenticator
	catalog  CatalogLookup
	notifier Notifier
	events   EventPublisher
	promos   *promo.Catalog
	engine   *pricing.Engine
	logger   *slog.Logger

	cart    *domain.Cart
	applied *promo.Rule

	pending    map[string]*Confirmation
	confirmTTL time.Duration
	now        func() time.Time
}

// NewCartService creates a new CartService. The cart is loaded from the
// repository on first use.
func NewCartService(deps Dependencies) *CartService {
	s := &CartService{
		repo:       deps.Repo,
		auth:       deps.Auth,
		catalog:    deps.Catalog,
		notifier:   deps.Notifier,
		events:     deps.Events,
		promos:     deps.Promos,
		engine:     deps.Pricing,
		logger:     deps.Logger,
		pending:    make(map[string]*Confirmation),
		confirmTTL: deps.ConfirmationTTL,
		now:        time.Now,
	}
	if s.auth == nil {
		s.auth = allowAll{}
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.events == nil {
		s.events = nopEvents{}
	}
	if s.promos == nil {
		s.promos = promo.Default()
	}
	if s.engine == nil {
		s.engine = pricing.NewEngine(pricing.DefaultPolicy())
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.confirmTTL <= 0 {
		s.confirmTTL = DefaultConfirmationTTL
	}
	return s
}

// AddItem adds a product to the cart, or bumps the quantity when the product
// is already there. An existing line keeps the name, price and image it was
// first added with.
func (s *CartService) AddItem(ctx context.Context, input AddItemInput) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.auth.IsAuthenticated(ctx) {
		observeOperation(opAddItem, outcomeRejected)
		s.notify(ctx, domain.NoticeLoginRequired,
			"Bạn cần đăng nhập tài khoản để mua hàng.")
		return nil, apperrors.AuthRequired("sign in to add items to the cart")
	}

	input.ProductID = domain.ProductID(strings.TrimSpace(string(input.ProductID)))
	input.Name = strings.TrimSpace(input.Name)
	if err := validator.Validate(input); err != nil {
		observeOperation(opAddItem, outcomeRejected)
		s.logger.WarnContext(ctx, "invalid product data",
			slog.String("product_id", string(input.ProductID)),
			slog.String("name", input.Name),
			slog.String("error", err.Error()),
		)
		s.notify(ctx, domain.NoticeError, "Có lỗi xảy ra khi thêm sản phẩm")
		return nil, err
	}

	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	label, image := s.enrich(ctx, input)
	if !price.InRange(label) {
		observeOperation(opAddItem, outcomeRejected)
		s.logger.WarnContext(ctx, "product price out of range",
			slog.String("product_id", string(input.ProductID)),
			slog.String("price", label),
		)
		s.notify(ctx, domain.NoticeError, "Có lỗi xảy ra khi thêm sản phẩm")
		return nil, apperrors.InvalidInput(fmt.Sprintf("price must not exceed %s", price.Format(price.MaxAmount)))
	}

	cart, changed, err := s.mutate(ctx, opAddItem, func(c *domain.Cart) bool {
		if idx := c.FindItemIndex(input.ProductID); idx >= 0 {
			c.Items[idx].Quantity += quantity
			return true
		}
		c.Items = append(c.Items, domain.CartLineItem{
			ProductID:  input.ProductID,
			Name:       input.Name,
			PriceLabel: label,
			UnitPrice:  price.Parse(label),
			Image:      image,
			Quantity:   quantity,
		})
		return true
	})
	if err != nil {
		s.notify(ctx, domain.NoticeError, "Có lỗi xảy ra khi thêm sản phẩm")
		return nil, err
	}
	if changed {
		s.publishUpdated(ctx)
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("product_id", string(input.ProductID)),
		slog.Int("quantity", quantity),
	)
	s.notify(ctx, domain.NoticeSuccess, fmt.Sprintf("Đã thêm %q vào giỏ hàng!", input.Name))
	return cart, nil
}

func (s *CartService) enrich(ctx context.Context, input AddItemInput) (label, image string) {
	label = strings.TrimSpace(input.Price)
	image = strings.TrimSpace(input.Image)

	needPrice := label == "" || label == DefaultPriceLabel
	needImage := image == "" || image == PlaceholderImage
	if (needPrice || needImage) && s.catalog != nil {
		if p, ok := s.catalog.Lookup(ctx, input.ProductID); ok {
			if needPrice && p.CurrentPrice() != "" {
				label = p.CurrentPrice()
			}
			if needImage && p.Image != "" {
				image = p.Image
			}
		}
	}

	if label == "" {
		label = DefaultPriceLabel
	}
	if image == "" {
		image = PlaceholderImage
	}
	return label, image
}

// RemoveItem deletes the line for productID. Removing an absent product is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, productID domain.ProductID) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, productID)
}

func (s *CartService) removeLocked(ctx context.Context, productID domain.ProductID) (*domain.Cart, error) {
	var removed string
	cart, changed, err := s.mutate(ctx, opRemoveItem, func(c *domain.Cart) bool {
		idx := c.FindItemIndex(productID)
		if idx < 0 {
			return false
		}
		removed = c.Items[idx].Name
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		return true
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.publishUpdated(ctx)
		s.notify(ctx, domain.NoticeSuccess, fmt.Sprintf("Đã xóa %q khỏi giỏ hàng", removed))
	}
	return cart, nil
}

// SetQuantity sets the quantity of a line exactly. A quantity of zero or less
// removes the line.
func (s *CartService) SetQuantity(ctx context.Context, productID domain.ProductID, quantity int) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.removeLocked(ctx, productID)
	}

	cart, changed, err := s.mutate(ctx, opSetQuantity, func(c *domain.Cart) bool {
		idx := c.FindItemIndex(productID)
		if idx < 0 || c.Items[idx].Quantity == quantity {
			return false
		}
		c.Items[idx].Quantity = quantity
		return true
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.publishUpdated(ctx)
	}
	return cart, nil
}

// Increment adds one to the quantity of a line.
func (s *CartService) Increment(ctx context.Context, productID domain.ProductID) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var name string
	cart, changed, err := s.mutate(ctx, opIncrement, func(c *domain.Cart) bool {
		idx := c.FindItemIndex(productID)
		if idx < 0 {
			return false
		}
		c.Items[idx].Quantity++
		name = c.Items[idx].Name
		return true
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.publishUpdated(ctx)
		s.notify(ctx, domain.NoticeSuccess, fmt.Sprintf("Đã tăng số lượng %q", name))
	}
	return cart, nil
}

// Decrement subtracts one from the quantity of a line. It never goes below
// one; use RemoveItem to drop the line.
func (s *CartService) Decrement(ctx context.Context, productID domain.ProductID) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var name string
	cart, changed, err := s.mutate(ctx, opDecrement, func(c *domain.Cart) bool {
		idx := c.FindItemIndex(productID)
		if idx < 0 || c.Items[idx].Quantity <= 1 {
			return false
		}
		c.Items[idx].Quantity--
		name = c.Items[idx].Name
		return true
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.publishUpdated(ctx)
		s.notify(ctx, domain.NoticeSuccess, fmt.Sprintf("Đã giảm số lượng %q", name))
	}
	return cart, nil
}

// Clear empties the cart and drops the applied promo code.
func (s *CartService) Clear(ctx context.Context) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

func (s *CartService) clearLocked(ctx context.Context) (*domain.Cart, error) {
	cart, _, err := s.mutate(ctx, opClear, func(c *domain.Cart) bool {
		c.Items = []domain.CartLineItem{}
		return true
	})
	if err != nil {
		return nil, err
	}
	s.applied = nil

	if err := s.events.PublishCartCleared(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart cleared event",
			slog.String("error", err.Error()),
		)
	}
	s.notify(ctx, domain.NoticeSuccess, "Đã xóa tất cả sản phẩm")
	return cart, nil
}

// Items returns a copy of the cart lines in first-added order.
func (s *CartService) Items(ctx context.Context) ([]domain.CartLineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return cart.Clone().Items, nil
}

// Cart returns a snapshot of the cart.
func (s *CartService) Cart(ctx context.Context) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return cart.Clone(), nil
}

// ItemCount returns the sum of all line quantities.
func (s *CartService) ItemCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount(), nil
}

// load returns the live cart, reading it from the repository the first time.
// Callers must hold s.mu.
func (s *CartService) load(ctx context.Context) (*domain.Cart, error) {
	if s.cart != nil {
		return s.cart, nil
	}
	cart, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load cart", slog.String("error", err.Error()))
		return nil, fmt.Errorf("load cart: %w", err)
	}
	s.cart = cart
	count := cart.ItemCount()
	cartItems.Set(float64(count))
	s.notifier.CartChanged(ctx, count)
	return s.cart, nil
}

// Warm loads the persisted cart so the item count is published before the
// first cart request.
func (s *CartService) Warm(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load(ctx)
	return err
}

// mutate applies fn to the live cart and persists the result when fn reports
// a change. On a save failure the live cart is restored to its previous state.
// Callers must hold s.mu.
func (s *CartService) mutate(ctx context.Context, op string, fn func(*domain.Cart) bool) (*domain.Cart, bool, error) {
	cart, err := s.load(ctx)
	if err != nil {
		observeOperation(op, outcomeError)
		return nil, false, err
	}

	prev := cart.Clone()
	if !fn(cart) {
		observeOperation(op, outcomeNoop)
		return cart.Clone(), false, nil
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		s.cart = prev
		observeOperation(op, outcomeError)
		s.logger.ErrorContext(ctx, "failed to save cart",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	observeOperation(op, outcomeOK)
	count := cart.ItemCount()
	cartItems.Set(float64(count))
	s.notifier.CartChanged(ctx, count)
	return cart.Clone(), true, nil
}

func (s *CartService) publishUpdated(ctx context.Context) {
	snapshot := s.cart.Clone()
	totals := s.engine.Compute(snapshot.Items, s.applied)
	if err := s.events.PublishCartUpdated(ctx, snapshot, totals); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart updated event",
			slog.String("error", err.Error()),
		)
	}
}

func (s *CartService) notify(ctx context.Context, level domain.NoticeLevel, msg string) {
	s.notifier.Notify(ctx, domain.Notice{Level: level, Message: msg})
}

type allowAll struct{}

func (allowAll) IsAuthenticated(context.Context) bool { return true }

type nopNotifier struct{}

func (nopNotifier) CartChanged(context.Context, int) {}

func (nopNotifier) Notify(context.Context, domain.Notice) {}

type nopEvents struct{}

func (nopEvents) PublishCartUpdated(context.Context, *domain.Cart, pricing.Totals) error {
	return nil
}

func (nopEvents) PublishCartCleared(context.Context) error { return nil }

func (nopEvents) PublishCartCheckedOut(context.Context, *domain.Cart, pricing.Totals) error {
	return nil
}

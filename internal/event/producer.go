package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/pricing"
	pkgkafka "github.com/eldenfruit/storefront/pkg/kafka"
	"github.com/eldenfruit/storefront/pkg/logger"
)

// Kafka topics for cart domain events.
var (
	TopicCartUpdated    = pkgkafka.Topic("cart", "updated")
	TopicCartCleared    = pkgkafka.Topic("cart", "cleared")
	TopicCartCheckedOut = pkgkafka.Topic("cart", "checked_out")
)

// AggregateTypeCart is the aggregate type of every cart event.
const AggregateTypeCart = "cart"

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ProductID string       `json:"product_id"`
	Name      string       `json:"name"`
	UnitPrice domain.Money `json:"unit_price"`
	Quantity  int          `json:"quantity"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string         `json:"session_id"`
	Items     []CartItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Totals    pricing.Totals `json:"totals"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// CartCheckedOutData is the payload for a cart.checked_out event.
type CartCheckedOutData struct {
	SessionID  string         `json:"session_id"`
	CustomerID string         `json:"customer_id,omitempty"`
	Items      []CartItemData `json:"items"`
	Totals     pricing.Totals `json:"totals"`
}

// Publisher sends an event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes cart domain events.
type Producer struct {
	publisher Publisher
	sessionID string
	logger    *slog.Logger
}

// NewProducer creates an event producer for the given storefront session.
func NewProducer(publisher Publisher, sessionID string, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		sessionID: sessionID,
		logger:    logger,
	}
}

func itemData(items []domain.CartLineItem) []CartItemData {
	out := make([]CartItemData, len(items))
	for i, item := range items {
		out[i] = CartItemData{
			ProductID: string(item.ProductID),
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}
	return out
}

func (p *Producer) publish(ctx context.Context, topic, eventType string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, SourceStorefront,
		pkgkafka.Aggregate{Type: AggregateTypeCart, ID: p.sessionID},
		data,
		pkgkafka.WithCorrelation(logger.CorrelationIDFromContext(ctx)),
		pkgkafka.WithMeta("customer_id", logger.CustomerIDFromContext(ctx)),
	)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published cart event",
		slog.String("event_type", eventType),
		slog.String("session_id", p.sessionID),
	)

	return nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart, totals pricing.Totals) error {
	return p.publish(ctx, TopicCartUpdated, "cart.updated", CartUpdatedData{
		SessionID: p.sessionID,
		Items:     itemData(cart.Items),
		ItemCount: cart.ItemCount(),
		Totals:    totals,
	})
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context) error {
	return p.publish(ctx, TopicCartCleared, "cart.cleared", CartClearedData{
		SessionID: p.sessionID,
	})
}

// PublishCartCheckedOut publishes a cart.checked_out event.
func (p *Producer) PublishCartCheckedOut(ctx context.Context, cart *domain.Cart, totals pricing.Totals) error {
	return p.publish(ctx, TopicCartCheckedOut, "cart.checked_out", CartCheckedOutData{
		SessionID:  p.sessionID,
		CustomerID: logger.CustomerIDFromContext(ctx),
		Items:      itemData(cart.Items),
		Totals:     totals,
	})
}

// Nop discards every event. Used when EVENTS_ENABLED is false.
type Nop struct{}

func (Nop) PublishCartUpdated(context.Context, *domain.Cart, pricing.Totals) error { return nil }
func (Nop) PublishCartCleared(context.Context) error { return nil }
func (Nop) PublishCartCheckedOut(context.Context, *domain.Cart, pricing.Totals) error { return nil }

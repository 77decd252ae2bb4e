// Package notify keeps the shopper-facing notifications and the cart badge
// count so the presentation layer can poll for them.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/eldenfruit/storefront/internal/domain"
)

// DefaultCapacity is the number of notices retained when none is configured.
const DefaultCapacity = 50

var noticesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_notices_total",
		Help: "Total number of shopper notices emitted, by level",
	},
	[]string{"level"},
)

// Entry is a notice with its position in the feed.
type Entry struct {
	Seq       uint64             `json:"seq"`
	Level     domain.NoticeLevel `json:"level"`
	Message   string             `json:"message"`
	CreatedAt time.Time          `json:"created_at"`
}

// Snapshot is what a poll returns.
type Snapshot struct {
	ItemCount int     `json:"item_count"`
	LastSeq   uint64  `json:"last_seq"`
	Notices   []Entry `json:"notices"`
}

// Feed is a bounded ring of notices plus the latest cart item count.
// Sequence numbers start at 1 and never repeat.
type Feed struct {
	mu        sync.RWMutex
	entries   []Entry
	start     int
	size      int
	lastSeq   uint64
	itemCount int
	now       func() time.Time
	logger    *slog.Logger
}

// NewFeed creates a feed retaining up to capacity notices.
func NewFeed(capacity int, logger *slog.Logger) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{
		entries: make([]Entry, capacity),
		now:     time.Now,
		logger:  logger,
	}
}

// CartChanged records the new item count for the badge.
func (f *Feed) CartChanged(_ context.Context, itemCount int) {
	f.mu.Lock()
	f.itemCount = itemCount
	f.mu.Unlock()
}

// Notify appends a notice, evicting the oldest when full.
func (f *Feed) Notify(ctx context.Context, n domain.Notice) {
	f.mu.Lock()
	f.lastSeq++
	entry := Entry{
		Seq:       f.lastSeq,
		Level:     n.Level,
		Message:   n.Message,
		CreatedAt: f.now().UTC(),
	}

	idx := (f.start + f.size) % len(f.entries)
	f.entries[idx] = entry
	if f.size < len(f.entries) {
		f.size++
	} else {
		f.start = (f.start + 1) % len(f.entries)
	}
	f.mu.Unlock()

	noticesTotal.WithLabelValues(string(n.Level)).Inc()
	f.logger.DebugContext(ctx, "notice emitted",
		slog.String("level", string(n.Level)),
		slog.String("message", n.Message),
	)
}

// Since returns the retained notices with a sequence number greater than
// after, oldest first, together with the current item count.
func (f *Feed) Since(after uint64) Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	snap := Snapshot{
		ItemCount: f.itemCount,
		LastSeq:   f.lastSeq,
		Notices:   []Entry{},
	}
	for i := 0; i < f.size; i++ {
		e := f.entries[(f.start+i)%len(f.entries)]
		if e.Seq > after {
			snap.Notices = append(snap.Notices, e)
		}
	}
	return snap
}

// ItemCount returns the last recorded item count.
func (f *Feed) ItemCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.itemCount
}

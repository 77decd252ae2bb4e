package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/pkg/logger"
)

func TestFeed_NotifyAndSince(t *testing.T) {
	f := NewFeed(10, logger.Discard())
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fixed }
	ctx := context.Background()

	f.Notify(ctx, domain.Notice{Level: domain.NoticeSuccess, Message: "added"})
	f.Notify(ctx, domain.Notice{Level: domain.NoticeError, Message: "bad code"})

	snap := f.Since(0)
	assert.Equal(t, uint64(2), snap.LastSeq)
	require.Len(t, snap.Notices, 2)
	assert.Equal(t, uint64(1), snap.Notices[0].Seq)
	assert.Equal(t, "added", snap.Notices[0].Message)
	assert.Equal(t, domain.NoticeError, snap.Notices[1].Level)
	assert.Equal(t, fixed, snap.Notices[1].CreatedAt)

	later := f.Since(1)
	require.Len(t, later.Notices, 1)
	assert.Equal(t, "bad code", later.Notices[0].Message)

	assert.Empty(t, f.Since(2).Notices)
}

func TestFeed_EvictsOldest(t *testing.T) {
	f := NewFeed(3, logger.Discard())
	ctx := context.Background()

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		f.Notify(ctx, domain.Notice{Level: domain.NoticeSuccess, Message: msg})
	}

	snap := f.Since(0)
	require.Len(t, snap.Notices, 3)
	assert.Equal(t, "c", snap.Notices[0].Message)
	assert.Equal(t, "e", snap.Notices[2].Message)
	assert.Equal(t, uint64(5), snap.LastSeq)
}

func TestFeed_ItemCount(t *testing.T) {
	f := NewFeed(0, logger.Discard())
	assert.Equal(t, 0, f.ItemCount())

	f.CartChanged(context.Background(), 4)
	assert.Equal(t, 4, f.ItemCount())
	assert.Equal(t, 4, f.Since(0).ItemCount)
	assert.Len(t, f.entries, DefaultCapacity)
}

func TestFeed_ConcurrentUse(t *testing.T) {
	f := NewFeed(16, logger.Discard())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				f.Notify(ctx, domain.Notice{Level: domain.NoticeSuccess, Message: "x"})
				f.CartChanged(ctx, n)
				_ = f.Since(0)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint64(400), f.Since(0).LastSeq)
	assert.Len(t, f.Since(0).Notices, 16)
}

package verification

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	client := testutil.Redis(t)
	store := NewRedisStore(client, "test:verification:")
	ctx := context.Background()
	now := time.Now()

	put := func(t *testing.T, phone, code string, ttl time.Duration) {
		t.Helper()
		require.NoError(t, store.Put(ctx, models.VerificationRecord{
			Phone: phone, Code: code, CreatedAt: now, ExpiresAt: now.Add(ttl),
		}))
	}

	t.Run("consume once", func(t *testing.T) {
		put(t, "01011110001", "012345", time.Minute)

		ok, err := store.Consume(ctx, "01011110001", "012345", now)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Consume(ctx, "01011110001", "012345", now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wrong code", func(t *testing.T) {
		put(t, "01011110002", "111111", time.Minute)
		ok, err := store.Consume(ctx, "01011110002", "111112", now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing record", func(t *testing.T) {
		ok, err := store.Consume(ctx, "01099999999", "111111", now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired by logical clock", func(t *testing.T) {
		put(t, "01011110003", "333333", time.Minute)
		ok, err := store.Consume(ctx, "01011110003", "333333", now.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("put replaces and resets consumed", func(t *testing.T) {
		put(t, "01011110004", "444444", time.Minute)
		ok, err := store.Consume(ctx, "01011110004", "444444", now)
		require.NoError(t, err)
		require.True(t, ok)

		put(t, "01011110004", "555555", time.Minute)
		ok, err = store.Consume(ctx, "01011110004", "444444", now)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.Consume(ctx, "01011110004", "555555", now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("key carries a ttl", func(t *testing.T) {
		put(t, "01011110005", "666666", time.Minute)
		ttl, err := client.TTL(ctx, "test:verification:01011110005").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("concurrent consume", func(t *testing.T) {
		put(t, "01011110006", "777777", time.Minute)

		var successes atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, err := store.Consume(ctx, "01011110006", "777777", now); err == nil && ok {
					successes.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), successes.Load())
	})
}

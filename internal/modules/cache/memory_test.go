package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestImageCache(t *testing.T) {
	ctx := context.Background()
	c := NewImageCache(time.Minute)

	_, found, err := c.GetValue(ctx, "missing.jpg")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Set(ctx, "12345abcde.jpg", []byte{1, 2, 3}))
	v, found, err := c.GetValue(ctx, "12345abcde.jpg")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte{1, 2, 3}, v)

	require.NoError(t, c.Delete(ctx, "12345abcde.jpg"))
	_, found, err = c.GetValue(ctx, "12345abcde.jpg")
	require.NoError(t, err)
	require.False(t, found)
}

func TestManagerExpiration(t *testing.T) {
	ctx := context.Background()
	m := NewManager[string](time.Minute)
	require.NoError(t, m.SetWithExpiration(ctx, "k", "v", 20*time.Millisecond))
	time.Sleep(50 * time.Millisecond)
	_, found, err := m.GetValue(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}

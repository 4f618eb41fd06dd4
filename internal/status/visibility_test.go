package status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVisibility_RefreshOnlyWhenStale(t *testing.T) {
	src := &fakeSource{}
	cache, clk := newCache(src)
	vis := NewVisibility(cache)
	ctx := context.Background()

	cache.Get(ctx, false)

	assert.False(t, vis.SetVisible(ctx, false))
	clk.Advance(5 * time.Second)
	assert.False(t, vis.SetVisible(ctx, true), "entry is only 5s old")

	assert.False(t, vis.SetVisible(ctx, false))
	clk.Advance(40 * time.Second)
	assert.True(t, vis.SetVisible(ctx, true))
	assert.True(t, vis.Visible())

	assert.Equal(t, int32(2), src.calls.Load())
}

func TestVisibility_VisibleToVisibleIsNoop(t *testing.T) {
	src := &fakeSource{}
	cache, clk := newCache(src)
	vis := NewVisibility(cache)

	clk.Advance(time.Hour)
	assert.False(t, vis.SetVisible(context.Background(), true))
	assert.Zero(t, src.calls.Load())
}

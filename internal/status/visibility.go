package status

import (
	"context"
	"sync"
)

// Visibility turns hidden to visible transitions of the hosting view into a
// refresh of the cache, but only when the entry is older than the policy's
// visibility age.
type Visibility struct {
	cache *Cache

	mu      sync.Mutex
	visible bool
}

// NewVisibility starts in the visible state
func NewVisibility(cache *Cache) *Visibility {
	return &Visibility{cache: cache, visible: true}
}

// Visible reports the last known visibility
func (v *Visibility) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// SetVisible records the new visibility and reports whether it caused a refresh
func (v *Visibility) SetVisible(ctx context.Context, visible bool) bool {
	v.mu.Lock()
	wasHidden := !v.visible
	v.visible = visible
	v.mu.Unlock()

	if !visible || !wasHidden {
		return false
	}
	_, refreshed := v.cache.RefreshIfOlder(ctx, v.cache.Policy().VisibilityMaxAge())
	return refreshed
}

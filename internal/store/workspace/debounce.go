package workspacestore

import (
	"context"
	"log"
	"sync"
	"time"

	"remixcanvas/internal/workspace"
)

// DebouncedSaver coalesces the save-after-every-mutation firehose at the
// persistence boundary: per owner, only the latest graph within the window is
// written. Flush or Close forces pending writes out.
type DebouncedSaver struct {
	inner  Store
	window time.Duration

	mu      sync.Mutex
	pending map[string]*workspace.Graph
	timers  map[string]*time.Timer
	closed  bool
}

func NewDebouncedSaver(inner Store, window time.Duration) *DebouncedSaver {
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	return &DebouncedSaver{
		inner:   inner,
		window:  window,
		pending: make(map[string]*workspace.Graph),
		timers:  make(map[string]*time.Timer),
	}
}

// Load passes through, but consults the pending buffer first so a reader
// never sees state older than its own last save.
func (d *DebouncedSaver) Load(ctx context.Context, ownerID string) (*workspace.Graph, bool, error) {
	if d == nil || d.inner == nil {
		return nil, false, nil
	}
	owner := normalizeOwnerID(ownerID)
	d.mu.Lock()
	g := d.pending[owner]
	d.mu.Unlock()
	if g != nil {
		return g.Clone(), true, nil
	}
	return d.inner.Load(ctx, owner)
}

// Save records the graph as the owner's latest state and schedules the write.
// The write itself runs on the timer goroutine with a background context; the
// caller's context only covers enqueueing.
func (d *DebouncedSaver) Save(_ context.Context, ownerID string, g *workspace.Graph) error {
	if d == nil || d.inner == nil {
		return nil
	}
	owner := normalizeOwnerID(ownerID)
	if owner == "" || g == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return d.inner.Save(context.Background(), owner, g)
	}
	d.pending[owner] = g.Clone()
	if _, scheduled := d.timers[owner]; !scheduled {
		d.timers[owner] = time.AfterFunc(d.window, func() { d.flushOwner(owner) })
	}
	return nil
}

func (d *DebouncedSaver) flushOwner(owner string) {
	d.mu.Lock()
	g := d.pending[owner]
	delete(d.pending, owner)
	delete(d.timers, owner)
	d.mu.Unlock()
	if g == nil {
		return
	}
	if err := d.inner.Save(context.Background(), owner, g); err != nil {
		log.Printf("workspacestore: debounced save for %s failed: %v", owner, err)
	}
}

// Flush writes out every pending graph immediately.
func (d *DebouncedSaver) Flush() {
	if d == nil {
		return
	}
	d.mu.Lock()
	owners := make([]string, 0, len(d.pending))
	for owner, timer := range d.timers {
		timer.Stop()
		owners = append(owners, owner)
	}
	d.mu.Unlock()
	for _, owner := range owners {
		d.flushOwner(owner)
	}
}

// Close flushes and makes subsequent saves write through synchronously.
func (d *DebouncedSaver) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.Flush()
}

package woniuimport

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing.
const (
	MinPoolSize = 1

	// MaxPoolSize bounds concurrent Chrome instances, about 200MB each.
	MaxPoolSize = 8

	// Half the CPUs, leaving room for Chrome's child processes.
	cpuDivisor = 2
)

// PreviewPool lends BrowserPreview instances to batch workers. Previews are
// built on demand up to the pool size; their browsers start on first use.
type PreviewPool struct {
	opts  []BrowserOption
	idle  chan *BrowserPreview
	slots chan struct{}
	done  chan struct{}

	mu     sync.Mutex
	all    []*BrowserPreview
	lent   map[*BrowserPreview]bool
	closed bool
}

// NewPreviewPool creates a pool of up to n previews built with opts.
func NewPreviewPool(n int, opts ...BrowserOption) *PreviewPool {
	n = max(n, MinPoolSize)
	return &PreviewPool{
		opts:  opts,
		idle:  make(chan *BrowserPreview, n),
		slots: make(chan struct{}, n),
		done:  make(chan struct{}),
		lent:  make(map[*BrowserPreview]bool, n),
	}
}

// Acquire returns an idle preview, or a new one while the pool is below
// capacity, else waits for a Release. It fails with ErrPoolClosed after
// Close and with ctx's error when ctx ends first.
func (p *PreviewPool) Acquire(ctx context.Context) (*BrowserPreview, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	case pv := <-p.idle:
		return p.lend(pv), nil
	default:
	}

	select {
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case pv := <-p.idle:
		return p.lend(pv), nil
	case p.slots <- struct{}{}:
		return p.spawn()
	}
}

func (p *PreviewPool) spawn() (*BrowserPreview, error) {
	pv := NewBrowserPreview(p.opts...)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	p.all = append(p.all, pv)
	p.lent[pv] = true
	return pv, nil
}

func (p *PreviewPool) lend(pv *BrowserPreview) *BrowserPreview {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lent[pv] = true
	return pv
}

// Release hands pv back. It never blocks: a preview that is not on loan,
// such as one already released or one the pool did not create, is ignored,
// and after Close it does nothing since Close already shut pv down.
func (p *PreviewPool) Release(pv *BrowserPreview) {
	if pv == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || !p.lent[pv] {
		return
	}
	delete(p.lent, pv)
	select {
	case p.idle <- pv:
	default:
	}
}

// Close shuts down every preview the pool created. Later calls are no-ops.
func (p *PreviewPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	all := p.all
	p.all = nil
	p.mu.Unlock()

	var errs []error
	for _, pv := range all {
		errs = append(errs, pv.Close())
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *PreviewPool) Size() int {
	return cap(p.slots)
}

// ResolvePoolSize returns workers when positive, else half of GOMAXPROCS
// clamped to [MinPoolSize, MaxPoolSize]. GOMAXPROCS honors container
// quotas once automaxprocs has run.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}

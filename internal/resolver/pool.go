package resolver

import (
	"context"

	"github.com/sekitap/kitaplik/internal/book"
	"github.com/sekitap/kitaplik/internal/source"
)

// workerPool bounds how many adapter calls run at once across concurrent
// resolutions. The catalog sites are fragile; a handful of in-flight
// requests is plenty.
type workerPool struct {
	slots chan struct{}
}

func newWorkerPool(size int) *workerPool {
	if size < 1 {
		size = 1
	}
	return &workerPool{slots: make(chan struct{}, size)}
}

// search runs one adapter call inside a pool slot, honoring cancellation
// while waiting for capacity.
func (p *workerPool) search(ctx context.Context, a source.Adapter, req source.Request) (*book.Candidate, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.slots }()

	return a.Search(ctx, req)
}

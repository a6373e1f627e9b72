package image

import "sync"

// Pool is a thread-safe pool of pixel storage grouped by dimensions.
//
// Pipeline stages allocate a fresh buffer for every step and release the
// previous one, so identically sized storage is requested over and over.
// Reused storage is always zeroed before it is handed out.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][][]float32
	maxSize int // max slices per bucket
}

// poolKey identifies a bucket of identically sized storage.
type poolKey struct {
	width  int
	height int
}

// NewPool creates a pool retaining at most maxPerBucket slices per size.
// A maxPerBucket of 0 means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][][]float32),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed buffer of the given size. Dimensions must be positive.
func (p *Pool) Get(width, height int) *PixelBuffer {
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		pix := bucket[n-1]
		bucket[n-1] = nil
		p.buckets[key] = bucket[:n-1]
		p.mu.Unlock()

		clear(pix)
		return &PixelBuffer{pix: pix, width: width, height: height}
	}
	p.mu.Unlock()

	return &PixelBuffer{
		pix:    make([]float32, Channels*width*height),
		width:  width,
		height: height,
	}
}

// Put releases buf into this pool. Equivalent to buf.Release for buffers
// obtained from p.
func (p *Pool) Put(buf *PixelBuffer) {
	if buf == nil || buf.released {
		return
	}
	buf.released = true
	p.put(buf.width, buf.height, buf.pix)
	buf.pix = nil
}

func (p *Pool) put(width, height int, pix []float32) {
	if pix == nil || len(pix) != Channels*width*height {
		return
	}
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, pix)
}

// Retained returns the number of slices currently held for the given size.
func (p *Pool) Retained(width, height int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[poolKey{width: width, height: height}])
}

// defaultPool backs New, Clone, Crop and Release.
var defaultPool = NewPool(8)

// DefaultPool returns the package-level pool.
func DefaultPool() *Pool {
	return defaultPool
}

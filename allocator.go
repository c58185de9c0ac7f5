package jsonstream

// Allocator is a pluggable buffer-growth suite: a custom memory
// allocator with opaque alloc/grow operations, in place of manual
// malloc/realloc. In Go there is no manual free, so the suite is
// reduced to the two operations that matter for a byte-slice-backed
// parser: allocating a fresh buffer of a given capacity, and growing
// an existing one to at least a given capacity. The lexer's token
// output buffer grows through an Allocator so tests can plug in one
// that counts or caps allocations; the grammar symbol stack and the
// member-name lists use ordinary Go allocation. This plays the same role
// `opal-lang/opal`'s functional LexerOpt-configured knobs play for its
// lexer's own tunables.
type Allocator interface {
	Alloc(capacity int) []byte
	Grow(buf []byte, capacity int) []byte
}

// defaultAllocator is the runtime-GC-backed fallback, used unless the
// caller supplies one via WithAllocator.
type defaultAllocator struct{}

func (defaultAllocator) Alloc(capacity int) []byte {
	return make([]byte, 0, capacity)
}

func (defaultAllocator) Grow(buf []byte, capacity int) []byte {
	if cap(buf) >= capacity {
		return buf
	}
	grown := make([]byte, len(buf), capacity)
	copy(grown, buf)
	return grown
}

// growableBuffer is a small embedded fixed-size buffer that promotes
// to the heap on first overflow. inline holds the embedded capacity;
// once a grow exceeds it, heap takes over and inline is no longer
// touched.
type growableBuffer struct {
	inline    [64]byte
	heap      []byte
	usingHeap bool
	used      int
}

func (g *growableBuffer) reset() {
	g.used = 0
}

// releaseHeap drops the heap buffer, matching Reset's contract that
// heap buffers are RETAINED (only the member-name stack is fully
// freed on Reset) — so this is only called from Close, never Reset.
func (g *growableBuffer) releaseHeap() {
	g.heap = nil
	g.usingHeap = false
	g.used = 0
}

func (g *growableBuffer) slice() []byte {
	if g.usingHeap {
		return g.heap[:g.used]
	}
	return g.inline[:g.used]
}

func (g *growableBuffer) cap() int {
	if g.usingHeap {
		return cap(g.heap)
	}
	return len(g.inline)
}

// append adds bytes, promoting to a heap buffer via alloc on first
// overflow of the inline array.
func (g *growableBuffer) append(alloc Allocator, bs ...byte) {
	need := g.used + len(bs)
	if !g.usingHeap {
		if need <= len(g.inline) {
			copy(g.inline[g.used:], bs)
			g.used = need
			return
		}
		// promote to heap
		g.heap = alloc.Alloc(need * 2)
		g.heap = g.heap[:g.used]
		copy(g.heap, g.inline[:g.used])
		g.usingHeap = true
	}
	if need > cap(g.heap) {
		g.heap = alloc.Grow(g.heap, need*2)
	}
	g.heap = g.heap[:need]
	copy(g.heap[g.used:], bs)
	g.used = need
}

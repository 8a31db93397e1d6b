package culling

// Pool is a freelist of reusable T values. Values handed out by Alloc stay owned by the
// caller until they are returned with FreeArray.
type Pool[T any] struct {
	newFn func() *T
	free  []*T
	inUse int
}

// NewPool creates a pool pre-filled with capacity values built by newFn.
//
// Parameters:
//   - newFn: constructs a fresh value when the freelist is empty
//   - capacity: the number of values allocated up front
//
// Returns:
//   - *Pool[T]: the pool
func NewPool[T any](newFn func() *T, capacity int) *Pool[T] {
	p := &Pool[T]{newFn: newFn, free: make([]*T, 0, capacity)}
	for range capacity {
		p.free = append(p.free, newFn())
	}
	return p
}

// Alloc takes a value from the freelist, growing it when empty.
func (p *Pool[T]) Alloc() *T {
	p.inUse++
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		p.free = p.free[:n-1]
		return v
	}
	return p.newFn()
}

// FreeArray returns every value of items to the freelist.
//
// Parameters:
//   - items: values previously returned by Alloc
func (p *Pool[T]) FreeArray(items []*T) {
	p.free = append(p.free, items...)
	p.inUse -= len(items)
}

// InUse returns the number of values allocated and not yet freed.
func (p *Pool[T]) InUse() int {
	return p.inUse
}

// Free returns the number of values waiting on the freelist.
func (p *Pool[T]) Free() int {
	return len(p.free)
}

// objectList is a per-frame list of pooled render objects. begin returns the previous
// frame's entries to the pool and truncates the list; emit appends a new entry.
type objectList struct {
	pool  *Pool[RenderObject]
	items []*RenderObject
}

func newObjectList(capacity int) *objectList {
	return &objectList{
		pool:  NewPool(func() *RenderObject { return &RenderObject{} }, capacity),
		items: make([]*RenderObject, 0, capacity),
	}
}

func (l *objectList) begin() {
	l.pool.FreeArray(l.items)
	clear(l.items)
	l.items = l.items[:0]
}

func (l *objectList) emit(ro RenderObject) {
	v := l.pool.Alloc()
	*v = ro
	l.items = append(l.items, v)
}

// snapshot copies the current entries by value.
func (l *objectList) snapshot() []RenderObject {
	out := make([]RenderObject, len(l.items))
	for i, ro := range l.items {
		out[i] = *ro
	}
	return out
}

package downloader

// pending is a download waiting for admission.
type pending struct {
	priority int
	seq      uint64
	maxConc  int
	perFrame int
	ready    chan struct{}
	dropped  bool
	index    int
}

// pendingQueue orders downloads by priority, highest first, then by arrival.
// It implements container/heap.Interface.
type pendingQueue []*pending

func (q pendingQueue) Len() int { return len(q) }

func (q pendingQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q pendingQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *pendingQueue) Push(x any) {
	p := x.(*pending)
	p.index = len(*q)
	*q = append(*q, p)
}

func (q *pendingQueue) Pop() any {
	old := *q
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	p.index = -1
	*q = old[:n-1]
	return p
}

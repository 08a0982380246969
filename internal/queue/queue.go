package queue

// Item is a candidate point with its squared chord distance to the query.
type Item struct {
	Index    int32
	Distance float64
}

// BoundedMax keeps the k closest items seen so far.
// The root is the farthest retained item, so a candidate is admitted
// only if it beats the root once the heap is full.
type BoundedMax struct {
	k     int
	items []Item
}

// NewBoundedMax returns an empty heap that retains at most k items.
func NewBoundedMax(k int) *BoundedMax {
	if k < 0 {
		k = 0
	}
	capacity := k
	if capacity > 1024 {
		capacity = 1024
	}
	return &BoundedMax{k: k, items: make([]Item, 0, capacity)}
}

// Len returns the number of retained items.
func (q *BoundedMax) Len() int { return len(q.items) }

// Full reports whether k items are retained.
func (q *BoundedMax) Full() bool { return len(q.items) >= q.k }

// Worst returns the largest retained distance. ok is false until the heap is full.
func (q *BoundedMax) Worst() (float64, bool) {
	if !q.Full() || len(q.items) == 0 {
		return 0, false
	}
	return q.items[0].Distance, true
}

// Offer admits the item if the heap has room or it is closer than the current worst.
func (q *BoundedMax) Offer(item Item) {
	if q.k == 0 {
		return
	}
	if len(q.items) < q.k {
		q.items = append(q.items, item)
		q.siftUp(len(q.items) - 1)
		return
	}
	if q.less(item, q.items[0]) {
		q.items[0] = item
		q.siftDown(0)
	}
}

// Sorted drains the heap and returns items ordered nearest first.
// Ties are broken by index for deterministic output.
func (q *BoundedMax) Sorted() []Item {
	out := make([]Item, len(q.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = q.pop()
	}
	return out
}

// less orders the heap: a sorts above b when it is farther.
func (q *BoundedMax) less(a, b Item) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Index < b.Index
}

func (q *BoundedMax) pop() Item {
	n := len(q.items)
	root := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return root
}

func (q *BoundedMax) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(q.items[p], q.items[i]) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *BoundedMax) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && q.less(q.items[l], q.items[r]) {
			best = r
		}
		if !q.less(q.items[i], q.items[best]) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}

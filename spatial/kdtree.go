package spatial

import "github.com/hupe1980/astrocache/internal/queue"

// leafSize is the maximum number of points in a leaf bucket.
const leafSize = 16

type node struct {
	lo, hi      int32 // point range in kdtree.perm
	left, right int32 // child node ids, -1 for a leaf
	min, max    [3]float64
}

func (n *node) leaf() bool { return n.left < 0 }

// minDist2 is the squared distance from q to the closest corner of the node's box.
func (n *node) minDist2(q [3]float64) float64 {
	var d float64
	for a := 0; a < 3; a++ {
		switch {
		case q[a] < n.min[a]:
			v := n.min[a] - q[a]
			d += v * v
		case q[a] > n.max[a]:
			v := q[a] - n.max[a]
			d += v * v
		}
	}
	return d
}

// maxDist2 is the squared distance from q to the farthest corner of the node's box.
func (n *node) maxDist2(q [3]float64) float64 {
	var d float64
	for a := 0; a < 3; a++ {
		v := max(q[a]-n.min[a], n.max[a]-q[a])
		d += v * v
	}
	return d
}

// kdtree is a static 3-d tree over a flat xyz point array.
// Node 0 is the root. It is read-only after build.
type kdtree struct {
	pts   []float64
	perm  []int32
	nodes []node
}

func buildTree(pts []float64, ids []int32) *kdtree {
	t := &kdtree{
		pts:   pts,
		perm:  ids,
		nodes: make([]node, 0, 2*len(ids)/leafSize+1),
	}
	if len(ids) > 0 {
		t.build(0, int32(len(ids)))
	}
	return t
}

func (t *kdtree) coord(p int32, axis int) float64 {
	return t.pts[3*int(p)+axis]
}

func (t *kdtree) dist2(p int32, q [3]float64) float64 {
	i := 3 * int(p)
	dx := t.pts[i] - q[0]
	dy := t.pts[i+1] - q[1]
	dz := t.pts[i+2] - q[2]
	return dx*dx + dy*dy + dz*dz
}

func (t *kdtree) build(lo, hi int32) int32 {
	id := int32(len(t.nodes))
	n := node{lo: lo, hi: hi, left: -1, right: -1}
	for a := 0; a < 3; a++ {
		n.min[a] = t.coord(t.perm[lo], a)
		n.max[a] = n.min[a]
	}
	for _, p := range t.perm[lo+1 : hi] {
		for a := 0; a < 3; a++ {
			v := t.coord(p, a)
			n.min[a] = min(n.min[a], v)
			n.max[a] = max(n.max[a], v)
		}
	}
	t.nodes = append(t.nodes, n)

	if hi-lo <= leafSize {
		return id
	}

	// Split on the axis of widest spread.
	axis := 0
	for a := 1; a < 3; a++ {
		if n.max[a]-n.min[a] > n.max[axis]-n.min[axis] {
			axis = a
		}
	}
	if n.max[axis] == n.min[axis] {
		return id // all points coincide
	}

	mid := lo + (hi-lo)/2
	t.selectNth(lo, hi-1, mid, axis)

	left := t.build(lo, mid)
	right := t.build(mid, hi)
	t.nodes[id].left = left
	t.nodes[id].right = right
	return id
}

// selectNth partially orders perm[lo..hi] so that perm[k] holds the k-th
// smallest coordinate on axis, with no larger value before it and no smaller
// value after it.
func (t *kdtree) selectNth(lo, hi, k int32, axis int) {
	for lo < hi {
		pivot := t.coord(t.perm[lo+(hi-lo)/2], axis)
		i, j := lo, hi
		for i <= j {
			for t.coord(t.perm[i], axis) < pivot {
				i++
			}
			for t.coord(t.perm[j], axis) > pivot {
				j--
			}
			if i <= j {
				t.perm[i], t.perm[j] = t.perm[j], t.perm[i]
				i++
				j--
			}
		}
		switch {
		case k <= j:
			hi = j
		case k >= i:
			lo = i
		default:
			return
		}
	}
}

// within appends to out every point whose squared distance to q is at most r2.
func (t *kdtree) within(q [3]float64, r2 float64, out []int) []int {
	if len(t.nodes) == 0 {
		return out
	}
	stack := make([]int32, 1, 64)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[id]

		if n.minDist2(q) > r2 {
			continue
		}
		if n.maxDist2(q) <= r2 {
			for _, p := range t.perm[n.lo:n.hi] {
				out = append(out, int(p))
			}
			continue
		}
		if n.leaf() {
			for _, p := range t.perm[n.lo:n.hi] {
				if t.dist2(p, q) <= r2 {
					out = append(out, int(p))
				}
			}
			continue
		}
		stack = append(stack, n.left, n.right)
	}
	return out
}

// any reports whether at least one point lies within r2 of q.
func (t *kdtree) any(q [3]float64, r2 float64) bool {
	if len(t.nodes) == 0 {
		return false
	}
	stack := make([]int32, 1, 64)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[id]

		if n.minDist2(q) > r2 {
			continue
		}
		if n.maxDist2(q) <= r2 {
			return true
		}
		if n.leaf() {
			for _, p := range t.perm[n.lo:n.hi] {
				if t.dist2(p, q) <= r2 {
					return true
				}
			}
			continue
		}
		// Visit the nearer child first.
		l, r := n.left, n.right
		if t.nodes[r].minDist2(q) < t.nodes[l].minDist2(q) {
			l, r = r, l
		}
		stack = append(stack, r, l)
	}
	return false
}

// nearest fills h with the closest points to q, by squared distance.
func (t *kdtree) nearest(q [3]float64, h *queue.BoundedMax) {
	if len(t.nodes) > 0 {
		t.nearestFrom(0, q, h)
	}
}

func (t *kdtree) nearestFrom(id int32, q [3]float64, h *queue.BoundedMax) {
	n := &t.nodes[id]
	if worst, ok := h.Worst(); ok && n.minDist2(q) > worst {
		return
	}
	if n.leaf() {
		for _, p := range t.perm[n.lo:n.hi] {
			h.Offer(queue.Item{Index: p, Distance: t.dist2(p, q)})
		}
		return
	}

	near, far := n.left, n.right
	if t.nodes[far].minDist2(q) < t.nodes[near].minDist2(q) {
		near, far = far, near
	}
	t.nearestFrom(near, q, h)
	t.nearestFrom(far, q, h)
}

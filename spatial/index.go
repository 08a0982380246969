package spatial

import (
	"math"
	"slices"

	"github.com/hupe1980/astrocache/internal/queue"
)

// Index is an immutable k-d tree over catalog points embedded on the unit
// sphere. Euclidean distance between embedded points is the chord length,
// a monotonic function of angular separation, so radius and nearest
// queries are correct near the poles and across the 0°/360° seam.
//
// Index is safe for concurrent queries. Rebuild it to reflect new data.
type Index struct {
	lons []float64
	lats []float64
	pts  []float64 // x0 y0 z0 x1 y1 z1 ...
	tree *kdtree
}

// NewIndex builds an index over the given coordinates in degrees.
// Points with a non-finite coordinate are kept for QueryBox but never
// returned by tree queries.
func NewIndex(lons, lats []float64) (*Index, error) {
	if err := checkLengths(lons, lats); err != nil {
		return nil, err
	}

	n := len(lons)
	idx := &Index{
		lons: slices.Clone(lons),
		lats: slices.Clone(lats),
		pts:  make([]float64, 3*n),
	}

	ids := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		if !finite(lons[i]) || !finite(lats[i]) {
			continue
		}
		x, y, z := toUnit(lons[i], lats[i])
		idx.pts[3*i], idx.pts[3*i+1], idx.pts[3*i+2] = x, y, z
		ids = append(ids, int32(i))
	}
	idx.tree = buildTree(idx.pts, ids)
	return idx, nil
}

// Len returns the number of points the index was built from.
func (idx *Index) Len() int { return len(idx.lons) }

// Point returns the coordinates of point i in degrees.
func (idx *Index) Point(i int) (lon, lat float64) {
	return idx.lons[i], idx.lats[i]
}

// query converts a center and angular radius to tree terms.
// ok is false when nothing can match.
func query(lon, lat, radiusDeg float64) (q [3]float64, r2 float64, ok bool) {
	if !(radiusDeg >= 0) || !finite(lon) || !finite(lat) {
		return q, 0, false
	}
	q[0], q[1], q[2] = toUnit(lon, lat)
	c := DegreesToChord(radiusDeg)
	return q, c * c, true
}

// QueryRadius returns the indices of all points within radiusDeg of
// (lon, lat), inclusive, in ascending order. A point identical to the
// center matches at any radius >= 0. A negative or NaN radius matches nothing.
func (idx *Index) QueryRadius(lon, lat, radiusDeg float64) []int {
	q, r2, ok := query(lon, lat, radiusDeg)
	if !ok {
		return nil
	}
	out := idx.tree.within(q, r2, nil)
	slices.Sort(out)
	return out
}

// QueryMultipleRadius runs QueryRadius for every center and returns the
// results in input order.
func (idx *Index) QueryMultipleRadius(lons, lats []float64, radiusDeg float64) ([][]int, error) {
	if err := checkLengths(lons, lats); err != nil {
		return nil, err
	}
	out := make([][]int, len(lons))
	for i := range lons {
		out[i] = idx.QueryRadius(lons[i], lats[i], radiusDeg)
	}
	return out, nil
}

// HasNeighbor reports whether any point lies within radiusDeg of (lon, lat).
// It stops at the first match.
func (idx *Index) HasNeighbor(lon, lat, radiusDeg float64) bool {
	q, r2, ok := query(lon, lat, radiusDeg)
	if !ok {
		return false
	}
	return idx.tree.any(q, r2)
}

// QueryBox returns, in ascending order, the indices of points inside b.
// It is a linear scan over the original coordinates; the tree gives no
// advantage for an axis-aligned lon/lat range.
func (idx *Index) QueryBox(b Box) []int {
	if b.Empty() {
		return nil
	}
	var out []int
	for i := range idx.lons {
		if b.Contains(idx.lons[i], idx.lats[i]) {
			out = append(out, i)
		}
	}
	return out
}

// QueryNearest returns up to k points closest to (lon, lat), nearest first.
// Distances are chord lengths on the unit sphere; use ChordToDegrees for
// angles. Equal distances are ordered by index.
func (idx *Index) QueryNearest(lon, lat float64, k int) ([]float64, []int, error) {
	if k <= 0 {
		return nil, nil, ErrInvalidK
	}
	if !finite(lon) || !finite(lat) {
		return nil, nil, nil
	}

	var q [3]float64
	q[0], q[1], q[2] = toUnit(lon, lat)

	h := queue.NewBoundedMax(k)
	idx.tree.nearest(q, h)
	items := h.Sorted()

	dists := make([]float64, len(items))
	ids := make([]int, len(items))
	for i, it := range items {
		dists[i] = math.Sqrt(it.Distance)
		ids[i] = int(it.Index)
	}
	return dists, ids, nil
}

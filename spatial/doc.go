// Package spatial indexes catalog positions on the celestial sphere.
//
// Each (lon, lat) pair in degrees is embedded once as a 3-D unit vector
// (cos δ cos α, cos δ sin α, sin δ) and stored in a static k-d tree. On the
// sphere a straight-line chord is a monotonic function of angular
// separation θ,
//
//	chord = 2·sin(θ/2)
//
// so an ordinary Euclidean tree answers angular radius and nearest-neighbour
// queries exactly, without special cases at the poles or the 0°/360° seam.
//
// # Queries
//
//	idx, err := spatial.NewIndex(lons, lats)
//	near := idx.QueryRadius(83.82, -5.39, 0.1)        // sorted indices
//	dists, ids, err := idx.QueryNearest(83.82, -5.39, 5) // chord distances
//	inView := idx.QueryBox(spatial.Box{LonMin: 80, LonMax: 90, LatMin: -10, LatMax: 0})
//
// QueryBox is a linear scan and does not wrap around 0°/360°.
//
// # Proximity
//
// ProximityIndex bounds build and query cost on very large catalogs by
// sampling inputs above a threshold (default 100 000 points) down to exactly
// that many evenly spaced points, and answers "is anything within r" per point:
//
//	p, err := spatial.NewProximityIndex(hiResLons, hiResLats)
//	mask, err := p.CheckProximityBatch(clusterLons, clusterLats, 0.5)
//
// # Viewports
//
// Selection and ViewportTracker keep result sets as Roaring bitmaps, so a
// panning viewer can ask which points entered or left the view.
package spatial

package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// Neighbor is a brute-force nearest-neighbour result.
type Neighbor struct {
	Index   int
	Degrees float64
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0,1).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// SkyPoints generates n positions uniformly distributed on the sphere.
// Longitudes are in [0, 360), latitudes in [-90, 90].
func (r *RNG) SkyPoints(n int) (lons, lats []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lons = make([]float64, n)
	lats = make([]float64, n)
	for i := range n {
		lons[i] = r.rand.Float64() * 360
		// Uniform in sin(lat) gives uniform area density.
		lats[i] = math.Asin(2*r.rand.Float64()-1) * 180 / math.Pi
	}
	return lons, lats
}

// Cluster generates n positions scattered around (lon, lat) with a Gaussian
// spread of sigmaDeg degrees. Latitudes are clamped to the poles and
// longitudes wrapped into [0, 360).
func (r *RNG) Cluster(lon, lat, sigmaDeg float64, n int) (lons, lats []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lons = make([]float64, n)
	lats = make([]float64, n)
	for i := range n {
		la := lat + r.rand.NormFloat64()*sigmaDeg
		la = math.Max(-90, math.Min(90, la))
		lo := math.Mod(lon+r.rand.NormFloat64()*sigmaDeg, 360)
		if lo < 0 {
			lo += 360
		}
		lons[i], lats[i] = lo, la
	}
	return lons, lats
}

// Box returns a random non-wrapping box with sides up to maxSpanDeg.
func (r *RNG) Box(maxSpanDeg float64) (lonMin, lonMax, latMin, latMax float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lonSpan := r.rand.Float64() * maxSpanDeg
	latSpan := r.rand.Float64() * math.Min(maxSpanDeg, 180)
	lonMin = r.rand.Float64() * (360 - lonSpan)
	latMin = -90 + r.rand.Float64()*(180-latSpan)
	return lonMin, lonMin + lonSpan, latMin, latMin + latSpan
}

// PoisonCoordinates overwrites a random share of the positions with NaN or
// ±Inf. It returns the poisoned indices in ascending order.
func (r *RNG) PoisonCoordinates(lons, lats []float64, rate float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	bad := []float64{math.NaN(), math.Inf(1), math.Inf(-1)}
	var out []int
	for i := range lons {
		if r.rand.Float64() >= rate {
			continue
		}
		v := bad[r.rand.Intn(len(bad))]
		if r.rand.Intn(2) == 0 {
			lons[i] = v
		} else {
			lats[i] = v
		}
		out = append(out, i)
	}
	return out
}

// AngularDistance returns the great-circle separation of two positions in
// degrees, using the haversine formula.
func AngularDistance(lon1, lat1, lon2, lat2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Asin(math.Sqrt(math.Min(1, a))) / rad
}

// BruteForceRadius returns, in ascending order, the indices of all finite
// positions within radiusDeg of (lon, lat).
func BruteForceRadius(lons, lats []float64, lon, lat, radiusDeg float64) []int {
	var out []int
	for i := range lons {
		if AngularDistance(lon, lat, lons[i], lats[i]) <= radiusDeg {
			out = append(out, i)
		}
	}
	return out
}

// BruteForceBox returns, in ascending order, the indices inside an inclusive
// lon/lat box.
func BruteForceBox(lons, lats []float64, lonMin, lonMax, latMin, latMax float64) []int {
	var out []int
	for i := range lons {
		if lons[i] >= lonMin && lons[i] <= lonMax && lats[i] >= latMin && lats[i] <= latMax {
			out = append(out, i)
		}
	}
	return out
}

// BruteForceNearest returns the k finite positions closest to (lon, lat).
func BruteForceNearest(lons, lats []float64, lon, lat float64, k int) []Neighbor {
	all := make([]Neighbor, 0, len(lons))
	for i := range lons {
		d := AngularDistance(lon, lat, lons[i], lats[i])
		if math.IsNaN(d) {
			continue
		}
		all = append(all, Neighbor{Index: i, Degrees: d})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Degrees != all[j].Degrees {
			return all[i].Degrees < all[j].Degrees
		}
		return all[i].Index < all[j].Index
	})

	if len(all) > k {
		all = all[:k]
	}
	return all
}

// ComputeRecall returns the share of groundTruth present in approximate.
func ComputeRecall(groundTruth, approximate []int) float64 {
	if len(groundTruth) == 0 {
		if len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	seen := make(map[int]struct{}, len(approximate))
	for _, i := range approximate {
		seen[i] = struct{}{}
	}

	hits := 0
	for _, i := range groundTruth {
		if _, ok := seen[i]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(groundTruth))
}

package spatial

import "math"

// toUnit maps a (lon, lat) pair in degrees onto the unit sphere.
func toUnit(lon, lat float64) (x, y, z float64) {
	lo := lon * math.Pi / 180
	la := lat * math.Pi / 180
	cl := math.Cos(la)
	return cl * math.Cos(lo), cl * math.Sin(lo), math.Sin(la)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DegreesToChord converts an angular separation to the straight-line distance
// between two points on the unit sphere: 2·sin(θ/2). Separations of 180° or
// more map to the diameter.
func DegreesToChord(deg float64) float64 {
	if deg >= 180 {
		return 2
	}
	return 2 * math.Sin(deg*math.Pi/360)
}

// ChordToDegrees is the inverse of DegreesToChord: 2·asin(c/2) in degrees.
func ChordToDegrees(chord float64) float64 {
	half := chord / 2
	switch {
	case half <= 0:
		return 0
	case half >= 1:
		return 180
	}
	return 2 * math.Asin(half) * 180 / math.Pi
}

// Box is an axis-aligned lon/lat range in degrees. Bounds are inclusive.
// Boxes never wrap across the 0°/360° seam; split such a box in two.
type Box struct {
	LonMin, LonMax float64
	LatMin, LatMax float64
}

// Contains reports whether (lon, lat) lies inside b.
func (b Box) Contains(lon, lat float64) bool {
	return lon >= b.LonMin && lon <= b.LonMax && lat >= b.LatMin && lat <= b.LatMax
}

// Empty reports whether b can contain no point.
func (b Box) Empty() bool {
	return !(b.LonMin <= b.LonMax && b.LatMin <= b.LatMax)
}

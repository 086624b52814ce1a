package label

import "github.com/paulmach/orb"

// Centroid returns the unweighted mean of every vertex of a Polygon or
// MultiPolygon. All rings count, holes and closing vertices included, so the
// result leans toward densely sampled coastlines. Marker offsets are tuned to
// that lean; do not replace this with an area centroid.
//
// The second result is false for other geometry types and for geometries
// without vertices.
func Centroid(g orb.Geometry) (orb.Point, bool) {
	var sx, sy float64
	var n int

	sum := func(p orb.Polygon) {
		for _, ring := range p {
			for _, pt := range ring {
				sx += pt[0]
				sy += pt[1]
				n++
			}
		}
	}

	switch v := g.(type) {
	case orb.Polygon:
		sum(v)
	case orb.MultiPolygon:
		for _, p := range v {
			sum(p)
		}
	default:
		return orb.Point{}, false
	}

	if n == 0 {
		return orb.Point{}, false
	}
	return orb.Point{sx / float64(n), sy / float64(n)}, true
}

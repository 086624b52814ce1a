// Package outline merges country polygons into the silhouette of their union.
package outline

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoGeometry is returned when there is nothing polygonal to merge. It
// usually means the wrong input file was loaded.
var ErrNoGeometry = eris.New("outline: no geometry")

// Reduce unions the Polygon and MultiPolygon members of geoms and returns the
// exterior ring of each connected component of the result, closed, in the
// order the union reports them. Holes of the union are dropped. Members of
// other types are skipped.
func Reduce(geoms []orb.Geometry) ([]orb.LineString, error) {
	log := zap.L().With(zap.String("component", "outline"))

	if len(geoms) == 0 {
		return nil, ErrNoGeometry
	}

	inputs := make([]geom.Geometry, 0, len(geoms))
	for i, g := range geoms {
		sg, ok := toSimple(g)
		if !ok {
			log.Debug("non-polygonal geometry skipped",
				zap.Int("index", i),
				zap.String("type", typeName(g)),
			)
			continue
		}
		inputs = append(inputs, sg)
	}
	if len(inputs) == 0 {
		return nil, eris.Wrapf(ErrNoGeometry, "outline: none of %d geometries is polygonal", len(geoms))
	}

	union, err := geom.UnionMany(inputs)
	if err != nil {
		return nil, eris.Wrapf(err, "outline: union of %d polygons", len(inputs))
	}

	rings := exteriors(union)
	if len(rings) == 0 {
		return nil, eris.Wrap(ErrNoGeometry, "outline: union is empty")
	}

	log.Debug("union reduced",
		zap.Int("inputs", len(inputs)),
		zap.Int("rings", len(rings)),
	)
	return rings, nil
}

// Collection wraps each ring as a LineString feature without properties.
func Collection(rings []orb.LineString) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range rings {
		fc.Append(geojson.NewFeature(r))
	}
	return fc
}

// Geometries returns the geometry of every feature of fc, nil ones excluded.
func Geometries(fc *geojson.FeatureCollection) []orb.Geometry {
	out := make([]orb.Geometry, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f != nil && f.Geometry != nil {
			out = append(out, f.Geometry)
		}
	}
	return out
}

func toSimple(g orb.Geometry) (geom.Geometry, bool) {
	switch v := g.(type) {
	case orb.Polygon:
		p, ok := simplePolygon(v)
		if !ok {
			return geom.Geometry{}, false
		}
		return p.AsGeometry(), true
	case orb.MultiPolygon:
		polys := make([]geom.Polygon, 0, len(v))
		for _, op := range v {
			if p, ok := simplePolygon(op); ok {
				polys = append(polys, p)
			}
		}
		if len(polys) == 0 {
			return geom.Geometry{}, false
		}
		return geom.NewMultiPolygon(polys).AsGeometry(), true
	default:
		return geom.Geometry{}, false
	}
}

// simplePolygon converts p, closing open rings and dropping rings with fewer
// than three distinct positions. A polygon whose exterior is dropped is
// rejected.
func simplePolygon(p orb.Polygon) (geom.Polygon, bool) {
	rings := make([]geom.LineString, 0, len(p))
	for i, r := range p {
		if len(r) > 0 && r[0] != r[len(r)-1] {
			r = append(r[:len(r):len(r)], r[0])
		}
		if len(r) < 4 {
			if i == 0 {
				return geom.Polygon{}, false
			}
			continue
		}
		flat := make([]float64, 0, 2*len(r))
		for _, pt := range r {
			flat = append(flat, pt[0], pt[1])
		}
		rings = append(rings, geom.NewLineString(geom.NewSequence(flat, geom.DimXY)))
	}
	if len(rings) == 0 {
		return geom.Polygon{}, false
	}
	return geom.NewPolygon(rings), true
}

func exteriors(g geom.Geometry) []orb.LineString {
	switch g.Type() {
	case geom.TypePolygon:
		p, _ := g.AsPolygon()
		if r, ok := exterior(p); ok {
			return []orb.LineString{r}
		}
	case geom.TypeMultiPolygon:
		mp, _ := g.AsMultiPolygon()
		out := make([]orb.LineString, 0, mp.NumPolygons())
		for i := 0; i < mp.NumPolygons(); i++ {
			if r, ok := exterior(mp.PolygonN(i)); ok {
				out = append(out, r)
			}
		}
		return out
	case geom.TypeGeometryCollection:
		gc, _ := g.AsGeometryCollection()
		var out []orb.LineString
		for i := 0; i < gc.NumGeometries(); i++ {
			out = append(out, exteriors(gc.GeometryN(i))...)
		}
		return out
	}
	return nil
}

func exterior(p geom.Polygon) (orb.LineString, bool) {
	if p.IsEmpty() {
		return nil, false
	}
	seq := p.ExteriorRing().Coordinates()
	ls := make(orb.LineString, seq.Length())
	for i := range ls {
		xy := seq.GetXY(i)
		ls[i] = orb.Point{xy.X, xy.Y}
	}
	return ls, len(ls) > 0
}

func typeName(g orb.Geometry) string {
	if g == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", g)
}

package geofile

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// LoadShapefile reads an ESRI shapefile into a feature collection. Every DBF
// attribute with a non-empty value becomes a string property.
func LoadShapefile(shpPath string) (*geojson.FeatureCollection, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geofile: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	fc := geojson.NewFeatureCollection()
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		g := shapeToGeometry(shape)
		if g == nil {
			skipped++
			continue
		}

		f := geojson.NewFeature(g)
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if val == "" {
				continue
			}
			f.Properties[name] = val
		}
		fc.Append(f)
	}

	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "geofile: read shapefile %s", shpPath)
	}

	if skipped > 0 {
		zap.L().Debug("geofile: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	return fc, nil
}

// shapeToGeometry converts a go-shp shape to an orb geometry.
// Returns nil for unsupported or empty shapes.
func shapeToGeometry(shape shp.Shape) orb.Geometry {
	switch s := shape.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}

	case *shp.PolyLine:
		mls := make(orb.MultiLineString, 0, s.NumParts)
		for _, part := range splitParts(s.Parts, s.Points) {
			ls := make(orb.LineString, 0, len(part))
			for _, p := range part {
				ls = append(ls, orb.Point{p.X, p.Y})
			}
			mls = append(mls, ls)
		}
		if len(mls) == 0 {
			return nil
		}
		if len(mls) == 1 {
			return mls[0]
		}
		return mls

	case *shp.Polygon:
		mp := assemblePolygon(s)
		if mp == nil || mp.NumPolygons() == 0 {
			return nil
		}
		return toOrb(mp)

	default:
		return nil
	}
}

// splitParts cuts a shapefile point list at the part offsets.
func splitParts(parts []int32, points []shp.Point) [][]shp.Point {
	out := make([][]shp.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || int(end) > len(points) {
			continue
		}
		out = append(out, points[start:end])
	}
	return out
}

// assemblePolygon groups shapefile rings into polygons. Clockwise rings are
// exteriors; counter-clockwise rings are holes of the most recent exterior.
func assemblePolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon

	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("geofile: skipping malformed polygon part", zap.Error(err))
		}
		current = nil
	}

	for i, part := range splitParts(p.Parts, p.Points) {
		// A ring needs three distinct points plus the closing one.
		if len(part) < 4 {
			zap.L().Debug("geofile: skipping degenerate ring", zap.Int("part", i), zap.Int("points", len(part)))
			continue
		}

		flat := make([]float64, 0, len(part)*2)
		for _, pt := range part {
			flat = append(flat, pt.X, pt.Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current != nil && xy.IsRingCounterClockwise(geom.XY, flat) {
			if err := current.Push(ring); err != nil {
				zap.L().Debug("geofile: skipping malformed hole", zap.Int("part", i), zap.Error(err))
			}
			continue
		}

		flush()
		current = geom.NewPolygon(geom.XY)
		if err := current.Push(ring); err != nil {
			zap.L().Debug("geofile: skipping malformed ring", zap.Int("part", i), zap.Error(err))
			current = nil
		}
	}
	flush()

	return mp
}

// toOrb converts a go-geom multipolygon to orb, collapsing a single member to
// a Polygon.
func toOrb(mp *geom.MultiPolygon) orb.Geometry {
	out := make(orb.MultiPolygon, 0, mp.NumPolygons())
	for _, poly := range mp.Coords() {
		op := make(orb.Polygon, 0, len(poly))
		for _, ring := range poly {
			r := make(orb.Ring, 0, len(ring))
			for _, c := range ring {
				r = append(r, orb.Point{c.X(), c.Y()})
			}
			op = append(op, r)
		}
		out = append(out, op)
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

package outline

import (
	"io"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
)

// wgs84 is the EPSG code of plain lon/lat coordinates.
const wgs84 = 4326

// WriteFlatGeobuf writes rings as a geometry-only FlatGeobuf layer of
// LineStrings named name.
func WriteFlatGeobuf(w io.Writer, name string, rings []orb.LineString) error {
	if len(rings) == 0 {
		return ErrNoGeometry
	}

	builder := flatbuffers.NewBuilder(1024)

	header := writer.NewHeader(builder)
	header.SetGeometryType(flattypes.GeometryTypeLineString)
	header.SetFeaturesCount(uint64(len(rings)))
	if name != "" {
		header.SetName(name)
	}
	header.SetDescription("outer boundary rings")

	var bound orb.Bound
	for i, r := range rings {
		if i == 0 {
			bound = r.Bound()
			continue
		}
		bound = bound.Union(r.Bound())
	}
	header.SetEnvelope([]float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]})

	crs := writer.NewCrs(builder)
	crs.SetOrg("EPSG")
	crs.SetCode(wgs84)
	crs.SetName("WGS 84")
	header.SetCrs(crs)

	gen := &ringGenerator{rings: rings}
	if _, err := writer.NewWriter(header, false, gen, nil).Write(w); err != nil {
		return eris.Wrap(err, "outline: write flatgeobuf")
	}
	return nil
}

// ringGenerator feeds one LineString feature per ring to the FlatGeobuf writer.
type ringGenerator struct {
	rings []orb.LineString
	next  int
}

func (g *ringGenerator) Generate() *writer.Feature {
	for g.next < len(g.rings) {
		r := g.rings[g.next]
		g.next++
		if len(r) == 0 {
			continue
		}

		xy := make([]float64, 0, 2*len(r))
		for _, p := range r {
			xy = append(xy, p[0], p[1])
		}

		b := flatbuffers.NewBuilder(16 * len(r))
		geometry := writer.NewGeometry(b)
		geometry.SetType(flattypes.GeometryTypeLineString)
		geometry.SetXY(xy)

		f := writer.NewFeature(b)
		f.SetGeometry(geometry)
		return f
	}
	return nil
}

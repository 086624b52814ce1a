package label

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/mapmania/geoprep/internal/geofile"
)

// DefaultHalfWidth is half the side of a marker square, in degrees.
const DefaultHalfWidth = 0.75

// LinkProperty flags connector lines so the app can style them apart from
// country outlines.
const LinkProperty = "isLabelLink"

// Synthesizer emits a connector line and a marker square for every classified
// country of a collection.
type Synthesizer struct {
	Classifier *Classifier
	HalfWidth  float64
	// CodeKey is the property written on derived features.
	CodeKey string
	// CodeKeys is the lookup order used to read a source feature's code.
	CodeKeys []string
}

// NewSynthesizer returns a Synthesizer that writes codes under codeKey and
// reads them with codeKey first, then the other known code properties.
func NewSynthesizer(c *Classifier, halfWidth float64, codeKey string) *Synthesizer {
	return &Synthesizer{
		Classifier: c,
		HalfWidth:  halfWidth,
		CodeKey:    codeKey,
		CodeKeys:   geofile.CodeKeys(codeKey),
	}
}

// Synthesize returns the derived features for features, a (line, marker) pair
// per eligible country in input order. Only the first feature of a code is
// considered. Features without a code, without a class, or without a usable
// geometry are skipped. The input is not modified.
func (s *Synthesizer) Synthesize(features []*geojson.Feature) []*geojson.Feature {
	log := zap.L().With(zap.String("component", "label"))

	seen := make(map[string]struct{})
	var out []*geojson.Feature

	for i, f := range features {
		if f == nil {
			continue
		}
		code, ok := geofile.CodeOf(f.Properties, s.CodeKeys...)
		if !ok {
			continue
		}
		if _, dup := seen[code]; dup {
			log.Debug("duplicate code skipped", zap.String("code", code), zap.Int("index", i))
			continue
		}

		class, off, ok := s.Classifier.Lookup(code)
		if !ok {
			continue
		}
		seen[code] = struct{}{}

		c, ok := Centroid(f.Geometry)
		if !ok {
			log.Debug("no centroid", zap.String("code", code), zap.Int("index", i))
			continue
		}

		target := orb.Point{c[0] + off.DX, c[1] + off.DY}

		line := geojson.NewFeature(orb.LineString{c, target})
		line.Properties[s.codeKey()] = code
		line.Properties[LinkProperty] = true

		marker := geojson.NewFeature(Marker(target, s.HalfWidth))
		marker.Properties[s.codeKey()] = code

		out = append(out, line, marker)

		log.Debug("label synthesized",
			zap.String("code", code),
			zap.Stringer("class", class),
			zap.Float64("lon", target[0]),
			zap.Float64("lat", target[1]),
		)
	}

	return out
}

// Enrich returns a new collection holding fc's features followed by the
// derived ones, and the number of derived features. fc is left as is.
func (s *Synthesizer) Enrich(fc *geojson.FeatureCollection) (*geojson.FeatureCollection, int) {
	derived := s.Synthesize(fc.Features)

	out := geojson.NewFeatureCollection()
	out.BBox = fc.BBox
	out.ExtraMembers = fc.ExtraMembers
	out.Features = make([]*geojson.Feature, 0, len(fc.Features)+len(derived))
	out.Features = append(out.Features, fc.Features...)
	out.Features = append(out.Features, derived...)

	return out, len(derived)
}

func (s *Synthesizer) codeKey() string {
	if s.CodeKey != "" {
		return s.CodeKey
	}
	return geofile.DefaultCodeKeys[0]
}

// Marker returns the closed square of half-width h centred on target, starting
// at the top-left corner and running clockwise.
func Marker(target orb.Point, h float64) orb.Polygon {
	x, y := target[0], target[1]
	return orb.Polygon{orb.Ring{
		{x - h, y + h},
		{x + h, y + h},
		{x + h, y - h},
		{x - h, y - h},
		{x - h, y + h},
	}}
}

package extract

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(key, name string) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})
	f.Properties[key] = name
	return f
}

func TestAfricaList(t *testing.T) {
	assert.Len(t, Africa, 54)

	seen := make(map[string]bool)
	for _, n := range Africa {
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}
	assert.Equal(t, Africa, Continents["AF"])
}

func TestFilter(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(named("NAME_EN", "France"))
	fc.Append(named("NAME_EN", "Senegal"))
	fc.Append(named("ADMIN", "Mali"))
	fc.Append(nil)
	fc.Append(geojson.NewFeature(orb.Point{0, 0}))
	fc.Append(named("name", "Chad"))

	out, missing := Filter(fc, []string{"Chad", "Mali", "Senegal", "Niger", "Benin"}, nil)

	require.Len(t, out.Features, 3)
	assert.Equal(t, "Senegal", out.Features[0].Properties["NAME_EN"])
	assert.Equal(t, "Mali", out.Features[1].Properties["ADMIN"])
	assert.Equal(t, "Chad", out.Features[2].Properties["name"])
	assert.Equal(t, []string{"Benin", "Niger"}, missing)
	assert.Len(t, fc.Features, 6)
}

func TestFilter_NameKeyPriority(t *testing.T) {
	f := named("NAME_EN", "Ivory Coast")
	f.Properties["NAME"] = "Côte d'Ivoire"

	fc := geojson.NewFeatureCollection()
	fc.Append(f)

	out, missing := Filter(fc, []string{"Côte d'Ivoire"}, nil)
	assert.Empty(t, out.Features)
	assert.Equal(t, []string{"Côte d'Ivoire"}, missing)

	out, missing = Filter(fc, []string{"Côte d'Ivoire"}, []string{"NAME"})
	assert.Len(t, out.Features, 1)
	assert.Empty(t, missing)
}

func TestFilter_KeepsEveryMatchingFeature(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(named("NAME_EN", "Morocco"))
	fc.Append(named("NAME_EN", "Morocco"))

	out, missing := Filter(fc, []string{"Morocco"}, nil)
	assert.Len(t, out.Features, 2)
	assert.Empty(t, missing)
}


// Package extract cuts a continent out of a world boundary file by English
// country name.
package extract

import (
	"sort"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/mapmania/geoprep/internal/geofile"
)

// DefaultNameKeys are the properties tried, in order, for a feature's English
// name. They cover Natural Earth and the common world GeoJSON exports.
var DefaultNameKeys = []string{"NAME_EN", "ADMIN", "name", "NAME"}

// Africa holds the English names of the 54 African states as spelled in
// Natural Earth.
var Africa = []string{
	"Algeria", "Angola", "Benin", "Botswana", "Burkina Faso", "Burundi",
	"Cabo Verde", "Cameroon", "Central African Republic", "Chad", "Comoros",
	"Republic of the Congo", "Democratic Republic of the Congo", "Djibouti", "Egypt",
	"Equatorial Guinea", "Eritrea", "eSwatini", "Ethiopia", "Gabon",
	"Gambia", "Ghana", "Guinea", "Guinea-Bissau", "Ivory Coast",
	"Kenya", "Lesotho", "Liberia", "Libya", "Madagascar", "Malawi",
	"Mali", "Mauritania", "Mauritius", "Morocco", "Mozambique", "Namibia",
	"Niger", "Nigeria", "Rwanda", "São Tomé and Principe", "Senegal",
	"Seychelles", "Sierra Leone", "Somalia", "South Africa", "South Sudan",
	"Sudan", "United Republic of Tanzania", "Togo", "Tunisia", "Uganda", "Zambia", "Zimbabwe",
}

// Continents maps a continent code to its built-in name list.
var Continents = map[string][]string{
	"AF": Africa,
}

// Filter keeps the features of fc whose name is in names, in input order, and
// returns the sorted names that matched no feature. Matching is exact. The
// kept features are shared with fc.
func Filter(fc *geojson.FeatureCollection, names []string, nameKeys []string) (*geojson.FeatureCollection, []string) {
	if len(nameKeys) == 0 {
		nameKeys = DefaultNameKeys
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = false
	}

	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		name, ok := geofile.StringOf(f.Properties, nameKeys...)
		if !ok {
			continue
		}
		if _, want := wanted[name]; !want {
			continue
		}
		wanted[name] = true
		out.Append(f)
	}

	var missing []string
	for n, found := range wanted {
		if !found {
			missing = append(missing, n)
		}
	}
	sort.Strings(missing)

	zap.L().Debug("extract: filtered features",
		zap.Int("input", len(fc.Features)),
		zap.Int("kept", len(out.Features)),
		zap.Int("missing", len(missing)),
	)
	return out, missing
}

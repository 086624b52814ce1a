package catalog

import (
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/mapmania/geoprep/internal/geofile"
)

// MissingCodeKeys is the code lookup order for skeleton entries.
var MissingCodeKeys = []string{"ISO_A2", "ADM0_A2", "code"}

// MissingNameKeys is the lookup order for a skeleton entry's English name.
// The alpha-3 code is a last resort before the alpha-2 code itself.
var MissingNameKeys = []string{"NAME_EN", "ADMIN", "name", "ISO3166-1-Alpha-3"}

// MissingEntries builds a skeleton record for every code of fc that existing
// lacks, sorted by code. The French name repeats the English one and the
// capitals are left blank for a translator to fill in.
func MissingEntries(fc *geojson.FeatureCollection, existing CodeSet, continent string) Catalog {
	continent = strings.ToUpper(continent)
	added := make(CodeSet)
	var out Catalog

	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		code, ok := geofile.CodeOf(f.Properties, MissingCodeKeys...)
		if !ok || existing.Has(code) || added.Has(code) {
			continue
		}
		added.Add(code)

		name, ok := geofile.StringOf(f.Properties, MissingNameKeys...)
		if !ok {
			name = code
		}

		out = append(out, NewCountry(code, continent, Localized{EN: name, FR: name}, Localized{}))
	}

	out.SortByCode()
	return out
}

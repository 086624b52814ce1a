package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mapmania/geoprep/internal/geofile"
)

// CheckCodeKeys is the code lookup order used when scanning the maps dir.
var CheckCodeKeys = []string{"ISO_A2", "ISO3166-1-Alpha-2", "code", "ADM0_A2"}

// WorldCodeKeys is the code lookup order for a single world boundary file,
// whose features carry the app's own ISO3166-1-Alpha-2 key.
var WorldCodeKeys = []string{"ISO3166-1-Alpha-2", "ISO_A2", "code"}

// OutlineSuffix marks continent silhouettes, which carry no country codes.
const OutlineSuffix = "_outline.geojson"

// scanConcurrency bounds the number of boundary files decoded at once.
const scanConcurrency = 4

// CodeSet is a set of country codes.
type CodeSet map[string]struct{}

// Add inserts code unless it is blank.
func (s CodeSet) Add(code string) {
	if code = strings.TrimSpace(code); code != "" {
		s[code] = struct{}{}
	}
}

// Has reports whether code is in the set.
func (s CodeSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Sorted returns the codes in ascending order.
func (s CodeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Minus returns the sorted codes of s absent from other.
func (s CodeSet) Minus(other CodeSet) []string {
	var out []string
	for c := range s {
		if !other.Has(c) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// CodesFromFeatures collects the code of every feature of fc.
func CodesFromFeatures(fc *geojson.FeatureCollection, keys []string) CodeSet {
	set := make(CodeSet)
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		if code, ok := geofile.CodeOf(f.Properties, keys...); ok {
			set.Add(code)
		}
	}
	return set
}

// Check returns the sorted codes found in boundary files but not in the
// catalog.
func Check(catalogCodes, geoCodes CodeSet) []string {
	return geoCodes.Minus(catalogCodes)
}

// Diff is the two-way difference between a continent's catalog entries and
// its boundary file.
type Diff struct {
	InGeoOnly     []string `json:"in_geo_only"`
	InCatalogOnly []string `json:"in_catalog_only"`
}

// Empty reports whether both sides agree.
func (d Diff) Empty() bool {
	return len(d.InGeoOnly) == 0 && len(d.InCatalogOnly) == 0
}

// Compare diffs the catalog codes of continent against geoCodes.
func Compare(c Catalog, continent string, geoCodes CodeSet) Diff {
	catalogCodes := c.ByContinent(continent).Codes()
	return Diff{
		InGeoOnly:     geoCodes.Minus(catalogCodes),
		InCatalogOnly: catalogCodes.Minus(geoCodes),
	}
}

// MapFile is the boundary file of a continent inside the maps dir.
func MapFile(dir, continent string) string {
	return filepath.Join(dir, strings.ToLower(continent)+".geojson")
}

// ScanMapsDir reads every .geojson file of dir except outlines and returns
// the union of their codes along with the files read, sorted.
func ScanMapsDir(ctx context.Context, dir string, keys []string) (CodeSet, []string, error) {
	log := zap.L().With(zap.String("component", "catalog.scan"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "catalog: read maps dir %s", dir)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".geojson") || strings.HasSuffix(name, OutlineSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}

	results := make([]CodeSet, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fc, err := geofile.Load(path)
			if err != nil {
				return err
			}
			results[i] = CodesFromFeatures(fc, keys)
			log.Debug("scanned", zap.String("path", path), zap.Int("codes", len(results[i])))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, eris.Wrap(err, "catalog: scan maps dir")
	}

	all := make(CodeSet)
	for _, set := range results {
		for code := range set {
			all.Add(code)
		}
	}
	return all, files, nil
}

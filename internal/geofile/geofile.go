// Package geofile reads and writes the boundary files of the asset tree:
// GeoJSON feature collections and ESRI shapefiles.
package geofile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultCodeKeys lists the property names that carry a two-letter country
// code across the boundary files in use, in lookup order.
var DefaultCodeKeys = []string{"ISO3166-1-Alpha-2", "ISO_A2", "code", "ADM0_A2"}

// missingCode is the Natural Earth placeholder for "no ISO code".
const missingCode = "-99"

// CodeOf returns the first non-empty string code found under keys.
func CodeOf(props geojson.Properties, keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := props[k]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || s == missingCode {
			continue
		}
		return s, true
	}
	return "", false
}

// StringOf returns the first non-blank string value found under keys,
// trimmed.
func StringOf(props geojson.Properties, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := props[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

// CodeKeys returns the lookup order with preferred moved to the front.
func CodeKeys(preferred string) []string {
	keys := make([]string, 0, len(DefaultCodeKeys)+1)
	if preferred != "" {
		keys = append(keys, preferred)
	}
	for _, k := range DefaultCodeKeys {
		if k != preferred {
			keys = append(keys, k)
		}
	}
	return keys
}

// Load reads a GeoJSON FeatureCollection from path.
func Load(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geofile: open %s", path)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrapf(err, "geofile: parse %s", path)
	}

	zap.L().Debug("geofile: loaded feature collection",
		zap.String("path", path),
		zap.Int("features", len(fc.Features)),
	)
	return fc, nil
}

// LoadAny reads a feature collection from a shapefile (.shp) or a GeoJSON file.
func LoadAny(path string) (*geojson.FeatureCollection, error) {
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		return LoadShapefile(path)
	}
	return Load(path)
}

func init() {
	geojson.CustomJSONMarshaler = unescapedMarshaler{}
}

// unescapedMarshaler keeps "&", "<" and ">" literal in names such as
// "Trinité & Tobago"; orb otherwise goes through json.Marshal.
type unescapedMarshaler struct{}

func (unescapedMarshaler) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Encode renders fc as indented JSON without HTML escaping.
func Encode(fc *geojson.FeatureCollection) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return nil, eris.Wrap(err, "geofile: encode feature collection")
	}
	return buf.Bytes(), nil
}

// Save writes fc to path, replacing any existing file atomically.
func Save(path string, fc *geojson.FeatureCollection) error {
	data, err := Encode(fc)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// WriteFile writes data through a temp file in the destination directory and
// renames it into place. Parent directories are created as needed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "geofile: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return eris.Wrapf(err, "geofile: create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "geofile: write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "geofile: close %s", tmpName)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return eris.Wrapf(err, "geofile: chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "geofile: rename to %s", path)
	}
	return nil
}

// Package catalog reads, reconciles and rewrites the country catalog
// (assets/datas/countries.json) that the quiz app ships.
package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mapmania/geoprep/internal/geofile"
)

// Continent codes used by the catalog.
const (
	Africa     = "AF"
	Americas   = "AM"
	Asia       = "AS"
	Europe     = "EU"
	Oceania    = "OC"
	Antarctica = "AN"
)

// Continents lists every continent code.
var Continents = []string{Africa, Americas, Asia, Europe, Oceania, Antarctica}

// Localized is a string in the two languages of the app.
type Localized struct {
	EN string `json:"en"`
	FR string `json:"fr"`
}

// Country is one catalog record. Keys the app adds that geoprep does not know
// about are kept in Extra and written back unchanged.
type Country struct {
	Code      string    `json:"code"`
	Continent string    `json:"continent"`
	Flag      string    `json:"flag"`
	Name      Localized `json:"name"`
	Capital   Localized `json:"capital"`

	Extra map[string]json.RawMessage `json:"-"`
}

type countryFields Country

var knownKeys = []string{"code", "continent", "flag", "name", "capital"}

func (c *Country) UnmarshalJSON(data []byte) error {
	var fields countryFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range knownKeys {
		delete(all, k)
	}

	*c = Country(fields)
	if len(all) > 0 {
		c.Extra = all
	}
	return nil
}

func (c Country) MarshalJSON() ([]byte, error) {
	base, err := marshalUnescaped(countryFields(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return base, nil
	}

	keys := make([]string, 0, len(c.Extra))
	for k := range c.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	for _, k := range keys {
		name, err := marshalUnescaped(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(c.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FlagPath is the asset path of a country's flag image.
func FlagPath(code string) string {
	return "assets/flags/" + strings.ToLower(code) + ".png"
}

// NewCountry returns a record with the flag path derived from code.
func NewCountry(code, continent string, name, capital Localized) Country {
	return Country{
		Code:      code,
		Continent: continent,
		Flag:      FlagPath(code),
		Name:      name,
		Capital:   capital,
	}
}

// Catalog is the ordered list of countries.
type Catalog []Country

// Codes returns the set of non-empty codes.
func (c Catalog) Codes() CodeSet {
	set := make(CodeSet, len(c))
	for _, country := range c {
		set.Add(country.Code)
	}
	return set
}

// ByContinent returns the countries of one continent, in catalog order.
func (c Catalog) ByContinent(continent string) Catalog {
	var out Catalog
	for _, country := range c {
		if strings.EqualFold(country.Continent, continent) {
			out = append(out, country)
		}
	}
	return out
}

// SortByCode orders c by code in place.
func (c Catalog) SortByCode() {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Code < c[j].Code })
}

// Parse decodes a catalog document. A UTF-8 BOM is ignored and input that is
// not valid UTF-8 is read as Windows-1252.
func Parse(raw []byte) (Catalog, error) {
	data, err := DecodeCatalog(raw)
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "catalog: parse")
	}
	return c, nil
}

// Load reads the catalog at path.
func Load(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: open %s", path)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: load %s", path)
	}
	zap.L().Debug("catalog: loaded", zap.String("path", path), zap.Int("countries", len(c)))
	return c, nil
}

// Encode renders c as indented UTF-8 JSON without HTML escaping.
func Encode(c Catalog) ([]byte, error) {
	if c == nil {
		c = Catalog{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, eris.Wrap(err, "catalog: encode")
	}
	return buf.Bytes(), nil
}

// Save writes c to path atomically.
func Save(path string, c Catalog) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}
	return geofile.WriteFile(path, data)
}

func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// AccentFixes undoes text that was written as Latin-1 and read back as
// code page 850. Add pairs as new cases turn up.
var AccentFixes = strings.NewReplacer(
	"Ú", "é", // HerzÚgovine
	"╬", "Î", // ╬les Cook
)

// FixText applies AccentFixes and normalizes to NFC.
func FixText(s string) string {
	return norm.NFC.String(AccentFixes.Replace(s))
}

// FixAccents returns a copy of c with names and capitals repaired, and the
// number of fields that changed.
func FixAccents(c Catalog) (Catalog, int) {
	out := make(Catalog, len(c))
	var changed int

	fix := func(s *string) {
		fixed := FixText(*s)
		if fixed != *s {
			*s = fixed
			changed++
		}
	}

	for i, country := range c {
		fix(&country.Name.EN)
		fix(&country.Name.FR)
		fix(&country.Capital.EN)
		fix(&country.Capital.FR)
		out[i] = country
	}
	return out, changed
}

// DecodeCatalog returns raw as UTF-8 without a byte order mark. Input that is
// not valid UTF-8 is taken to be Windows-1252, the encoding spreadsheet tools
// on Windows fall back to.
func DecodeCatalog(raw []byte) ([]byte, error) {
	if utf8.Valid(raw) {
		out, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, eris.Wrap(err, "catalog: decode utf-8")
		}
		return out, nil
	}

	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: decode windows-1252")
	}
	return out, nil
}

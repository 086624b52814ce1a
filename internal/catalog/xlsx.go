package catalog

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// SheetName is the worksheet holding the catalog in review workbooks.
const SheetName = "countries"

// Columns is the header row of a review workbook.
var Columns = []string{"code", "continent", "name_en", "name_fr", "capital_en", "capital_fr", "flag"}

func rowValues(c Country) []string {
	return []string{c.Code, c.Continent, c.Name.EN, c.Name.FR, c.Capital.EN, c.Capital.FR, c.Flag}
}

// ExportXLSX writes c to w as a single-sheet workbook for translation review.
func ExportXLSX(w io.Writer, c Catalog) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	addRow := func(values []string) {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}

	addRow(Columns)
	for _, country := range c {
		addRow(rowValues(country))
	}
	sheet.SetColWidth(2, 5, 28)

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}

// ImportXLSX reads a review workbook back. Columns are matched by header name
// so reviewers may reorder them; code is required.
func ImportXLSX(path string) (Catalog, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, ok := f.Sheet[SheetName]
	if !ok {
		if len(f.Sheets) == 0 {
			return nil, eris.Errorf("xlsx: %s has no sheets", path)
		}
		sheet = f.Sheets[0]
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("xlsx: sheet %q is empty", sheet.Name)
	}

	index := make(map[string]int)
	for i, cell := range sheet.Rows[0].Cells {
		index[strings.ToLower(strings.TrimSpace(cell.String()))] = i
	}
	if _, ok := index["code"]; !ok {
		return nil, eris.Errorf("xlsx: sheet %q has no code column", sheet.Name)
	}

	var out Catalog
	for _, row := range sheet.Rows[1:] {
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[i].String())
		}

		code := get("code")
		if code == "" {
			continue
		}
		out = append(out, Country{
			Code:      code,
			Continent: get("continent"),
			Flag:      get("flag"),
			Name:      Localized{EN: get("name_en"), FR: get("name_fr")},
			Capital:   Localized{EN: get("capital_en"), FR: get("capital_fr")},
		})
	}
	return out, nil
}

// ApplyReview copies names and capitals from reviewed onto the matching codes
// of c and returns the result with the sorted codes that changed. Codes of
// reviewed missing from c are ignored; blank reviewed cells keep the old value.
func ApplyReview(c Catalog, reviewed Catalog) (Catalog, []string) {
	byCode := make(map[string]Country, len(reviewed))
	for _, r := range reviewed {
		byCode[r.Code] = r
	}

	changed := make(CodeSet)
	out := make(Catalog, len(c))
	for i, country := range c {
		if r, ok := byCode[country.Code]; ok {
			set := func(dst *string, src string) {
				if src != "" && src != *dst {
					*dst = src
					changed.Add(country.Code)
				}
			}
			set(&country.Name.EN, r.Name.EN)
			set(&country.Name.FR, r.Name.FR)
			set(&country.Capital.EN, r.Capital.EN)
			set(&country.Capital.FR, r.Capital.FR)
		}
		out[i] = country
	}
	return out, changed.Sorted()
}

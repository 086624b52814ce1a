package catalog

import (
	"github.com/mapmania/geoprep/pkg/restcountries"
)

// FromAPI converts a REST Countries record. The API has no French capital
// names, so the English one is used for both.
func FromAPI(c restcountries.Country) Country {
	capital := c.CapitalName()
	return NewCountry(
		c.CCA2,
		c.ContinentCode(),
		Localized{EN: c.EnglishName(), FR: c.FrenchName()},
		Localized{EN: capital, FR: capital},
	)
}

// FromAPIAll converts records in order.
func FromAPIAll(cs []restcountries.Country) Catalog {
	out := make(Catalog, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromAPI(c))
	}
	return out
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mapmania/geoprep/pkg/restcountries"
)

func TestFromAPI(t *testing.T) {
	api := restcountries.Country{
		CCA2:         "BA",
		Region:       "Europe",
		Name:         restcountries.Name{Common: "Bosnia and Herzegovina"},
		Translations: map[string]restcountries.Translation{"fra": {Common: "Bosnie-Herzégovine"}},
		Capital:      []string{"Sarajevo"},
	}

	got := FromAPI(api)
	assert.Equal(t, Country{
		Code:      "BA",
		Continent: Europe,
		Flag:      "assets/flags/ba.png",
		Name:      Localized{EN: "Bosnia and Herzegovina", FR: "Bosnie-Herzégovine"},
		Capital:   Localized{EN: "Sarajevo", FR: "Sarajevo"},
	}, got)
}

func TestFromAPIAll_NoCapitalUnknownRegion(t *testing.T) {
	got := FromAPIAll([]restcountries.Country{
		{CCA2: "AQ", Region: "Antarctic"},
		{CCA2: "XX", Region: "Nowhere", Name: restcountries.Name{Common: "Nowhere"}},
	})

	assert.Len(t, got, 2)
	assert.Equal(t, Antarctica, got[0].Continent)
	assert.Equal(t, Localized{EN: "AQ", FR: "AQ"}, got[0].Name)
	assert.Equal(t, Localized{}, got[0].Capital)
	assert.Equal(t, "", got[1].Continent)
	assert.Equal(t, "Nowhere", got[1].Name.FR)
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	cases := []struct {
		label  string
		county string
		state  string
		fips   int
		sfips  int
		cfips  int
	}{
		{"County X, State Y: Summary level: 050, state:06, county:0001", "County X", "State Y", 60001, 6, 1},
		{"Autauga County, Alabama: Summary level: 050, state:01> county:001", "Autauga County", "Alabama", 1001, 1, 1},
		{"Anchorage Municipality, Alaska: Summary level: 050, state:02> county:020", "Anchorage Municipality", "Alaska", 2020, 2, 20},
		{"Baltimore city, Maryland: Summary level: 050, state:24> county:510", "Baltimore city", "Maryland", 24510, 24, 510},
		{"Los Angeles County, California: Summary level: 050, state:06> county:037", "Los Angeles County", "California", 6037, 6, 37},
	}
	for _, tc := range cases {
		loc, err := ParseLocation(tc.label)
		require.NoError(t, err, tc.label)
		assert.Equal(t, tc.county, loc.CountyName)
		assert.Equal(t, tc.state, loc.StateName)
		assert.Equal(t, tc.fips, loc.FIPS)
		assert.Equal(t, tc.sfips, loc.StateFIPS)
		assert.Equal(t, tc.cfips, loc.CountyFIPS)
	}
}

func TestParseLocationFipsIsConcatenation(t *testing.T) {
	for _, st := range []string{"01", "06", "48", "56"} {
		for _, co := range []string{"001", "0001", "510", "1234"} {
			loc, err := ParseLocation("Some County, Some State: Summary level: 050, state:" + st + ", county:" + co)
			require.NoError(t, err)
			assert.Equal(t, st, loc.State)
			assert.Equal(t, co, loc.County)
			want := 0
			for _, r := range st + co {
				want = want*10 + int(r-'0')
			}
			assert.Equal(t, want, loc.FIPS)
		}
	}
}

func TestParseLocationRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"Autauga County, Alabama",
		"Autauga County, Alabama: Summary level: 050, state:01",
		"Autauga County, Alabama: Summary level: 050, county:001> state:01",
		"Autauga County, Alabama: Summary level: 050, state:1> county:001",
		"Autauga County, Alabama: Summary level: 050, state:01> county:1",
		"Autauga County, Alabama: Summary level: 050, state:0A> county:001",
		"Autauga County, Alabama: Summary level: XYZ, state:01> county:001",
		"Autauga County Alabama: Summary level: 050, state:01> county:001",
		"Autauga County, Alabama: Summary level: 050, state:01> county:001> tract:000100",
	}
	for _, label := range bad {
		_, err := ParseLocation(label)
		var le *LocationError
		require.ErrorAs(t, err, &le, label)
		assert.Equal(t, label, le.Label)
		assert.NotEmpty(t, le.Reason)
	}
}

func TestExcludedTerritory(t *testing.T) {
	pr := "Adjuntas Municipio, Puerto Rico: Summary level: 050, state:72> county:001"
	al := "Autauga County, Alabama: Summary level: 050, state:01> county:001"

	assert.Equal(t, "Puerto Rico", ExcludedTerritory(pr, DefaultExclusions))
	assert.Equal(t, "", ExcludedTerritory(al, DefaultExclusions))
	assert.Equal(t, "", ExcludedTerritory(pr, nil))
	assert.Equal(t, "Alabama", ExcludedTerritory(al, []string{" ", "Guam", "Alabama"}))
}

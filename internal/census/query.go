// Package census fetches county-level estimates from the U.S. Census Bureau data API.
//
// The API answers a GET such as
//
//	/data/2018/acs/acs5?get=NAME,B19083_001E&for=county:*&in=state:*
//
// with a JSON array of string arrays whose first row is the header. Every data row
// is turned into a RawRow carrying a composite location label in the form
//
//	"Autauga County, Alabama: Summary level: 050, state:01> county:001"
//
// which is what downstream identifier parsing consumes.
package census

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ACS 5-year variable codes used by the explorer.
const (
	VarGiniIndex          = "B19083_001E"
	VarMedianFamilyIncome = "B19113_001E"
	VarEmployed           = "B23025_003E"
	VarUnemployed         = "B23025_005E"
	VarPopulation         = "B01001_001E"
	VarVacantHousing      = "B25004_001E"
)

// SummaryLevelCounty is the Census summary level code for state-county geography.
const SummaryLevelCounty = "050"

// Query identifies one bulk request. All fields participate in Key.
type Query struct {
	Dataset   string
	Year      int
	Variables []string
}

// DefaultQuery returns the fixed 2018 ACS 5-year county query.
func DefaultQuery() Query {
	return Query{
		Dataset: "acs/acs5",
		Year:    2018,
		Variables: []string{
			VarGiniIndex,
			VarMedianFamilyIncome,
			VarEmployed,
			VarUnemployed,
			VarPopulation,
			VarVacantHousing,
		},
	}
}

// Key is the cache key for the query parameter tuple.
func (q Query) Key() string {
	return fmt.Sprintf("%s|%d|state:*>county:*|%s", q.Dataset, q.Year, strings.Join(q.Variables, ","))
}

// Validate reports whether the query can be sent.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Dataset) == "" {
		return fmt.Errorf("query: dataset cannot be empty")
	}
	if q.Year <= 0 {
		return fmt.Errorf("query: invalid year %d", q.Year)
	}
	if len(q.Variables) == 0 {
		return fmt.Errorf("query: no variables requested")
	}
	seen := make(map[string]bool, len(q.Variables))
	for _, v := range q.Variables {
		if v == "" || strings.ContainsAny(v, ", ") {
			return fmt.Errorf("query: invalid variable code %q", v)
		}
		if seen[v] {
			return fmt.Errorf("query: duplicate variable code %q", v)
		}
		seen[v] = true
	}
	return nil
}

// endpoint builds the request URL. apiKey is appended only when set.
func (q Query) endpoint(baseURL, apiKey string) string {
	vals := url.Values{}
	vals.Set("get", "NAME,"+strings.Join(q.Variables, ","))
	vals.Set("for", "county:*")
	vals.Set("in", "state:*")
	if apiKey != "" {
		vals.Set("key", apiKey)
	}
	base := strings.TrimRight(baseURL, "/")
	return base + "/" + strconv.Itoa(q.Year) + "/" + strings.Trim(q.Dataset, "/") + "?" + vals.Encode()
}

// RawRow is one county-equivalent unit as returned by the API.
type RawRow struct {
	// Location is the composite geography label.
	Location string
	// Values maps variable code to the estimate exactly as the API sent it.
	Values map[string]string
}

// RawTable is the untransformed fetch result.
type RawTable struct {
	Variables []string
	Rows      []RawRow
}

// Label builds the composite geography label for a place name and its codes.
func Label(name, state, county string) string {
	return fmt.Sprintf("%s: Summary level: %s, state:%s> county:%s", name, SummaryLevelCounty, state, county)
}

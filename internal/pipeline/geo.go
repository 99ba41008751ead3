package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

const summaryMarker = ": Summary level: "

// Location is the decomposed composite geography label.
type Location struct {
	CountyName string
	StateName  string
	// State and County are the digit strings exactly as they appeared in the label.
	State  string
	County string

	StateFIPS  int
	CountyFIPS int
	// FIPS is the integer value of State followed by County.
	FIPS int
}

// LocationError describes a label that does not have the expected structure.
type LocationError struct {
	Label  string
	Reason string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("malformed location %q: %s", e.Label, e.Reason)
}

// ParseLocation splits a label of the form
//
//	"<county>, <state>: Summary level: 050, state:NN> county:NNN"
//
// into its parts. Geography tokens may be separated by ',' or '>'. The state code
// must be 2 digits and the county code 3 or 4 digits.
func ParseLocation(label string) (Location, error) {
	fail := func(format string, args ...any) (Location, error) {
		return Location{}, &LocationError{Label: label, Reason: fmt.Sprintf(format, args...)}
	}

	i := strings.LastIndex(label, summaryMarker)
	if i < 0 {
		return fail("missing %q marker", strings.TrimSpace(summaryMarker))
	}
	name, geo := label[:i], label[i+len(summaryMarker):]

	tokens := strings.FieldsFunc(geo, func(r rune) bool { return r == ',' || r == '>' })
	for j := range tokens {
		tokens[j] = strings.TrimSpace(tokens[j])
	}
	if len(tokens) != 3 {
		return fail("expected summary level, state and county fields, got %d fields", len(tokens))
	}
	if !isDigits(tokens[0]) {
		return fail("summary level %q is not numeric", tokens[0])
	}

	state, err := geoValue(tokens[1], "state", 2, 2)
	if err != nil {
		return fail("%v", err)
	}
	county, err := geoValue(tokens[2], "county", 3, 4)
	if err != nil {
		return fail("%v", err)
	}

	sep := strings.LastIndex(name, ", ")
	if sep <= 0 || sep+2 >= len(name) {
		return fail("place name %q is not \"<county>, <state>\"", name)
	}

	loc := Location{
		CountyName: strings.TrimSpace(name[:sep]),
		StateName:  strings.TrimSpace(name[sep+2:]),
		State:      state,
		County:     county,
	}
	// Digit-only strings of at most 6 characters always convert.
	loc.StateFIPS, _ = strconv.Atoi(state)
	loc.CountyFIPS, _ = strconv.Atoi(county)
	loc.FIPS, _ = strconv.Atoi(state + county)
	return loc, nil
}

// geoValue checks a "key:digits" token.
func geoValue(tok, key string, minLen, maxLen int) (string, error) {
	k, v, ok := strings.Cut(tok, ":")
	if !ok || strings.TrimSpace(k) != key {
		return "", fmt.Errorf("expected %q field, got %q", key+":", tok)
	}
	v = strings.TrimSpace(v)
	if !isDigits(v) || len(v) < minLen || len(v) > maxLen {
		return "", fmt.Errorf("%s code %q must be %d-%d digits", key, v, minLen, maxLen)
	}
	return v, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExcludedTerritory returns the configured territory named by label, or "".
// A label names a territory when its place name ends with ", <territory>".
func ExcludedTerritory(label string, territories []string) string {
	for _, t := range territories {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if strings.Contains(label, ", "+t+":") {
			return t
		}
	}
	return ""
}

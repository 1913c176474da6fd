package extract

import (
	"fmt"
	"regexp"
	"strings"
)

var streetAbbreviations = []struct {
	re   *regexp.Regexp
	abbr string
}{
	{regexp.MustCompile(`(?i)\bCOURT\b`), "CT"},
	{regexp.MustCompile(`(?i)\bSTREET\b`), "ST"},
	{regexp.MustCompile(`(?i)\bDRIVE\b`), "DR"},
	{regexp.MustCompile(`(?i)\bAVENUE\b`), "AVE"},
	{regexp.MustCompile(`(?i)\bBOULEVARD\b`), "BLVD"},
}

// NormalizeAddress abbreviates common street suffixes the way county
// appraiser sites index them.
func NormalizeAddress(address string) string {
	for _, a := range streetAbbreviations {
		address = a.re.ReplaceAllString(address, a.abbr)
	}
	return address
}

// FullAddress qualifies a street address with its county and state.
func FullAddress(address, county string) string {
	return fmt.Sprintf("%s, %s County, Florida", strings.TrimSpace(address), CountyName(county))
}

// CountyName trims whitespace and a trailing "County" suffix.
func CountyName(county string) string {
	fields := strings.Fields(county)
	if n := len(fields); n > 0 && strings.EqualFold(fields[n-1], "county") {
		fields = fields[:n-1]
	}
	return strings.Join(fields, " ")
}

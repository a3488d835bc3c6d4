// Package audience folds the many content rating labels found in a media
// library (MPAA, US TV, Dutch Kijkwijzer, BBFC, FSK) into a handful of age
// tiers.
//
// A Table is an ordered list of literal substring rewrites. Order matters:
// later rules see the output of earlier ones, so "PG-13" first becomes "13"
// and is only folded into "12" near the end.
package audience

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Adult is the most restrictive tier. Codes that aren't numbers are treated
// as this tier.
const Adult = 18

type Rule struct {
	Match   string
	Replace string
}

type Table struct {
	Name  string
	Rules []Rule
}

// Standard is the coarse table: everything ends up as 6, 12 or 18.
var Standard = Table{
	Name: "standard",
	Rules: []Rule{
		{"NONE", "UNRATED"},
		{"NL/NR", "UNRATED"},
		{"NL/AL", "ALL"},
		{"NOT RATED", "UNRATED"},
		{"TV-PG", "13"},
		{"PG-13", "13"},
		{"TV-G", "13"},
		{"TV-MA", "17"},
		{"NL/MG6", "6"},
		{"NL/", ""},
		{"TV-", ""},
		{"PG-", ""},
		{"PG", "13"},
		{"12-12", "12"},

		{"UNRATED", "12"},
		{"NR", "UNRATED"},

		{"UNRATED", "12"},
		{"G", "ALL"},
		{"R", "18"},
		{"Y", "6"},

		{"ALL", "6"},
		{"AL", "6"},
		{"13", "12"},
		{"14", "12"},
		{"17", "18"},
	},
}

// Detailed keeps more tiers (2, 6, 9, 12, 16, 18) and understands the
// regional "xx/" prefixes Plex puts in front of non-US ratings.
var Detailed = Table{
	Name: "detailed",
	Rules: []Rule{
		{"NONE", "UNRATED"},
		{"NOT RATED", "UNRATED"},
		{"NL/NR", "UNRATED"},
		{"NL/AL", "ALL"},
		{"NL/MG6", "6"},
		{"GB/12A", "12"},
		{"GB/U", "ALL"},
		{"GB/PG", "9"},
		{"12A", "12"},
		{"NL/", ""},
		{"GB/", ""},
		{"DE/", ""},
		{"TV-MA", "18"},
		{"NC-17", "18"},
		{"TV-Y7", "6"},
		{"TV-Y", "2"},
		{"TV-PG", "9"},
		{"TV-G", "ALL"},
		{"TV-14", "14"},
		{"PG-13", "12"},
		{"TV-", ""},
		{"PG-", ""},
		{"PG", "9"},

		{"UNRATED", "12"},
		{"NR", "12"},

		{"G", "ALL"},
		{"R", "18"},

		{"ALL", "2"},
		{"AL", "2"},
		{"13", "12"},
		{"14", "12"},
		{"15", "16"},
		{"17", "16"},
	},
}

var tables = map[string]Table{
	Standard.Name: Standard,
	Detailed.Name: Detailed,
}

// Lookup returns the table registered under name.
func Lookup(name string) (Table, error) {
	t, ok := tables[strings.ToLower(name)]
	if !ok {
		return Table{}, fmt.Errorf("unknown audience profile %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return t, nil
}

// Names lists the registered tables, sorted.
func Names() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize maps a raw content rating label to a bucket code. An empty label
// is treated as unrated.
func (t Table) Normalize(label string) string {
	code := strings.ToUpper(strings.TrimSpace(label))
	if code == "" {
		code = "UNRATED"
	}
	for _, r := range t.Rules {
		code = strings.ReplaceAll(code, r.Match, r.Replace)
	}
	return code
}

// Bucket converts a bucket code to its age tier. Codes that don't parse,
// that would divide by zero, or that lie above Adult count as Adult.
func Bucket(code string) int {
	n, err := strconv.Atoi(code)
	if err != nil || n <= 0 || n > Adult {
		return Adult
	}
	return n
}

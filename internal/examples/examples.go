// Package examples holds the sample match requests shipped as commands.
// Each example is plain data; running it is internal/app's job.
package examples

import (
	"errors"
	"fmt"
	"sort"

	"github.com/okian/osmatch/internal/domain/model"
)

// View selects how candidates are shown.
type View int

const (
	// ViewRaw prints candidates as returned.
	ViewRaw View = iota
	// ViewProjection prints id, name, match, score and features.
	ViewProjection
	// ViewSummary prints id, name and match.
	ViewSummary
)

// ErrUnknownExample is returned by Lookup for names not in All; commands
// report it with the list of available names.
var ErrUnknownExample = errors.New("unknown example")

// Example is one canned match request.
type Example struct {
	Name        string
	Description string
	// Order lists the query keys in the order results are printed.
	Order     []string
	Queries   model.Queries
	Algorithm string
	View      View
}

// Example names, also used as command directory names.
const (
	NameMatchName          = "match-name"
	NameMatchNameAddress   = "match-name-address"
	NameMatchNameBirthDate = "match-name-birth-date"
	NameMultipleQueries    = "multiple-queries"
)

// MatchName matches on schema and the name property.
var MatchName = Example{
	Name:        NameMatchName,
	Description: "Match a person by name",
	Order:       []string{"q1"},
	Queries: model.Queries{
		"q1": {Schema: model.SchemaPerson, Properties: map[string][]string{
			"name": {"Barack Obama"},
		}},
	},
	View: ViewRaw,
}

// MatchNameAddress matches on name spellings, address and country. Address
// matching is scored with the regression model.
var MatchNameAddress = Example{
	Name:        NameMatchNameAddress,
	Description: "Match a person by alternative name spellings, address and country",
	Order:       []string{"q1"},
	Queries: model.Queries{
		"q1": {Schema: model.SchemaPerson, Properties: map[string][]string{
			"name":    {"Vladimir", "Wladimir"},
			"address": {"Kremlin, Moscow"},
			"country": {"ru"},
		}},
	},
	Algorithm: "regression-v1",
	View:      ViewProjection,
}

// MatchNameBirthDate matches on name and birth date.
var MatchNameBirthDate = Example{
	Name:        NameMatchNameBirthDate,
	Description: "Match a person by name and birth date",
	Order:       []string{"q1"},
	Queries: model.Queries{
		"q1": {Schema: model.SchemaPerson, Properties: map[string][]string{
			"name":      {"Barack Obama"},
			"birthDate": {"1961-08-04"},
		}},
	},
	View: ViewProjection,
}

// MultipleQueries sends a person and a company in one request, scored with
// the regression model.
var MultipleQueries = Example{
	Name:        NameMultipleQueries,
	Description: "Match a person and a company in a single request",
	Order:       []string{"query-A", "query-B"},
	Queries: model.Queries{
		"query-A": {Schema: model.SchemaPerson, Properties: map[string][]string{
			"name":      {"Arkadiii Romanovich Rotenberg", "Ротенберг Аркадий"},
			"birthDate": {"1951"},
		}},
		"query-B": {Schema: model.SchemaCompany, Properties: map[string][]string{
			"name":         {"Stroygazmontazh"},
			"jurisdiction": {"Russia"},
		}},
	},
	Algorithm: "regression-v1",
	View:      ViewSummary,
}

// All returns every example sorted by name.
func All() []Example {
	all := []Example{MatchName, MatchNameAddress, MatchNameBirthDate, MultipleQueries}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Lookup finds an example by name.
func Lookup(name string) (Example, error) {
	for _, ex := range All() {
		if ex.Name == name {
			return ex, nil
		}
	}
	return Example{}, fmt.Errorf("%w: %q", ErrUnknownExample, name)
}

// Keys returns the query keys in print order. Keys missing from Order are
// appended sorted, so every query is printed exactly once.
func (e Example) Keys() []string {
	seen := make(map[string]bool, len(e.Order))
	keys := make([]string, 0, len(e.Queries))
	for _, k := range e.Order {
		if _, ok := e.Queries[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	rest := make([]string, 0)
	for k := range e.Queries {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

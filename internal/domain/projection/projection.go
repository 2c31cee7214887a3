// Package projection copies the displayed fields out of match candidates.
// Order and length always follow the input; nothing is filtered or re-ranked.
package projection

import (
	"github.com/okian/osmatch/internal/domain/model"
)

const nameProperty = "name"

// Project returns the id, name, match, score and features of every candidate.
// A candidate lacking any of these keys yields a *model.DataShapeError naming
// the field and its index. Keys present with a null value are copied as null.
func Project(results []model.Candidate) ([]model.Projection, error) {
	out := make([]model.Projection, len(results))
	for i, c := range results {
		if err := require(c, i, true); err != nil {
			return nil, err
		}
		out[i] = model.Projection{
			ID:       c.ID,
			Name:     c.Properties[nameProperty],
			Match:    c.Match,
			Score:    c.Score,
			Features: c.Features,
		}
	}
	return out, nil
}

// Summarize returns only id, name and match for every candidate.
func Summarize(results []model.Candidate) ([]model.Summary, error) {
	out := make([]model.Summary, len(results))
	for i, c := range results {
		if err := require(c, i, false); err != nil {
			return nil, err
		}
		out[i] = model.Summary{
			ID:    c.ID,
			Name:  c.Properties[nameProperty],
			Match: c.Match,
		}
	}
	return out, nil
}

func require(c model.Candidate, i int, scored bool) error {
	missing := func(field string) error {
		return &model.DataShapeError{Index: i, Field: field}
	}
	if !c.Has("id") {
		return missing("id")
	}
	if _, ok := c.Properties[nameProperty]; !ok {
		return missing("properties.name")
	}
	if !c.Has("match") {
		return missing("match")
	}
	if !scored {
		return nil
	}
	if !c.Has("score") {
		return missing("score")
	}
	if !c.Has("features") {
		return missing("features")
	}
	return nil
}

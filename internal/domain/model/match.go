// Package model contains the match API request and response shapes.
// Field names and JSON tags mirror the wire format of the hosted service.
package model

import "encoding/json"

// Schema names used by the examples. The service accepts any schema from its
// entity taxonomy; these are not validated locally.
const (
	SchemaPerson  = "Person"
	SchemaCompany = "Company"
)

// MatchQuery describes one entity to match. Each property holds alternative
// values, any of which may match.
type MatchQuery struct {
	Schema     string              `json:"schema"`
	Properties map[string][]string `json:"properties"`
}

// Queries maps caller-chosen query keys to queries.
type Queries map[string]MatchQuery

// MatchRequest is the JSON body posted to the match endpoint.
type MatchRequest struct {
	Queries Queries `json:"queries"`
}

// MatchResponse is the decoded body of a successful match call.
type MatchResponse struct {
	Responses map[string]QueryResponse `json:"responses"`
	Matcher   *MatcherInfo             `json:"matcher,omitempty"`
	Limit     int                      `json:"limit,omitempty"`
}

// MatcherInfo describes the scoring algorithm the service used.
type MatcherInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Features    map[string]FeatureInfo `json:"features,omitempty"`
}

// FeatureInfo documents a single scoring feature.
type FeatureInfo struct {
	Description string  `json:"description,omitempty"`
	Coefficient float64 `json:"coefficient"`
	URL         string  `json:"url,omitempty"`
}

// QueryResponse carries the candidates for one query key. Raw holds the
// same results exactly as the service sent them, one element per candidate.
type QueryResponse struct {
	Status  int               `json:"status"`
	Results []Candidate       `json:"results"`
	Total   *TotalInfo        `json:"total,omitempty"`
	Query   *EchoedQuery      `json:"query,omitempty"`
	Raw     []json.RawMessage `json:"-"`
}

// TotalInfo is the service's count of candidates considered.
type TotalInfo struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

// EchoedQuery is the query as normalized by the service.
type EchoedQuery struct {
	ID         string              `json:"id,omitempty"`
	Schema     string              `json:"schema"`
	Properties map[string][]string `json:"properties"`
}

// Candidate is one matched entity. Fields needed for projection are
// pointers or maps so that a zero value can be told apart from null.
type Candidate struct {
	ID         *string             `json:"id"`
	Caption    string              `json:"caption,omitempty"`
	Schema     string              `json:"schema,omitempty"`
	Properties map[string][]string `json:"properties"`
	Match      *bool               `json:"match"`
	Score      *float64            `json:"score"`
	Features   map[string]float64  `json:"features"`
	Datasets   []string            `json:"datasets,omitempty"`
	Referents  []string            `json:"referents,omitempty"`
	Target     bool                `json:"target"`
	FirstSeen  string              `json:"first_seen,omitempty"`
	LastSeen   string              `json:"last_seen,omitempty"`
	LastChange string              `json:"last_change,omitempty"`

	// keys of the decoded object, nil for candidates built in code
	keys map[string]bool
}

// UnmarshalJSON decodes a candidate and remembers which keys were present,
// so that Has can tell a null field from an absent one.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	type plain Candidate
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*c = Candidate(p)
	c.keys = make(map[string]bool, len(fields))
	for k := range fields {
		c.keys[k] = true
	}
	return nil
}

// Has reports whether field was present in the decoded object, even as null.
// For candidates not decoded from JSON it reports whether the field is set.
func (c Candidate) Has(field string) bool {
	if c.keys != nil {
		return c.keys[field]
	}
	switch field {
	case "id":
		return c.ID != nil
	case "properties":
		return c.Properties != nil
	case "match":
		return c.Match != nil
	case "score":
		return c.Score != nil
	case "features":
		return c.Features != nil
	}
	return false
}

// Projection is the subset of a candidate shown to users. Values are copied
// as received; a field the service sent as null stays null.
type Projection struct {
	ID       *string            `json:"id"`
	Name     []string           `json:"name"`
	Match    *bool              `json:"match"`
	Score    *float64           `json:"score"`
	Features map[string]float64 `json:"features"`
}

// Summary is the reduced projection used when only identity and the match
// decision matter.
type Summary struct {
	ID    *string  `json:"id"`
	Name  []string `json:"name"`
	Match *bool    `json:"match"`
}

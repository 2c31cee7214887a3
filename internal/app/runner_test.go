package app_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/osmatch/internal/adapters/matchapi"
	"github.com/okian/osmatch/internal/app"
	"github.com/okian/osmatch/internal/config"
	"github.com/okian/osmatch/internal/domain/model"
	"github.com/okian/osmatch/internal/examples"
	"github.com/okian/osmatch/pkg/metrics"
	"github.com/okian/osmatch/pkg/printer"
)

type fakeMatcher struct {
	calls   int
	queries model.Queries
	opts    int
	resp    *model.MatchResponse
	err     error
}

func (f *fakeMatcher) Match(_ context.Context, queries model.Queries, opts ...matchapi.MatchOption) (*model.MatchResponse, error) {
	f.calls++
	f.queries = queries
	f.opts = len(opts)
	return f.resp, f.err
}

func candidate(id, name string, match bool, score float64) model.Candidate {
	return model.Candidate{
		ID:         &id,
		Properties: map[string][]string{"name": {name}},
		Match:      &match,
		Score:      &score,
		Features:   map[string]float64{"name_literal_match": score},
	}
}

func TestRun(t *testing.T) {
	Convey("Given a matcher returning candidates for two queries", t, func() {
		resp := &model.MatchResponse{Responses: map[string]model.QueryResponse{
			"query-A": {Results: []model.Candidate{candidate("NK-rotenberg", "Arkady Rotenberg", true, 0.98)}},
			"query-B": {Results: []model.Candidate{
				candidate("NK-sgm", "Stroygazmontazh", true, 0.9),
				candidate("NK-other", "Stroygaz", false, 0.3),
			}},
		}}
		m := &fakeMatcher{resp: resp}
		var out bytes.Buffer

		Convey("When running the multiple queries example", func() {
			err := app.Run(context.Background(), m, examples.MultipleQueries, printer.New(&out))

			Convey("Then one request is sent with the example's algorithm option", func() {
				So(err, ShouldBeNil)
				So(m.calls, ShouldEqual, 1)
				So(m.queries, ShouldHaveLength, 2)
				So(m.opts, ShouldEqual, 1)
			})

			Convey("Then each query is printed under its heading, in order", func() {
				s := out.String()
				a := strings.Index(s, "Results for query query-A:")
				b := strings.Index(s, "Results for query query-B:")
				So(a, ShouldBeGreaterThanOrEqualTo, 0)
				So(b, ShouldBeGreaterThan, a)
				So(strings.Index(s, "NK-rotenberg"), ShouldBeBetween, a, b)
				So(strings.Index(s, "NK-sgm"), ShouldBeLessThan, strings.Index(s, "NK-other"))
				So(s, ShouldNotContainSubstring, `"score"`)
			})
		})

		Convey("When running a projection example", func() {
			m.resp = &model.MatchResponse{Responses: map[string]model.QueryResponse{
				"q1": {Results: []model.Candidate{candidate("Q76", "Barack Obama", true, 0.92)}},
			}}
			err := app.Run(context.Background(), m, examples.MatchNameBirthDate, printer.New(&out))

			Convey("Then scores and features are printed without a heading", func() {
				So(err, ShouldBeNil)
				So(m.opts, ShouldEqual, 0)
				s := out.String()
				So(s, ShouldNotContainSubstring, "Results for query")
				So(s, ShouldContainSubstring, `"score": 0.92`)
				So(s, ShouldContainSubstring, `"name_literal_match"`)
			})
		})

		Convey("When a candidate lacks a score", func() {
			bad := candidate("Q76", "Barack Obama", true, 0.92)
			bad.Score = nil
			m.resp = &model.MatchResponse{Responses: map[string]model.QueryResponse{"q1": {Results: []model.Candidate{bad}}}}
			err := app.Run(context.Background(), m, examples.MatchNameAddress, printer.New(&out))

			Convey("Then a data shape error names query and field", func() {
				var shapeErr *model.DataShapeError
				So(errors.As(err, &shapeErr), ShouldBeTrue)
				So(shapeErr.Query, ShouldEqual, "q1")
				So(shapeErr.Field, ShouldEqual, "score")
			})
		})

		Convey("When the matcher fails", func() {
			m.err = &matchapi.TransportError{StatusCode: http.StatusForbidden, Body: []byte("denied")}
			err := app.Run(context.Background(), m, examples.MultipleQueries, printer.New(&out))

			Convey("Then the error is returned unchanged in kind and nothing printed", func() {
				So(errors.Is(err, matchapi.ErrTransport), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, examples.NameMultipleQueries)
				So(out.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestExecute(t *testing.T) {
	Convey("Given a fake match service", t, func() {
		var hits int32
		var lastAlgorithm atomic.Value
		lastAlgorithm.Store("")
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			lastAlgorithm.Store(r.URL.Query().Get("algorithm"))
			if r.Header.Get("Authorization") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"responses":{"q1":{"results":[
				{"id":"Q76","properties":{"name":["Barack Obama"]},"match":true,"score":0.92,"features":{"name_literal_match":1}}
			]}}}`))
		}))
		defer srv.Close()

		cfg := config.New()
		cfg.BaseURL = srv.URL
		var out bytes.Buffer

		Convey("When no credential is configured", func() {
			err := app.Execute(context.Background(), cfg, examples.MatchName, &out, matchapi.WithMetrics(metrics.NewManager()))

			Convey("Then it fails before any request", func() {
				So(errors.Is(err, config.ErrMissingAPIKey), ShouldBeTrue)
				So(atomic.LoadInt32(&hits), ShouldEqual, 0)
			})
		})

		Convey("When the credential is configured", func() {
			cfg.APIKey = "secret"
			err := app.Execute(context.Background(), cfg, examples.MatchName, &out, matchapi.WithMetrics(metrics.NewManager()))

			Convey("Then the raw candidates are printed", func() {
				So(err, ShouldBeNil)
				So(atomic.LoadInt32(&hits), ShouldEqual, 1)
				So(out.String(), ShouldContainSubstring, `"id": "Q76"`)
				So(out.String(), ShouldNotContainSubstring, "\x1b[")
			})
		})

		Convey("When running the multiple queries example", func() {
			cfg.APIKey = "secret"
			err := app.Execute(context.Background(), cfg, examples.MultipleQueries, &out, matchapi.WithMetrics(metrics.NewManager()))

			Convey("Then the algorithm is on the wire and missing keys are reported", func() {
				So(lastAlgorithm.Load(), ShouldEqual, "regression-v1")
				So(errors.Is(err, model.ErrDataShape), ShouldBeTrue)
			})
		})

		Convey("When the credential is rejected", func() {
			cfg.APIKey = "wrong"
			err := app.Execute(context.Background(), cfg, examples.MatchName, &out, matchapi.WithMetrics(metrics.NewManager()))

			Convey("Then a transport error is returned after a single request", func() {
				var te *matchapi.TransportError
				So(errors.As(err, &te), ShouldBeTrue)
				So(te.StatusCode, ShouldEqual, http.StatusUnauthorized)
				So(atomic.LoadInt32(&hits), ShouldEqual, 1)
			})
		})
	})
}

func TestExecuteRawOutput(t *testing.T) {
	Convey("Given a service returning fields the client does not model", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"responses":{"q1":{"results":[
				{"id":"Q76","properties":{"name":["Barack Obama"]},"match":true,"score":0.92,
				 "features":{"z_feature":0.5,"a_feature":1},"target":false,"token":"abc",
				 "explanations":{"z_feature":{"detail":"x"}}}
			]}}}`))
		}))
		defer srv.Close()

		cfg := config.New()
		cfg.BaseURL = srv.URL
		cfg.APIKey = "secret"
		var out bytes.Buffer

		Convey("When running the name example", func() {
			err := app.Execute(context.Background(), cfg, examples.MatchName, &out, matchapi.WithMetrics(metrics.NewManager()))

			Convey("Then candidates are printed as the service sent them", func() {
				So(err, ShouldBeNil)
				s := out.String()
				So(s, ShouldContainSubstring, `"target": false`)
				So(s, ShouldContainSubstring, `"token": "abc"`)
				So(s, ShouldContainSubstring, `"explanations"`)
				So(s, ShouldContainSubstring, `"a_feature": 1`)
				So(strings.Index(s, `"z_feature"`), ShouldBeLessThan, strings.Index(s, `"a_feature"`))
			})
		})
	})
}

func TestMainUnknownExample(t *testing.T) {
	Convey("Given a name that is not a shipped example", t, func() {
		code := app.Main("no-such-example")

		Convey("Then it exits with status 1 before loading configuration", func() {
			So(code, ShouldEqual, 1)
		})
	})
}

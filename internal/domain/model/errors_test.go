package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/osmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDataShapeError(t *testing.T) {
	Convey("Given a data shape error for a candidate field", t, func() {
		err := error(&model.DataShapeError{Query: "q1", Index: 2, Field: "score"})

		Convey("Then it matches ErrDataShape and names the location", func() {
			So(errors.Is(err, model.ErrDataShape), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "missing field score")
			So(err.Error(), ShouldContainSubstring, `query "q1"`)
			So(err.Error(), ShouldContainSubstring, "result 2")
		})
	})

	Convey("Given a data shape error wrapping a decode failure", t, func() {
		cause := &json.SyntaxError{Offset: 3}
		err := error(&model.DataShapeError{Index: -1, Err: cause})

		Convey("Then the cause is reachable and no index is reported", func() {
			var syntaxErr *json.SyntaxError
			So(errors.As(err, &syntaxErr), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "malformed body")
			So(err.Error(), ShouldNotContainSubstring, "result")
		})
	})
}

func TestCandidateDecoding(t *testing.T) {
	Convey("Given a candidate without a score", t, func() {
		var c model.Candidate
		err := json.Unmarshal([]byte(`{"id":"Q76","properties":{"name":["Barack Obama"]},"match":true,"features":{}}`), &c)

		Convey("Then the absence is observable", func() {
			So(err, ShouldBeNil)
			So(c.Score, ShouldBeNil)
			So(*c.ID, ShouldEqual, "Q76")
			So(*c.Match, ShouldBeTrue)
			So(c.Features, ShouldNotBeNil)
		})
	})

	Convey("Given a candidate with a zero score", t, func() {
		var c model.Candidate
		err := json.Unmarshal([]byte(`{"id":"x","score":0}`), &c)

		Convey("Then zero is distinguished from missing", func() {
			So(err, ShouldBeNil)
			So(c.Score, ShouldNotBeNil)
			So(*c.Score, ShouldEqual, 0)
		})
	})

	Convey("Given a candidate with null and absent fields", t, func() {
		var c model.Candidate
		err := json.Unmarshal([]byte(`{"id":"x","score":null,"match":true}`), &c)

		Convey("Then a null key is present and an absent one is not", func() {
			So(err, ShouldBeNil)
			So(c.Score, ShouldBeNil)
			So(c.Has("score"), ShouldBeTrue)
			So(c.Has("features"), ShouldBeFalse)
			So(c.Has("match"), ShouldBeTrue)
		})
	})
}

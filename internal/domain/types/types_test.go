package types

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/kpieval/internal/domain/model"
)

func TestEvaluateRequestDecoding(t *testing.T) {
	Convey("Given a request mixing numbers, strings and nulls", t, func() {
		body := `{"mode":"flat","position":"Manager","rows":[
			{"name":"Revenue","weight":40,"target":"100","realization":110.5,"polarity":"Positif"},
			{"name":"Cost","weight":"30%","target":null,"realization":1e2,"polarity":null}
		]}`

		var req EvaluateRequest
		err := json.Unmarshal([]byte(body), &req)

		Convey("Then it decodes with literal number text", func() {
			So(err, ShouldBeNil)
			So(req.Mode, ShouldEqual, "flat")
			So(req.Rows, ShouldHaveLength, 2)
			So(req.Rows[0].Weight, ShouldEqual, Cell("40"))
			So(req.Rows[0].Realization, ShouldEqual, Cell("110.5"))
			So(req.Rows[1].Weight, ShouldEqual, Cell("30%"))
			So(req.Rows[1].Target, ShouldEqual, Cell(""))
			So(req.Rows[1].Realization, ShouldEqual, Cell("1e2"))
		})

		Convey("Then records preserve order and fields", func() {
			recs := req.Records()
			So(recs, ShouldHaveLength, 2)
			So(recs[0][model.FieldName], ShouldEqual, "Revenue")
			So(recs[1][model.FieldWeight], ShouldEqual, "30%")
			_, ok := recs[1].Get(model.FieldTarget)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a row with a boolean cell", t, func() {
		var req EvaluateRequest
		err := json.Unmarshal([]byte(`{"rows":[{"name":true}]}`), &req)
		So(err, ShouldNotBeNil)
	})
}

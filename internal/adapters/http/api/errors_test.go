package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorHelpers(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("unexpected EOF")

		Convey("WrapKind exposes both kind and cause", func() {
			err := WrapKind("api.evaluate", ErrBadRequest, cause)
			So(err.Error(), ShouldEqual, "api.evaluate: bad request: unexpected EOF")
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
		})

		Convey("NewKind has no cause", func() {
			err := NewKind("api.export", ErrTooLarge)
			So(err.Error(), ShouldEqual, "api.export: request body too large")
			So(errors.Is(err, ErrTooLarge), ShouldBeTrue)
		})

		Convey("Wrap of nil is nil", func() {
			So(Wrap("op", nil), ShouldBeNil)
		})

		Convey("classify maps kinds onto statuses", func() {
			status, code := classify(Wrap("op", NewKind("decode", ErrBadRequest)))
			So(status, ShouldEqual, 400)
			So(code, ShouldEqual, "bad_request")

			status, code = classify(NewKind("decode", ErrUnsupported))
			So(status, ShouldEqual, 415)
			So(code, ShouldEqual, "unsupported_media_type")

			status, _ = classify(cause)
			So(status, ShouldEqual, 500)
		})
	})
}

func TestErrorType(t *testing.T) {
	Convey("Status codes map to error labels", t, func() {
		So(errorType(500), ShouldEqual, "server_error")
		So(errorType(502), ShouldEqual, "server_error")
		So(errorType(413), ShouldEqual, "too_large")
		So(errorType(422), ShouldEqual, "unprocessable")
		So(errorType(404), ShouldEqual, "not_found")
		So(errorType(400), ShouldEqual, "bad_request")
		So(errorType(409), ShouldEqual, "client_error")
		So(severity(503), ShouldEqual, "high")
		So(severity(400), ShouldEqual, "medium")
		So(severity(422), ShouldEqual, "low")
	})
}

func TestWriteJSON(t *testing.T) {
	Convey("Given a value that encodes", t, func() {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusCreated, map[string]float64{"score": 96.5})

		Convey("Then the status and body are written", func() {
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(w.Body.String(), ShouldEqual, "{\"score\":96.5}\n")
		})
	})

	Convey("Given a value that cannot be encoded", t, func() {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusOK, map[string]float64{"score": math.Inf(1)})

		Convey("Then a 500 error body replaces it", func() {
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			var body errorResponse
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body.Code, ShouldEqual, "internal_error")
			So(body.Message, ShouldContainSubstring, "unsupported value")
		})
	})
}

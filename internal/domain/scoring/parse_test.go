package scoring_test

import (
	"errors"
	"testing"

	scoring "github.com/okian/kpieval/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParsePolarity(t *testing.T) {
	Convey("Given free-text polarity values", t, func() {
		Convey("Then Indonesian and English forms are recognized in any case", func() {
			So(scoring.ParsePolarity("Positif"), ShouldEqual, scoring.Positive)
			So(scoring.ParsePolarity("  NEGATIF\t"), ShouldEqual, scoring.Negative)
			So(scoring.ParsePolarity("positive"), ShouldEqual, scoring.Positive)
			So(scoring.ParsePolarity("Negative"), ShouldEqual, scoring.Negative)
		})

		Convey("And full-width text is normalized first", func() {
			So(scoring.ParsePolarity("ＰＯＳＩＴＩＦ"), ShouldEqual, scoring.Positive)
		})

		Convey("And anything else is neutral", func() {
			So(scoring.ParsePolarity("netral"), ShouldEqual, scoring.Neutral)
			So(scoring.ParsePolarity(""), ShouldEqual, scoring.Neutral)
			So(scoring.ParsePolarity("pos"), ShouldEqual, scoring.Neutral)
		})

		Convey("And polarities render their canonical names", func() {
			So(scoring.Positive.String(), ShouldEqual, "positive")
			So(scoring.Negative.String(), ShouldEqual, "negative")
			So(scoring.Neutral.String(), ShouldEqual, "neutral")
		})
	})
}

func TestParseMode(t *testing.T) {
	Convey("Given mode names", t, func() {
		Convey("Then known names parse", func() {
			for in, want := range map[string]scoring.Mode{
				"":            scoring.ModePolarity,
				"polarity":    scoring.ModePolarity,
				"Polaritas":   scoring.ModePolarity,
				"flat":        scoring.ModeFlat,
				" PERCENTAGE": scoring.ModeFlat,
			} {
				got, err := scoring.ParseMode(in)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("And unknown names fail with ErrUnknownMode", func() {
			_, err := scoring.ParseMode("weird")
			So(errors.Is(err, scoring.ErrUnknownMode), ShouldBeTrue)
		})

		Convey("And modes round-trip through text", func() {
			var m scoring.Mode
			So(m.UnmarshalText([]byte("flat")), ShouldBeNil)
			So(m, ShouldEqual, scoring.ModeFlat)
			b, _ := m.MarshalText()
			So(string(b), ShouldEqual, "flat")
		})
	})
}

func TestParseNumber(t *testing.T) {
	Convey("Given numeric text", t, func() {
		Convey("Then plain, padded and percent forms parse", func() {
			for in, want := range map[string]float64{
				"12":     12,
				" 12.5 ": 12.5,
				"95%":    95,
				"95 %":   95,
				"-3":     -3,
				"1e2":    100,
				".5":     0.5,
				"5.":     5,
				"+7":     7,
				"2.5E-1": 0.25,
			} {
				got, err := scoring.ParseNumber(in)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("And malformed or non-finite values fail", func() {
			for _, in := range []string{"", "abc", "1,5", "NaN", "inf", "1e400", "12%%"} {
				_, err := scoring.ParseNumber(in)
				So(err, ShouldNotBeNil)
			}
		})

		Convey("And Go-only literal forms are rejected", func() {
			for _, in := range []string{"0x1p4", "0x10", "1_000", "1_0.5", "+Infinity", ".", "1e", "e5"} {
				_, err := scoring.ParseNumber(in)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

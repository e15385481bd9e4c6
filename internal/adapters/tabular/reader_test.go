package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/okian/kpieval/internal/domain/model"
)

func TestReadDelimited(t *testing.T) {
	Convey("Given a KPI reader with default columns", t, func() {
		r := NewReader()

		Convey("When reading a comma separated sheet", func() {
			src := "NAMA KPI,BOBOT,TARGET TW TERKAIT,REALISASI TW TERKAIT,POLARITAS,JABATAN\n" +
				"Revenue,40,100,110,Positif,Manager\n" +
				"Cost,30,50,40,Negatif,Manager\n"
			recs, err := r.ReadDelimited(strings.NewReader(src), 0)

			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 2)
			So(recs[0][model.FieldName], ShouldEqual, "Revenue")
			So(recs[0][model.FieldWeight], ShouldEqual, "40")
			So(recs[1][model.FieldPolarity], ShouldEqual, "Negatif")
			So(recs[1][model.FieldPosition], ShouldEqual, "Manager")
		})

		Convey("When the header uses a semicolon delimiter, a BOM and odd casing", func() {
			src := "\ufeffnama  kpi;Bobot;target;Realisasi;polaritas\nUptime;100;99;99,5;positif\n"
			recs, err := r.ReadDelimited(strings.NewReader(src), 0)

			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
			So(recs[0][model.FieldName], ShouldEqual, "Uptime")
			So(recs[0][model.FieldTarget], ShouldEqual, "99")
			So(recs[0][model.FieldRealization], ShouldEqual, "99,5")
		})

		Convey("When rows are ragged or blank", func() {
			src := "KPI,WEIGHT,TARGET\nA,10\n,,\nB,20,5\n"
			recs, err := r.ReadDelimited(strings.NewReader(src), 0)

			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 2)
			_, hasTarget := recs[0][model.FieldTarget]
			So(hasTarget, ShouldBeFalse)
			So(recs[1][model.FieldTarget], ShouldEqual, "5")
		})

		Convey("When the header has no known columns", func() {
			_, err := r.ReadDelimited(strings.NewReader("foo,bar\n1,2\n"), 0)
			So(errors.Is(err, ErrNoKnownColumns), ShouldBeTrue)
		})

		Convey("When the file is empty", func() {
			_, err := r.ReadDelimited(strings.NewReader(""), 0)
			So(errors.Is(err, ErrNoHeader), ShouldBeTrue)
		})

		Convey("When reading tab separated text by extension", func() {
			recs, err := r.Read("kpi.tsv", strings.NewReader("NAME\tWEIGHT\nA\t1\n"))
			So(err, ShouldBeNil)
			So(recs[0][model.FieldWeight], ShouldEqual, "1")
		})

		Convey("When the extension is unsupported", func() {
			_, err := r.Read("kpi.pdf", strings.NewReader(""))
			So(errors.Is(err, ErrUnsupportedFormat), ShouldBeTrue)
		})
	})

	Convey("Given a reader with custom aliases", t, func() {
		r := NewReader(WithColumns(map[model.Field][]string{
			model.FieldName: {"Indikator"},
		}))
		recs, err := r.ReadDelimited(strings.NewReader("Indikator,BOBOT\nX,5\n"), ',')

		So(err, ShouldBeNil)
		So(recs[0][model.FieldName], ShouldEqual, "X")
		So(recs[0][model.FieldWeight], ShouldEqual, "5")
	})
}

func TestReadXLSX(t *testing.T) {
	Convey("Given a workbook with KPI rows", t, func() {
		f := excelize.NewFile()
		defer func() { _ = f.Close() }()
		sheet := f.GetSheetName(0)
		So(f.SetSheetRow(sheet, "A1", &[]any{"NAMA KPI", "BOBOT", "TARGET", "REALISASI", "POLARITAS"}), ShouldBeNil)
		So(f.SetSheetRow(sheet, "A2", &[]any{"Sales", 60, 200, 150, "Positif"}), ShouldBeNil)
		So(f.SetSheetRow(sheet, "A3", &[]any{"Complaints", 40, 10, 5, "Negatif"}), ShouldBeNil)

		var buf bytes.Buffer
		So(f.Write(&buf), ShouldBeNil)

		Convey("When reading the first sheet", func() {
			recs, err := NewReader().Read("kpi.xlsx", bytes.NewReader(buf.Bytes()))

			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 2)
			So(recs[0][model.FieldName], ShouldEqual, "Sales")
			So(recs[0][model.FieldTarget], ShouldEqual, "200")
			So(recs[1][model.FieldPolarity], ShouldEqual, "Negatif")
		})

		Convey("When the configured sheet does not exist", func() {
			_, err := NewReader(WithSheet("Missing")).ReadXLSX(bytes.NewReader(buf.Bytes()))
			So(errors.Is(err, ErrSheetNotFound), ShouldBeTrue)
		})

		Convey("When the bytes are not a workbook", func() {
			_, err := NewReader().ReadXLSX(strings.NewReader("not a zip"))
			So(err, ShouldNotBeNil)
		})
	})
}

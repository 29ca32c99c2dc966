package document

import (
	"bytes"
	"image"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/contactsheet/pkg/buildinfo"
	"github.com/matzehuels/contactsheet/pkg/page"
)

const pdfImageName = "sheet"

// encodePDF builds a one-page PDF whose page is exactly spec's size in
// points and whose only content is the raster, embedded as JPEG and drawn
// edge to edge.
func encodePDF(img image.Image, spec page.Spec, e *encoder) ([]byte, error) {
	jpg, err := encodeJPEG(img, e.quality, spec.DPI)
	if err != nil {
		return nil, err
	}

	w, h := spec.WidthPt(), spec.HeightPt()
	orientation := "P"
	if spec.Orientation == page.Landscape || w > h {
		orientation = "L"
	}
	// fpdf takes the portrait size and swaps it for "L".
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: min(w, h), Ht: max(w, h)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(e.title, true)
	pdf.SetCreator("contactsheet "+buildinfo.Version, true)
	if !e.created.IsZero() {
		pdf.SetCreationDate(e.created)
	}

	pdf.AddPage()
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader(pdfImageName, opts, bytes.NewReader(jpg))
	pdf.ImageOptions(pdfImageName, 0, 0, w, h, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

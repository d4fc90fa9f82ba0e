package receipts

import (
	"bytes"
	"context"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/sanctified-studios/studio/internal/shared"
)

// FPDFRenderer draws documents in-process with gofpdf. It needs no external
// service, which makes it the fallback when Gotenberg is not deployed.
type FPDFRenderer struct{}

// NewFPDFRenderer constructs the renderer.
func NewFPDFRenderer() *FPDFRenderer { return &FPDFRenderer{} }

// Render produces PDF bytes.
func (FPDFRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.RenderError{Err: err}
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	// Core fonts are cp1252; the rupee sign is not part of it.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string {
		return tr(strings.ReplaceAll(s, "₹", "Rs. "))
	}

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, text(doc.Issuer.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, text(doc.Issuer.Contact), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, text(doc.Title), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 8, text("No. "+doc.Number), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	drawSectionTitle(pdf, "Customer")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range [][2]string{
		{"Name", doc.Customer},
		{"Phone", doc.Phone},
		{"Event Date", doc.EventDate},
		{"Studio", doc.Studio},
		{"Package", doc.Package},
	} {
		if line[1] == "" {
			continue
		}
		pdf.CellFormat(40, 7, text(line[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, text(line[1]), "", 1, "L", false, 0, "")
	}

	if len(doc.Events) > 0 {
		pdf.Ln(2)
		drawSectionTitle(pdf, "Functions")
		pdf.SetFont("Helvetica", "", 11)
		for _, ev := range doc.Events {
			pdf.MultiCell(0, 6, text("- "+ev.Describe()), "", "L", false)
		}
	}

	pdf.Ln(2)
	drawSectionTitle(pdf, "Amounts")
	for _, row := range doc.Rows {
		style := ""
		if row.Emphasis {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(110, 8, text(row.Label), "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, text(row.Value), "B", 1, "R", false, 0, "")
	}

	if len(doc.Terms) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		for _, term := range doc.Terms {
			pdf.MultiCell(0, 5, text(term), "", "L", false)
		}
	}

	qr, err := ContactQR(doc.Issuer)
	if err != nil {
		return nil, shared.RenderError{Err: err}
	}
	if qr != nil {
		pdf.Ln(4)
		opts := gofpdf.ImageOptions{ImageType: "png"}
		pdf.RegisterImageOptionsReader("contact-qr", opts, bytes.NewReader(qr))
		x := (210 - 32) / 2.0
		pdf.ImageOptions("contact-qr", x, pdf.GetY(), 32, 0, true, opts, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, "Scan to chat with us on WhatsApp", "", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 8, text(doc.Footer), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, shared.RenderError{Err: err}
	}
	return buf.Bytes(), nil
}

func drawSectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 8, title, "", 1, "L", true, 0, "")
	pdf.Ln(1)
}

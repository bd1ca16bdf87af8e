package report

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/x-dv7/p01-lesson05/pkg/models"
	"golang.org/x/text/encoding/charmap"
)

const (
	pdfFontFamily = "report"
	pdfLineHeight = 5.0
	pdfHeaderH    = 8.0
	pdfMargin     = 10.0
)

// pdfColumns are the column widths in mm on A4 portrait
var pdfColumns = []float64{100, 20, 25, 45}

// PDFEmitter writes a paginated A4 document with a title and a styled table
type PDFEmitter struct {
	title    string
	fontPath string // optional UTF-8 TTF; core Helvetica otherwise
	compress bool
}

// NewPDFEmitter creates a PDF emitter
func NewPDFEmitter(title, fontPath string) *PDFEmitter {
	if title == "" {
		title = defaultTitle
	}
	return &PDFEmitter{title: title, fontPath: fontPath, compress: true}
}

// Format returns "pdf"
func (e *PDFEmitter) Format() string {
	return "pdf"
}

// Probe checks the configured font file
func (e *PDFEmitter) Probe() error {
	if e.fontPath == "" {
		return nil
	}
	if err := fileExists(e.fontPath); err != nil {
		return fmt.Errorf("pdf font unavailable: %w", err)
	}
	return nil
}

// checkCoreFont returns ErrMissingCapability for the first cell holding a
// character outside cp1252
func (e *PDFEmitter) checkCoreFont(entries []models.Entry) error {
	if r, ok := firstNonCP1252(e.title); ok {
		return coreFontError(e.title, r)
	}
	for _, entry := range entries {
		for _, cell := range entry.Row() {
			if r, ok := firstNonCP1252(cell); ok {
				return coreFontError(cell, r)
			}
		}
	}
	return nil
}

func coreFontError(text string, r rune) error {
	return fmt.Errorf("%w: pdf: %q contains %U, which the built-in font cannot draw; set report.pdf_font to a UTF-8 TTF font",
		ErrMissingCapability, text, r)
}

// firstNonCP1252 returns the first rune of s with no cp1252 encoding.
// Invalid UTF-8 decodes to U+FFFD and is reported too.
func firstNonCP1252(s string) (rune, bool) {
	for _, r := range s {
		if r < utf8.RuneSelf {
			continue
		}
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return r, true
		}
	}
	return 0, false
}

// pdfWriter carries drawing state for one document
type pdfWriter struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
}

// Emit writes the PDF document. Without a UTF-8 font it refuses text the
// core fonts cannot draw rather than writing a lossy report.
func (e *PDFEmitter) Emit(w io.Writer, entries []models.Entry) error {
	if e.fontPath == "" {
		if err := e.checkCoreFont(entries); err != nil {
			return err
		}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	// Page breaks are handled per row so a wrapped row never splits
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(e.title, true)

	pw := &pdfWriter{pdf: pdf, family: "Helvetica", tr: func(s string) string { return s }}
	if e.fontPath != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", e.fontPath)
		pdf.AddUTF8Font(pdfFontFamily, "B", e.fontPath)
		pw.family = pdfFontFamily
	} else {
		// Core fonts are cp1252
		pw.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddPage()
	pdf.SetFont(pw.family, "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 12, pw.tr(e.title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pw.header()
	for _, entry := range entries {
		pw.row(entry.Row())
	}

	return pdf.Output(w)
}

// header draws the column titles: grey fill, white-smoke bold text
func (pw *pdfWriter) header() {
	pdf := pw.pdf
	pdf.SetFont(pw.family, "B", 10)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(245, 245, 245)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)

	for i, h := range models.Headers {
		pdf.CellFormat(pdfColumns[i], pdfHeaderH, pw.tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

// row draws one body row on beige, wrapping long cells and starting a new
// page with a repeated header when it does not fit
func (pw *pdfWriter) row(cells []string) {
	pdf := pw.pdf
	pdf.SetFont(pw.family, "", 9)

	lines := make([][]string, len(cells))
	height := pdfLineHeight
	for i, cell := range cells {
		lines[i] = pw.wrap(cell, pdfColumns[i]-2)
		if h := float64(len(lines[i])) * pdfLineHeight; h > height {
			height = h
		}
	}

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+height > pageH-pdfMargin {
		pdf.AddPage()
		pw.header()
		pdf.SetFont(pw.family, "", 9)
	}

	pdf.SetFillColor(245, 245, 220)
	pdf.SetTextColor(0, 0, 0)

	x, y := pdf.GetXY()
	for i, cellLines := range lines {
		pdf.Rect(x, y, pdfColumns[i], height, "FD")
		for j, line := range cellLines {
			pdf.SetXY(x, y+float64(j)*pdfLineHeight)
			pdf.CellFormat(pdfColumns[i], pdfLineHeight, pw.tr(line), "", 0, "L", false, 0, "")
		}
		x += pdfColumns[i]
	}
	pdf.SetXY(pdfMargin, y+height)
}

// wrap splits text into lines no wider than width at the current font
func (pw *pdfWriter) wrap(text string, width float64) []string {
	var (
		lines []string
		line  []rune
	)
	for _, r := range text {
		candidate := string(line) + string(r)
		if len(line) > 0 && pw.pdf.GetStringWidth(pw.tr(candidate)) > width {
			lines = append(lines, string(line))
			line = []rune{r}
			continue
		}
		line = append(line, r)
	}
	if len(line) > 0 || len(lines) == 0 {
		lines = append(lines, string(line))
	}
	return lines
}

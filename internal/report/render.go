package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"consultantpdf/internal/cache"
)

// Document is everything needed to render one report.
type Document struct {
	Speciality string
	Plan       string
	Rows       []Row
}

// Title is the heading printed above the table.
func (d Document) Title() string {
	return fmt.Sprintf("List of %s Consultants", d.Speciality)
}

const (
	font       = "Helvetica"
	margin     = 0.5
	bodySize   = 9.0
	headerSize = 10.0
	lineHeight = 0.17
	padding    = 0.05
)

var (
	columns = []string{"ID", "Name", "Participating", "Speciality Descriptions", "Associated Hospitals"}
	widths  = []float64{0.7, 2.2, 0.8, 1.8, 4.5}

	headerFill = [3]int{128, 128, 128}
	headerText = [3]int{255, 255, 255}
	bodyFill   = [3]int{245, 245, 220}
	bodyText   = [3]int{0, 0, 0}
)

// span is a run of text in one weight.
type span struct {
	text string
	bold bool
}

type line []span

// renderer wraps fpdf with the table layout state.
type renderer struct {
	pdf *fpdf.Fpdf
	// top is the cursor position just below the latest table header.
	top float64
}

// Render writes doc as a PDF to w.
func Render(w io.Writer, doc Document) error {
	pdf := build(doc)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return pdf.Output(w)
}

func build(doc Document) *fpdf.Fpdf {
	pdf := fpdf.New("L", "in", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(doc.Title(), true)
	pdf.SetCreator("consultantpdf", true)

	r := &renderer{pdf: pdf}
	r.title(doc)
	r.header()
	for _, row := range doc.Rows {
		r.row(row)
	}
	return pdf
}

// RenderFile renders doc to path. The file is replaced atomically so a failed
// render never leaves a truncated PDF behind.
func RenderFile(path string, doc Document) error {
	var buf bytes.Buffer
	if err := Render(&buf, doc); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := cache.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (r *renderer) title(doc Document) {
	pdf := r.pdf
	pdf.AddPage()
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont(font, "B", 16)
	pdf.CellFormat(0, 0.35, toCP1252(doc.Title()), "", 1, "C", false, 0, "")
	pdf.SetFont(font, "", 12)
	pdf.CellFormat(0, 0.3, toCP1252("Plan: "+doc.Plan), "", 1, "C", false, 0, "")
	pdf.Ln(0.15)
}

func (r *renderer) header() {
	pdf := r.pdf
	pdf.SetFont(font, "B", headerSize)
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.SetTextColor(headerText[0], headerText[1], headerText[2])
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.01)

	h := lineHeight + 2*padding
	for i, col := range columns {
		pdf.CellFormat(widths[i], h, toCP1252(col), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(h)
	r.top = pdf.GetY()
}

// fit returns how many body lines fit between the cursor and the bottom margin.
func (r *renderer) fit() int {
	_, pageHeight := r.pdf.GetPageSize()
	return int((pageHeight - margin - r.pdf.GetY() - 2*padding + 1e-9) / lineHeight)
}

func (r *renderer) newPage() {
	r.pdf.AddPage()
	r.header()
}

func (r *renderer) row(row Row) {
	pdf := r.pdf

	cells := [][]line{
		r.wrap([]span{{text: row.ID}}, widths[0]),
		r.wrap([]span{{text: row.Name}}, widths[1]),
		r.wrap([]span{{text: row.Participating}}, widths[2]),
		r.wrap([]span{{text: row.SpecialityDescriptions}}, widths[3]),
		r.associations(row.Associations, widths[4]),
	}

	n := 1
	for _, c := range cells {
		n = max(n, len(c))
	}

	// Start a fresh page unless the row is already at the top of one.
	if r.fit() < n && pdf.GetY() > r.top+1e-9 {
		r.newPage()
	}

	// Rows taller than a page continue on the next one under a repeated header.
	for start := 0; start < n; {
		end := min(n, start+max(1, r.fit()))
		r.slice(cells, start, end)
		start = end
		if start < n {
			r.newPage()
		}
	}
}

// slice draws lines [start, end) of every cell as one band of the table.
func (r *renderer) slice(cells [][]line, start, end int) {
	pdf := r.pdf
	h := float64(end-start)*lineHeight + 2*padding

	x, y := pdf.GetXY()
	pdf.SetFillColor(bodyFill[0], bodyFill[1], bodyFill[2])
	pdf.SetTextColor(bodyText[0], bodyText[1], bodyText[2])
	for i, c := range cells {
		pdf.Rect(x, y, widths[i], h, "FD")
		for j := start; j < end && j < len(c); j++ {
			r.drawLine(c[j], x+padding, y+padding+float64(j-start)*lineHeight)
		}
		x += widths[i]
	}
	pdf.SetXY(margin, y+h)
}

func (r *renderer) associations(as []Association, width float64) []line {
	if len(as) == 0 {
		return r.wrap([]span{{text: "N/A"}}, width)
	}
	var out []line
	for _, a := range as {
		out = append(out, r.wrap([]span{{text: a.Label()}, {text: a.PhoneText(), bold: strings.TrimSpace(a.Phone) != ""}}, width)...)
	}
	return out
}

func (r *renderer) setWeight(bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	r.pdf.SetFont(font, style, bodySize)
}

func (r *renderer) width(s string, bold bool) float64 {
	r.setWeight(bold)
	return r.pdf.GetStringWidth(s)
}

// wrap breaks spans into lines no wider than width less padding. Words wider
// than a whole line are split by character.
func (r *renderer) wrap(spans []span, width float64) []line {
	avail := width - 2*padding
	var (
		out  []line
		cur  line
		used float64
	)
	flush := func() {
		out = append(out, cur)
		cur, used = nil, 0
	}
	add := func(word string, bold bool) {
		w := r.width(word, bold)
		if len(cur) > 0 {
			space := r.width(" ", false)
			if used+space+w > avail {
				flush()
			} else {
				cur = append(cur, span{text: " ", bold: false})
				used += space
			}
		}
		cur = append(cur, span{text: word, bold: bold})
		used += w
	}

	for _, s := range spans {
		for _, para := range strings.Split(toCP1252(s.text), "\n") {
			for _, word := range strings.Fields(para) {
				for _, piece := range r.splitWord(word, s.bold, avail) {
					add(piece, s.bold)
				}
			}
		}
	}
	if len(cur) > 0 || len(out) == 0 {
		flush()
	}
	return out
}

func (r *renderer) splitWord(word string, bold bool, avail float64) []string {
	if r.width(word, bold) <= avail {
		return []string{word}
	}
	var pieces []string
	start := 0
	for i := 1; i <= len(word); i++ {
		if r.width(word[start:i], bold) > avail && i-1 > start {
			pieces = append(pieces, word[start:i-1])
			start = i - 1
		}
	}
	return append(pieces, word[start:])
}

func (r *renderer) drawLine(ln line, x, top float64) {
	baseline := top + lineHeight*0.75
	for _, s := range ln {
		r.setWeight(s.bold)
		r.pdf.Text(x, baseline, s.text)
		x += r.pdf.GetStringWidth(s.text)
	}
}

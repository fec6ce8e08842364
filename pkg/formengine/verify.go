package formengine

import (
	"github.com/benjaminschreck/go-formengine/pkg/formengine/doctree"
)

// Leftover is a placeholder that survived rendering.
type Leftover struct {
	Location string `json:"location"`
	Placeholder
}

// Report is the outcome of a leftover-placeholder scan.
type Report struct {
	Paragraphs int        `json:"paragraphs_scanned"`
	Leftovers  []Leftover `json:"leftovers"`
}

// Clean reports whether no placeholders were found.
func (r *Report) Clean() bool {
	return len(r.Leftovers) == 0
}

// Names returns the distinct names of leftover placeholders, sorted.
func (r *Report) Names() []string {
	raws := make([]string, len(r.Leftovers))
	for i, l := range r.Leftovers {
		raws[i] = l.Raw
	}
	return placeholderNames(raws)
}

// Verify scans body paragraphs, table cells, headers and footers for
// placeholders.
func Verify(doc *doctree.Document) *Report {
	report := &Report{Leftovers: []Leftover{}}
	walkDocument(doc, func(loc string, p *doctree.Paragraph) {
		report.Paragraphs++
		for _, ph := range FindPlaceholders(p.Text()) {
			report.Leftovers = append(report.Leftovers, Leftover{Location: loc, Placeholder: ph})
		}
	})
	return report
}

// VerifyFile opens a DOCX file and verifies it.
func VerifyFile(path string) (*Report, error) {
	doc, err := doctree.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return Verify(doc), nil
}

// Placeholders returns the sorted placeholder names used anywhere in doc.
func Placeholders(doc *doctree.Document) []string {
	return Verify(doc).Names()
}

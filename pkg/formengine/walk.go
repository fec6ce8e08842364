package formengine

import (
	"fmt"

	"github.com/benjaminschreck/go-formengine/pkg/formengine/doctree"
)

// paragraphVisitor receives each text-bearing paragraph with a location path
// such as "body/p[2]" or "word/header1.xml/tbl[0]/tr[1]/tc[0]/p[0]".
type paragraphVisitor func(loc string, p *doctree.Paragraph)

// walkDocument visits body paragraphs, then body tables, then every header
// and every footer.
func walkDocument(doc *doctree.Document, visit paragraphVisitor) {
	walkBlock("body", doc.Paragraphs(), doc.Tables(), visit)
	for _, s := range doc.Headers() {
		walkBlock(s.Part, s.Paragraphs(), s.Tables(), visit)
	}
	for _, s := range doc.Footers() {
		walkBlock(s.Part, s.Paragraphs(), s.Tables(), visit)
	}
}

func walkBlock(prefix string, paras []*doctree.Paragraph, tables []*doctree.Table, visit paragraphVisitor) {
	for i, p := range paras {
		visit(fmt.Sprintf("%s/p[%d]", prefix, i), p)
	}
	for ti, t := range tables {
		for ri, row := range t.Rows() {
			for ci, cell := range row.Cells() {
				loc := fmt.Sprintf("%s/tbl[%d]/tr[%d]/tc[%d]", prefix, ti, ri, ci)
				walkBlock(loc, cell.Paragraphs(), cell.Tables(), visit)
			}
		}
	}
}

// bodyParagraphs returns the body paragraphs followed by all table paragraphs.
func bodyParagraphs(doc *doctree.Document) []*doctree.Paragraph {
	return append(doc.Paragraphs(), doctree.TableParagraphs(doc.Tables())...)
}

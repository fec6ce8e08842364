// Package docxtest builds small DOCX files in memory for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relHeader = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relFooter = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
)

// Builder accumulates body, header and footer content.
type Builder struct {
	body    []string
	headers [][]string
	footers [][]string
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// Paragraph adds a body paragraph holding one run.
func (b *Builder) Paragraph(text string) *Builder {
	b.body = append(b.body, P(text))
	return b
}

// Runs adds a body paragraph whose text is split across the given runs. The
// first run is bold with an explicit font.
func (b *Builder) Runs(texts ...string) *Builder {
	b.body = append(b.body, PRuns(texts...))
	return b
}

// Raw adds literal body XML.
func (b *Builder) Raw(fragment string) *Builder {
	b.body = append(b.body, fragment)
	return b
}

// Table adds a body table; each row lists its cell texts.
func (b *Builder) Table(rows ...[]string) *Builder {
	b.body = append(b.body, Tbl(rows...))
	return b
}

// Header adds a header part with one paragraph per text.
func (b *Builder) Header(texts ...string) *Builder {
	b.headers = append(b.headers, texts)
	return b
}

// Footer adds a footer part with one paragraph per text.
func (b *Builder) Footer(texts ...string) *Builder {
	b.footers = append(b.footers, texts)
	return b
}

// P renders a paragraph with one run.
func P(text string) string {
	return "<w:p>" + R(text) + "</w:p>"
}

// PRuns renders a paragraph split across runs.
func PRuns(texts ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	for i, t := range texts {
		if i == 0 {
			sb.WriteString(`<w:r><w:rPr><w:rFonts w:ascii="Times New Roman" w:hAnsi="Times New Roman"/><w:b/></w:rPr>` + T(t) + `</w:r>`)
			continue
		}
		sb.WriteString(R(t))
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

// R renders a run.
func R(text string) string {
	return "<w:r>" + T(text) + "</w:r>"
}

// T renders a w:t element.
func T(text string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(text))
	return `<w:t xml:space="preserve">` + buf.String() + `</w:t>`
}

// Tbl renders a table.
func Tbl(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr>`)
	for _, row := range rows {
		sb.WriteString("<w:tr>")
		for _, cell := range row {
			sb.WriteString(`<w:tc><w:tcPr><w:tcW w:w="2000" w:type="dxa"/></w:tcPr>` + P(cell) + "</w:tc>")
		}
		sb.WriteString("</w:tr>")
	}
	sb.WriteString("</w:tbl>")
	return sb.String()
}

// Bytes assembles the DOCX archive.
func (b *Builder) Bytes() []byte {
	var rels, refs, overrides strings.Builder
	parts := map[string]string{}
	var order []string

	add := func(kind string, i int, texts []string) {
		name := fmt.Sprintf("%s%d.xml", kind, i+1)
		id := fmt.Sprintf("rId%s%d", kind, i+1)
		root, relType, ref := "w:hdr", relHeader, "headerReference"
		if kind == "footer" {
			root, relType, ref = "w:ftr", relFooter, "footerReference"
		}
		var content strings.Builder
		for _, t := range texts {
			content.WriteString(P(t))
		}
		parts["word/"+name] = fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n"+
			`<%s xmlns:w="%s" xmlns:r="%s">%s</%s>`, root, nsW, nsR, content.String(), root)
		order = append(order, "word/"+name)
		fmt.Fprintf(&rels, `<Relationship Id="%s" Type="%s" Target="%s"/>`, id, relType, name)
		fmt.Fprintf(&refs, `<w:%s w:type="default" r:id="%s"/>`, ref, id)
		fmt.Fprintf(&overrides, `<Override PartName="/word/%s" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.%s+xml"/>`, name, kind)
	}
	for i, h := range b.headers {
		add("header", i, h)
	}
	for i, f := range b.footers {
		add("footer", i, f)
	}

	files := []struct{ name, body string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			overrides.String() + `</Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`},
		{"word/document.xml", fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n"+
			`<w:document xmlns:w="%s" xmlns:r="%s"><w:body>%s<w:sectPr>%s<w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`,
			nsW, nsR, strings.Join(b.body, ""), refs.String())},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + rels.String() + `</Relationships>`},
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for _, f := range files {
		fw, _ := w.Create(f.name)
		_, _ = fw.Write([]byte(f.body))
	}
	for _, name := range order {
		fw, _ := w.Create(name)
		_, _ = fw.Write([]byte(parts[name]))
	}
	_ = w.Close()
	return buf.Bytes()
}

// WriteFile stores the archive as dir/name and returns its path.
func (b *Builder) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

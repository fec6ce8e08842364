package doctree

import (
	"strings"
	"testing"
)

func paragraphFrom(t *testing.T, xml string) *Paragraph {
	t.Helper()
	doc, err := ParseString(`<w:body xmlns:w="urn:w">` + xml + `</w:body>`)
	if err != nil {
		t.Fatal(err)
	}
	return NewParagraph(doc.Root().Child("p"))
}

func TestParagraph_Text(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			name: "split runs",
			xml:  `<w:p><w:r><w:t>{{ten_</w:t></w:r><w:r><w:t>de_tai}}</w:t></w:r></w:p>`,
			want: "{{ten_de_tai}}",
		},
		{
			name: "hyperlink runs",
			xml:  `<w:p><w:r><w:t>see </w:t></w:r><w:hyperlink><w:r><w:t>link</w:t></w:r></w:hyperlink></w:p>`,
			want: "see link",
		},
		{
			name: "breaks and tabs",
			xml:  `<w:p><w:r><w:t>a</w:t><w:br/><w:t>b</w:t><w:tab/><w:t>c</w:t><w:br w:type="page"/></w:r></w:p>`,
			want: "a\nb\tc",
		},
		{
			name: "empty",
			xml:  `<w:p><w:pPr><w:jc w:val="center"/></w:pPr></w:p>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paragraphFrom(t, tt.xml).Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParagraph_SetAlignment(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			name: "creates properties",
			xml:  `<w:p><w:r><w:t>x</w:t></w:r></w:p>`,
			want: `<w:p><w:pPr><w:jc w:val="left"/></w:pPr><w:r><w:t>x</w:t></w:r></w:p>`,
		},
		{
			name: "replaces existing value",
			xml:  `<w:p><w:pPr><w:jc w:val="both"/></w:pPr></w:p>`,
			want: `<w:p><w:pPr><w:jc w:val="left"/></w:pPr></w:p>`,
		},
		{
			name: "keeps schema order",
			xml:  `<w:p><w:pPr><w:spacing w:after="0"/><w:rPr><w:b/></w:rPr></w:pPr></w:p>`,
			want: `<w:p><w:pPr><w:spacing w:after="0"/><w:jc w:val="left"/><w:rPr><w:b/></w:rPr></w:pPr></w:p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paragraphFrom(t, tt.xml)
			p.SetAlignment(AlignLeft)
			if got := string(p.Node().Marshal()); got != tt.want {
				t.Errorf("got\n%s\nwant\n%s", got, tt.want)
			}
			if p.Alignment() != AlignLeft {
				t.Errorf("Alignment() = %q", p.Alignment())
			}
		})
	}
}

func TestParagraph_RemoveSelf(t *testing.T) {
	doc, err := ParseString(`<w:tbl xmlns:w="urn:w"><w:tr><w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p><w:p><w:r><w:t>b</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`)
	if err != nil {
		t.Fatal(err)
	}
	cell := (&Table{node: doc.Root()}).Rows()[0].Cells()[0]

	paras := cell.Paragraphs()
	paras[0].RemoveSelf()
	if !paras[0].Detached() {
		t.Error("first paragraph should be detached")
	}

	paras[1].RemoveSelf()
	if paras[1].Detached() {
		t.Error("last paragraph of a cell must stay attached")
	}
	if got := cell.Text(); got != "" {
		t.Errorf("cell text = %q, want empty", got)
	}
}

func TestParagraph_RemoveEmptyRuns(t *testing.T) {
	p := paragraphFrom(t, `<w:p><w:r><w:t>x</w:t></w:r><w:r><w:rPr><w:b/></w:rPr></w:r><w:r><w:t></w:t></w:r><w:r><w:drawing/></w:r></w:p>`)
	if got := p.RemoveEmptyRuns(); got != 2 {
		t.Errorf("RemoveEmptyRuns() = %d, want 2", got)
	}
	if got := len(p.Runs()); got != 2 {
		t.Errorf("got %d runs, want 2", got)
	}
}

func TestRun_SetText(t *testing.T) {
	p := paragraphFrom(t, `<w:p><w:r><w:rPr><w:b/><w:rFonts w:ascii="Arial"/></w:rPr><w:t>old</w:t><w:drawing/></w:r></w:p>`)
	r := p.Runs()[0]
	r.SetText("a\nb\tc\x01")

	if got := r.Text(); got != "a\nb\tc" {
		t.Errorf("Text() = %q", got)
	}
	if !r.Bold() || r.Font() != "Arial" {
		t.Error("formatting lost")
	}
	xml := string(r.Node().Marshal())
	if !strings.Contains(xml, "<w:drawing/>") {
		t.Errorf("drawing removed: %s", xml)
	}
	if strings.Count(xml, "<w:br/>") != 1 || strings.Count(xml, "<w:tab/>") != 1 {
		t.Errorf("unexpected markup: %s", xml)
	}

	r.ClearText()
	if r.Text() != "" {
		t.Errorf("ClearText left %q", r.Text())
	}
}

func TestParagraphHasObjects(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want bool
	}{
		{"text only", `<w:p><w:r><w:t>a</w:t></w:r></w:p>`, false},
		{"empty", `<w:p/>`, false},
		{"drawing", `<w:p><w:r><w:drawing><wp:inline/></w:drawing></w:r></w:p>`, true},
		{"section break", `<w:p><w:pPr><w:sectPr/></w:pPr></w:p>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paragraphFrom(t, tt.xml)
			if got := p.HasObjects(); got != tt.want {
				t.Errorf("HasObjects() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParagraphFirstRun(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{"direct run after hyperlink", `<w:p><w:hyperlink><w:r><w:t>link</w:t></w:r></w:hyperlink><w:r><w:t>plain</w:t></w:r></w:p>`, "plain"},
		{"only nested runs", `<w:p><w:sdt><w:sdtContent><w:r><w:t>ctl</w:t></w:r></w:sdtContent></w:sdt></w:p>`, "ctl"},
		{"plain first", `<w:p><w:r><w:t>a</w:t></w:r><w:r><w:t>b</w:t></w:r></w:p>`, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := paragraphFrom(t, tt.xml).FirstRun()
			if r == nil {
				t.Fatal("FirstRun() = nil")
			}
			if got := r.Text(); got != tt.want {
				t.Errorf("FirstRun().Text() = %q, want %q", got, tt.want)
			}
		})
	}

	if r := paragraphFrom(t, `<w:p><w:pPr/></w:p>`).FirstRun(); r != nil {
		t.Errorf("FirstRun() on empty paragraph = %v, want nil", r)
	}
}

package doctree

import (
	"strings"
	"testing"
)

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "prefixes and declaration kept",
			input: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" + `<w:document xmlns:w="urn:w"><w:body><w:p><w:r><w:t>Hi</w:t></w:r></w:p></w:body></w:document>`,
			want:  `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" + `<w:document xmlns:w="urn:w"><w:body><w:p><w:r><w:t>Hi</w:t></w:r></w:p></w:body></w:document>`,
		},
		{
			name:  "empty elements self close",
			input: `<w:p xmlns:w="urn:w"><w:pPr></w:pPr><w:r><w:br/></w:r></w:p>`,
			want:  `<w:p xmlns:w="urn:w"><w:pPr/><w:r><w:br/></w:r></w:p>`,
		},
		{
			name:  "text and attributes escaped",
			input: `<a b="x &amp; &quot;y&quot;">1 &lt; 2 &amp; 3</a>`,
			want:  `<a b="x &amp; &quot;y&quot;">1 &lt; 2 &amp; 3</a>`,
		},
		{
			name:  "comments and unknown markup preserved",
			input: `<root xmlns:mc="urn:mc"><!-- note --><mc:AlternateContent><mc:Choice Requires="wps"/></mc:AlternateContent></root>`,
			want:  `<root xmlns:mc="urn:mc"><!-- note --><mc:AlternateContent><mc:Choice Requires="wps"/></mc:AlternateContent></root>`,
		},
		{
			name:  "unicode text",
			input: `<w:t xmlns:w="urn:w">Đề tài: nghiên cứu</w:t>`,
			want:  `<w:t xmlns:w="urn:w">Đề tài: nghiên cứu</w:t>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(tt.input)
			if err != nil {
				t.Fatalf("ParseString() error = %v", err)
			}
			if got := string(doc.Marshal()); got != tt.want {
				t.Errorf("Marshal() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed element", `<a><b></b>`},
		{"mismatched end", `<a></b>`},
		{"no root", `<?xml version="1.0"?>`},
		{"garbage", `not xml at all <`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseString(tt.input); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNode_DetachAndClone(t *testing.T) {
	doc, err := ParseString(`<w:body xmlns:w="urn:w"><w:p><w:r><w:t>a</w:t></w:r></w:p><w:p><w:r><w:t>b</w:t></w:r></w:p></w:body>`)
	if err != nil {
		t.Fatal(err)
	}
	body := doc.Root()
	paras := body.ChildrenNamed("p")
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}

	clone := paras[0].Clone()
	if clone.Parent() != nil {
		t.Error("clone should be detached")
	}

	paras[0].RemoveSelf()
	if paras[0].Parent() != nil {
		t.Error("removed node still has a parent")
	}
	if got := len(body.ChildrenNamed("p")); got != 1 {
		t.Errorf("got %d paragraphs after removal, want 1", got)
	}

	if err := body.InsertBefore(clone, paras[1]); err != nil {
		t.Fatalf("InsertBefore() error = %v", err)
	}
	got := string(body.Marshal())
	want := `<w:body xmlns:w="urn:w"><w:p><w:r><w:t>a</w:t></w:r></w:p><w:p><w:r><w:t>b</w:t></w:r></w:p></w:body>`
	if got != want {
		t.Errorf("after reinsertion got\n%s\nwant\n%s", got, want)
	}

	if err := body.InsertBefore(NewElement("w:p"), NewElement("w:p")); err == nil {
		t.Error("expected error for foreign reference node")
	}
}

func TestNode_SetAttr(t *testing.T) {
	n := NewElement("w:jc", Attribute("w:val", "center"))
	n.SetAttr("w:val", "left")
	n.SetAttr("w:other", "x")

	if v, _ := n.AttrValue("val"); v != "left" {
		t.Errorf("val = %q, want left", v)
	}
	if !strings.Contains(string(n.Marshal()), `w:other="x"`) {
		t.Errorf("missing added attribute: %s", n.Marshal())
	}
}

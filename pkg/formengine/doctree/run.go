package doctree

import "strings"

// Run wraps a w:r element.
type Run struct {
	node *Node
}

// Node returns the underlying element.
func (r *Run) Node() *Node {
	return r.node
}

// Text returns the run's text. Tabs map to "\t"; line breaks and carriage
// returns map to "\n". Page and column breaks carry no text.
func (r *Run) Text() string {
	var sb strings.Builder
	for _, c := range r.node.Children {
		switch {
		case c.Is("t"):
			for _, t := range c.Children {
				if t.Kind == TextNode {
					sb.WriteString(t.Data)
				}
			}
		case c.Is("tab"):
			sb.WriteByte('\t')
		case c.Is("br"):
			if typ, _ := c.AttrValue("type"); typ == "" || typ == "textWrapping" {
				sb.WriteByte('\n')
			}
		case c.Is("cr"):
			sb.WriteByte('\n')
		case c.Is("noBreakHyphen"):
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

func isTextChild(c *Node) bool {
	switch {
	case c.Is("t"), c.Is("tab"), c.Is("cr"), c.Is("noBreakHyphen"), c.Is("softHyphen"):
		return true
	case c.Is("br"):
		typ, _ := c.AttrValue("type")
		return typ == "" || typ == "textWrapping"
	}
	return false
}

// ClearText removes the run's text content. Formatting, drawings and page
// breaks stay.
func (r *Run) ClearText() {
	for _, c := range append([]*Node(nil), r.node.Children...) {
		if isTextChild(c) {
			r.node.RemoveChild(c)
		}
	}
}

// SetText replaces the run's text. "\n" becomes a line break and "\t" a tab.
func (r *Run) SetText(s string) {
	r.ClearText()
	r.AddText(s)
}

// AddText appends text to the run.
func (r *Run) AddText(s string) {
	var seg strings.Builder
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		t := NewElement("w:t", Attribute("xml:space", "preserve"))
		t.AppendChild(NewText(seg.String()))
		r.node.AppendChild(t)
		seg.Reset()
	}

	for _, c := range s {
		switch {
		case c == '\n':
			flush()
			r.AddBreak()
		case c == '\t':
			flush()
			r.node.AppendChild(NewElement("w:tab"))
		case c < 0x20 || c == 0xFFFE || c == 0xFFFF:
			// not representable in XML 1.0
		default:
			seg.WriteRune(c)
		}
	}
	flush()
}

// AddBreak appends a line break.
func (r *Run) AddBreak() {
	r.node.AppendChild(NewElement("w:br"))
}

// Properties returns the w:rPr element or nil.
func (r *Run) Properties() *Node {
	return r.node.Child("rPr")
}

// Bold reports whether the run is explicitly bold.
func (r *Run) Bold() bool {
	rPr := r.Properties()
	if rPr == nil {
		return false
	}
	b := rPr.Child("b")
	if b == nil {
		return false
	}
	v, ok := b.AttrValue("val")
	return !ok || (v != "0" && v != "false" && v != "off")
}

// Font returns the run's ASCII font name, or "" when inherited.
func (r *Run) Font() string {
	rPr := r.Properties()
	if rPr == nil {
		return ""
	}
	fonts := rPr.Child("rFonts")
	if fonts == nil {
		return ""
	}
	v, _ := fonts.AttrValue("ascii")
	return v
}

// IsEmpty reports whether the run holds nothing besides its properties.
func (r *Run) IsEmpty() bool {
	for _, c := range r.node.Children {
		switch {
		case c.Kind == TextNode && strings.TrimSpace(c.Data) == "":
		case c.Is("rPr"):
		case c.Is("t") && len(c.Children) == 0:
		default:
			return false
		}
	}
	return true
}

package doctree

import "strings"

// Alignment values for w:jc.
const (
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
	AlignJustify = "both"
)

// runContainers are inline elements whose runs belong to the paragraph text.
var runContainers = map[string]bool{
	"hyperlink":  true,
	"ins":        true,
	"smartTag":   true,
	"fldSimple":  true,
	"customXml":  true,
	"sdt":        true,
	"sdtContent": true,
	"dir":        true,
	"bdo":        true,
}

// pPr children that must come after w:jc.
var afterJc = map[string]bool{
	"textDirection":    true,
	"textAlignment":    true,
	"textboxTightWrap": true,
	"outlineLvl":       true,
	"divId":            true,
	"cnfStyle":         true,
	"rPr":              true,
	"sectPr":           true,
	"pPrChange":        true,
}

// Paragraph wraps a w:p element.
type Paragraph struct {
	node *Node
}

// NewParagraph wraps an existing w:p node.
func NewParagraph(n *Node) *Paragraph {
	return &Paragraph{node: n}
}

// Node returns the underlying element.
func (p *Paragraph) Node() *Node {
	return p.node
}

// Runs returns the paragraph's runs in document order, including runs nested
// in hyperlinks, insertions and inline content controls.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	collectRuns(p.node, &runs)
	return runs
}

// FirstRun returns the first run that is a direct child of the paragraph, or
// the first nested run when there is none. It returns nil for a paragraph
// without runs.
func (p *Paragraph) FirstRun() *Run {
	for _, c := range p.node.Children {
		if c.Is("r") {
			return &Run{node: c}
		}
	}
	if runs := p.Runs(); len(runs) > 0 {
		return runs[0]
	}
	return nil
}

func collectRuns(n *Node, runs *[]*Run) {
	for _, c := range n.Children {
		switch {
		case c.Is("r"):
			*runs = append(*runs, &Run{node: c})
		case c.Kind == ElementNode && (c.Name.Space == "w" || c.Name.Space == "") && runContainers[c.Name.Local]:
			collectRuns(c, runs)
		}
	}
}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

// AddRun appends an empty run to the paragraph.
func (p *Paragraph) AddRun() *Run {
	r := NewElement("w:r")
	p.node.AppendChild(r)
	return &Run{node: r}
}

// Properties returns the w:pPr element or nil.
func (p *Paragraph) Properties() *Node {
	return p.node.Child("pPr")
}

func (p *Paragraph) ensureProperties() *Node {
	if pPr := p.Properties(); pPr != nil {
		return pPr
	}
	pPr := NewElement("w:pPr")
	p.node.InsertAt(0, pPr)
	return pPr
}

// Alignment returns the paragraph's explicit w:jc value, or "" when inherited.
func (p *Paragraph) Alignment() string {
	pPr := p.Properties()
	if pPr == nil {
		return ""
	}
	jc := pPr.Child("jc")
	if jc == nil {
		return ""
	}
	v, _ := jc.AttrValue("val")
	return v
}

// SetAlignment sets an explicit w:jc value, keeping schema order in w:pPr.
func (p *Paragraph) SetAlignment(val string) {
	pPr := p.ensureProperties()
	if jc := pPr.Child("jc"); jc != nil {
		jc.SetAttr("w:val", val)
		return
	}

	jc := NewElement("w:jc", Attribute("w:val", val))
	for i, c := range pPr.Children {
		if c.Kind == ElementNode && afterJc[c.Name.Local] {
			pPr.InsertAt(i, jc)
			return
		}
	}
	pPr.AppendChild(jc)
}

// RemoveEmptyRuns drops runs that carry nothing but formatting and reports how
// many were removed.
func (p *Paragraph) RemoveEmptyRuns() int {
	removed := 0
	for _, r := range p.Runs() {
		if r.IsEmpty() {
			r.node.RemoveSelf()
			removed++
		}
	}
	return removed
}

// Clear removes all paragraph content except its properties.
func (p *Paragraph) Clear() {
	for _, c := range append([]*Node(nil), p.node.Children...) {
		if !c.Is("pPr") {
			p.node.RemoveChild(c)
		}
	}
}

// RemoveSelf detaches the paragraph from its body, cell or story. A table cell
// must keep at least one paragraph, so the last paragraph of a cell is
// emptied instead.
func (p *Paragraph) RemoveSelf() {
	parent := p.node.Parent()
	if parent == nil {
		return
	}
	if parent.Is("tc") && len(parent.ChildrenNamed("p")) == 1 {
		p.Clear()
		return
	}
	p.node.RemoveSelf()
}

// Detached reports whether the paragraph has been removed from its parent.
func (p *Paragraph) Detached() bool {
	return p.node.Parent() == nil
}

// objectElements are paragraph contents that carry no text but must survive
// removal of blank paragraphs.
var objectElements = map[string]bool{"drawing": true, "pict": true, "object": true, "sectPr": true}

// HasObjects reports whether the paragraph holds a drawing, an embedded
// object or a section break.
func (p *Paragraph) HasObjects() bool {
	found := false
	p.node.Walk(func(n *Node) bool {
		if found {
			return false
		}
		if n.Kind == ElementNode && objectElements[n.Name.Local] && (n.Name.Space == "w" || n.Name.Space == "") {
			found = true
		}
		return !found
	})
	return found
}

package doctree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// NodeKind identifies the kind of a Node.
type NodeKind int

const (
	DocumentNode NodeKind = iota
	ElementNode
	TextNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

// Node is one item of a parsed XML part. Element names and attribute names
// keep their literal prefix in Name.Space.
type Node struct {
	Kind     NodeKind
	Name     xml.Name
	Attr     []xml.Attr
	Data     string
	Children []*Node

	parent *Node
}

// NewElement creates a detached element. The name may carry a prefix
// ("w:t").
func NewElement(qname string, attrs ...xml.Attr) *Node {
	return &Node{Kind: ElementNode, Name: splitName(qname), Attr: attrs}
}

// NewText creates a detached character data node.
func NewText(s string) *Node {
	return &Node{Kind: TextNode, Data: s}
}

// Attribute builds an attribute with a possibly prefixed name.
func Attribute(qname, value string) xml.Attr {
	return xml.Attr{Name: splitName(qname), Value: value}
}

func splitName(qname string) xml.Name {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return xml.Name{Space: qname[:i], Local: qname[i+1:]}
	}
	return xml.Name{Local: qname}
}

// Parent returns the node's parent or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// Is reports whether n is a WordprocessingML element with the given local name.
func (n *Node) Is(local string) bool {
	return n != nil && n.Kind == ElementNode && n.Name.Local == local &&
		(n.Name.Space == "w" || n.Name.Space == "")
}

// AttrValue returns the value of the first attribute with the given local name.
func (n *Node) AttrValue(local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == local && a.Name.Space != "xmlns" {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing any attribute with the same qualified name.
func (n *Node) SetAttr(qname, value string) {
	name := splitName(qname)
	for i := range n.Attr {
		if n.Attr[i].Name == name {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, xml.Attr{Name: name, Value: value})
}

// Elements returns the element children of n.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first element child with the given local name.
func (n *Node) Child(local string) *Node {
	for _, c := range n.Children {
		if c.Is(local) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all element children with the given local name.
func (n *Node) ChildrenNamed(local string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Is(local) {
			out = append(out, c)
		}
	}
	return out
}

// Root returns the document element of a document node.
func (n *Node) Root() *Node {
	if n.Kind != DocumentNode {
		return n
	}
	for _, c := range n.Children {
		if c.Kind == ElementNode {
			return c
		}
	}
	return nil
}

// AppendChild attaches c as the last child of n, detaching it first if needed.
func (n *Node) AppendChild(c *Node) {
	c.detach()
	c.parent = n
	n.Children = append(n.Children, c)
}

// InsertAt attaches c at position i among n's children.
func (n *Node) InsertAt(i int, c *Node) {
	c.detach()
	if i < 0 {
		i = 0
	}
	if i > len(n.Children) {
		i = len(n.Children)
	}
	c.parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = c
}

// InsertBefore attaches c immediately before ref, which must be a child of n.
func (n *Node) InsertBefore(c, ref *Node) error {
	i := n.indexOf(ref)
	if i < 0 {
		return errors.New("reference node is not a child")
	}
	n.InsertAt(i, c)
	return nil
}

// RemoveChild detaches c from n. It reports whether c was a child of n.
func (n *Node) RemoveChild(c *Node) bool {
	i := n.indexOf(c)
	if i < 0 {
		return false
	}
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	c.parent = nil
	return true
}

// RemoveSelf detaches n from its parent. Detached nodes are left unchanged.
func (n *Node) RemoveSelf() {
	n.detach()
}

func (n *Node) detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

func (n *Node) indexOf(c *Node) int {
	for i, x := range n.Children {
		if x == c {
			return i
		}
	}
	return -1
}

// Clone returns a deep, detached copy of n.
func (n *Node) Clone() *Node {
	c := &Node{Kind: n.Kind, Name: n.Name, Data: n.Data}
	if n.Attr != nil {
		c.Attr = append([]xml.Attr(nil), n.Attr...)
	}
	for _, child := range n.Children {
		cc := child.Clone()
		cc.parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Parse reads one XML part into a document node. Prefixes are kept as written.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	doc := &Node{Kind: DocumentNode}
	stack := []*Node{doc}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Node{Kind: ElementNode, Name: t.Name, Attr: append([]xml.Attr(nil), t.Attr...), parent: top}
			top.Children = append(top.Children, el)
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 1 || top.Name != t.Name {
				return nil, fmt.Errorf("failed to parse XML: unexpected end element %s", qualified(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.Children = append(top.Children, &Node{Kind: TextNode, Data: string(t), parent: top})
		case xml.Comment:
			top.Children = append(top.Children, &Node{Kind: CommentNode, Data: string(t), parent: top})
		case xml.ProcInst:
			top.Children = append(top.Children, &Node{Kind: ProcInstNode, Name: xml.Name{Local: t.Target}, Data: string(t.Inst), parent: top})
		case xml.Directive:
			top.Children = append(top.Children, &Node{Kind: DirectiveNode, Data: string(t), parent: top})
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("failed to parse XML: unclosed element %s", qualified(stack[len(stack)-1].Name))
	}
	if doc.Root() == nil {
		return nil, errors.New("failed to parse XML: no root element")
	}
	return doc, nil
}

// ParseString is Parse for in-memory XML.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// Marshal serializes n and its descendants.
func (n *Node) Marshal() []byte {
	var buf bytes.Buffer
	n.write(&buf)
	return buf.Bytes()
}

func (n *Node) write(buf *bytes.Buffer) {
	switch n.Kind {
	case DocumentNode:
		for _, c := range n.Children {
			c.write(buf)
		}
	case TextNode:
		escapeText(buf, n.Data)
	case CommentNode:
		buf.WriteString("<!--")
		buf.WriteString(n.Data)
		buf.WriteString("-->")
	case ProcInstNode:
		buf.WriteString("<?")
		buf.WriteString(n.Name.Local)
		if n.Data != "" {
			buf.WriteByte(' ')
			buf.WriteString(n.Data)
		}
		buf.WriteString("?>")
	case DirectiveNode:
		buf.WriteString("<!")
		buf.WriteString(n.Data)
		buf.WriteByte('>')
	case ElementNode:
		buf.WriteByte('<')
		buf.WriteString(qualified(n.Name))
		for _, a := range n.Attr {
			buf.WriteByte(' ')
			buf.WriteString(qualified(a.Name))
			buf.WriteString(`="`)
			escapeAttr(buf, a.Value)
			buf.WriteByte('"')
		}
		if len(n.Children) == 0 {
			buf.WriteString("/>")
			return
		}
		buf.WriteByte('>')
		for _, c := range n.Children {
			c.write(buf)
		}
		buf.WriteString("</")
		buf.WriteString(qualified(n.Name))
		buf.WriteByte('>')
	}
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func escapeText(buf *bytes.Buffer, s string) {
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
}

func escapeAttr(buf *bytes.Buffer, s string) {
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '"':
			buf.WriteString("&quot;")
		case '\n':
			buf.WriteString("&#xA;")
		case '\r':
			buf.WriteString("&#xD;")
		case '\t':
			buf.WriteString("&#x9;")
		default:
			buf.WriteRune(r)
		}
	}
}

var errDetached = errors.New("node is detached")

package doctree

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

const (
	relTypeHeader = "/header"
	relTypeFooter = "/footer"
)

// Document is a DOCX package with its main part and the header and footer
// parts referenced from its sections parsed into trees.
type Document struct {
	pkg     *Package
	main    *Node
	rels    map[string]string
	stories map[string]*Story
}

// Open parses an in-memory DOCX file.
func Open(data []byte) (*Document, error) {
	pkg, err := OpenPackageBytes(data)
	if err != nil {
		return nil, err
	}
	return FromPackage(pkg)
}

// OpenFile parses a DOCX file from disk.
func OpenFile(name string) (*Document, error) {
	pkg, err := OpenPackageFile(name)
	if err != nil {
		return nil, err
	}
	return FromPackage(pkg)
}

// FromPackage parses the text-bearing parts of pkg.
func FromPackage(pkg *Package) (*Document, error) {
	content, err := pkg.Part(MainPart)
	if err != nil {
		return nil, err
	}
	main, err := Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MainPart, err)
	}
	if root := main.Root(); !root.Is("document") || root.Child("body") == nil {
		return nil, fmt.Errorf("%s: missing document body", MainPart)
	}

	rels, err := pkg.Relationships(MainPart)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		pkg:     pkg,
		main:    main,
		rels:    make(map[string]string),
		stories: make(map[string]*Story),
	}

	for _, rel := range rels {
		kind := ""
		switch {
		case strings.HasSuffix(rel.Type, relTypeHeader):
			kind = "header"
		case strings.HasSuffix(rel.Type, relTypeFooter):
			kind = "footer"
		default:
			continue
		}
		if rel.TargetMode == "External" {
			continue
		}

		part := ResolveTarget(MainPart, rel.Target)
		doc.rels[rel.ID] = part
		if _, done := doc.stories[part]; done || !pkg.Has(part) {
			continue
		}

		data, err := pkg.Part(part)
		if err != nil {
			return nil, err
		}
		tree, err := Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", part, err)
		}
		doc.stories[part] = &Story{Part: part, Kind: kind, tree: tree}
	}

	return doc, nil
}

// Package returns the underlying package.
func (d *Document) Package() *Package {
	return d.pkg
}

// Body returns the document body.
func (d *Document) Body() *Body {
	return &Body{node: d.main.Root().Child("body")}
}

// Paragraphs returns the top-level body paragraphs.
func (d *Document) Paragraphs() []*Paragraph {
	return d.Body().Paragraphs()
}

// Tables returns the top-level body tables.
func (d *Document) Tables() []*Table {
	return d.Body().Tables()
}

// Sections returns the document's sections in order. A section break stored
// in a paragraph ends a section; the body-level sectPr describes the last one.
func (d *Document) Sections() []*Section {
	body := d.Body().node
	var props []*Node
	for _, el := range body.Elements() {
		switch {
		case el.Is("p"):
			if pPr := el.Child("pPr"); pPr != nil {
				if s := pPr.Child("sectPr"); s != nil {
					props = append(props, s)
				}
			}
		case el.Is("sectPr"):
			props = append(props, el)
		}
	}

	sections := make([]*Section, 0, len(props))
	for _, p := range props {
		s := &Section{props: p}
		for _, ref := range p.ChildrenNamed("headerReference") {
			if story := d.storyFor(ref); story != nil {
				s.Headers = append(s.Headers, story)
			}
		}
		for _, ref := range p.ChildrenNamed("footerReference") {
			if story := d.storyFor(ref); story != nil {
				s.Footers = append(s.Footers, story)
			}
		}
		sections = append(sections, s)
	}
	return sections
}

func (d *Document) storyFor(ref *Node) *Story {
	id, ok := ref.AttrValue("id")
	if !ok {
		return nil
	}
	return d.stories[d.rels[id]]
}

// Headers returns every distinct header story referenced by any section, in
// first-reference order.
func (d *Document) Headers() []*Story {
	return d.distinct(func(s *Section) []*Story { return s.Headers })
}

// Footers returns every distinct footer story referenced by any section, in
// first-reference order.
func (d *Document) Footers() []*Story {
	return d.distinct(func(s *Section) []*Story { return s.Footers })
}

func (d *Document) distinct(pick func(*Section) []*Story) []*Story {
	seen := make(map[*Story]bool)
	var out []*Story
	for _, s := range d.Sections() {
		for _, story := range pick(s) {
			if !seen[story] {
				seen[story] = true
				out = append(out, story)
			}
		}
	}
	return out
}

// WriteTo serializes the document as a DOCX archive.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if err := d.pkg.SetPart(MainPart, d.main.Marshal()); err != nil {
		return 0, err
	}
	for name, story := range d.stories {
		if err := d.pkg.SetPart(name, story.tree.Marshal()); err != nil {
			return 0, err
		}
	}
	return d.pkg.WriteTo(w)
}

// Bytes serializes the document as a DOCX archive.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Body is the main story of a document.
type Body struct {
	node *Node
}

// Paragraphs returns the body's top-level paragraphs.
func (b *Body) Paragraphs() []*Paragraph { return blockParagraphs(b.node) }

// Tables returns the body's top-level tables.
func (b *Body) Tables() []*Table { return blockTables(b.node) }

// Section groups the headers and footers that apply to a range of the body.
type Section struct {
	Headers []*Story
	Footers []*Story

	props *Node
}

// Properties returns the section's sectPr element.
func (s *Section) Properties() *Node {
	return s.props
}

// HeaderParagraphs returns the top-level paragraphs of all the section's headers.
func (s *Section) HeaderParagraphs() []*Paragraph {
	var out []*Paragraph
	for _, h := range s.Headers {
		out = append(out, h.Paragraphs()...)
	}
	return out
}

// FooterParagraphs returns the top-level paragraphs of all the section's footers.
func (s *Section) FooterParagraphs() []*Paragraph {
	var out []*Paragraph
	for _, f := range s.Footers {
		out = append(out, f.Paragraphs()...)
	}
	return out
}

// Story is a header or footer part.
type Story struct {
	Part string
	Kind string

	tree *Node
}

// Paragraphs returns the story's top-level paragraphs.
func (s *Story) Paragraphs() []*Paragraph { return blockParagraphs(s.tree.Root()) }

// Tables returns the story's top-level tables.
func (s *Story) Tables() []*Table { return blockTables(s.tree.Root()) }

// blockParagraphs collects paragraphs that are direct block content of n,
// looking through block-level content controls.
func blockParagraphs(n *Node) []*Paragraph {
	var out []*Paragraph
	for _, el := range blockContent(n) {
		if el.Is("p") {
			out = append(out, &Paragraph{node: el})
		}
	}
	return out
}

func blockTables(n *Node) []*Table {
	var out []*Table
	for _, el := range blockContent(n) {
		if el.Is("tbl") {
			out = append(out, &Table{node: el})
		}
	}
	return out
}

func blockContent(n *Node) []*Node {
	var out []*Node
	for _, el := range n.Elements() {
		switch {
		case el.Is("sdt"):
			if content := el.Child("sdtContent"); content != nil {
				out = append(out, blockContent(content)...)
			}
		case el.Is("customXml"):
			out = append(out, blockContent(el)...)
		default:
			out = append(out, el)
		}
	}
	return out
}

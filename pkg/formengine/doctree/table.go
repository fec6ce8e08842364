package doctree

import "strings"

// Table wraps a w:tbl element.
type Table struct {
	node *Node
}

// Node returns the underlying element.
func (t *Table) Node() *Node {
	return t.node
}

// Rows returns the table rows.
func (t *Table) Rows() []*Row {
	var rows []*Row
	for _, el := range t.node.ChildrenNamed("tr") {
		rows = append(rows, &Row{node: el})
	}
	return rows
}

// Row wraps a w:tr element.
type Row struct {
	node *Node
}

// Node returns the underlying element.
func (r *Row) Node() *Node {
	return r.node
}

// Cells returns the row's cells.
func (r *Row) Cells() []*Cell {
	var cells []*Cell
	for _, el := range blockContentCells(r.node) {
		cells = append(cells, &Cell{node: el})
	}
	return cells
}

func blockContentCells(n *Node) []*Node {
	var out []*Node
	for _, el := range n.Elements() {
		switch {
		case el.Is("tc"):
			out = append(out, el)
		case el.Is("sdt"):
			if content := el.Child("sdtContent"); content != nil {
				out = append(out, blockContentCells(content)...)
			}
		}
	}
	return out
}

// Text returns the cell texts joined by tabs.
func (r *Row) Text() string {
	cells := r.Cells()
	texts := make([]string, len(cells))
	for i, c := range cells {
		texts[i] = c.Text()
	}
	return strings.Join(texts, "\t")
}

// Paragraphs returns every paragraph in the row's cells, nested tables included.
func (r *Row) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, c := range r.Cells() {
		out = append(out, c.AllParagraphs()...)
	}
	return out
}

// Clone returns a detached deep copy of the row.
func (r *Row) Clone() *Row {
	return &Row{node: r.node.Clone()}
}

// InsertBefore places row immediately before r in r's table.
func (r *Row) InsertBefore(row *Row) error {
	parent := r.node.Parent()
	if parent == nil {
		return errDetached
	}
	return parent.InsertBefore(row.node, r.node)
}

// RemoveSelf detaches the row from its table.
func (r *Row) RemoveSelf() {
	r.node.RemoveSelf()
}

// Cell wraps a w:tc element.
type Cell struct {
	node *Node
}

// Node returns the underlying element.
func (c *Cell) Node() *Node {
	return c.node
}

// Paragraphs returns the cell's own paragraphs.
func (c *Cell) Paragraphs() []*Paragraph { return blockParagraphs(c.node) }

// Tables returns tables nested directly in the cell.
func (c *Cell) Tables() []*Table { return blockTables(c.node) }

// AllParagraphs returns the cell's paragraphs and those of nested tables in
// document order.
func (c *Cell) AllParagraphs() []*Paragraph {
	var out []*Paragraph
	for _, el := range blockContent(c.node) {
		switch {
		case el.Is("p"):
			out = append(out, &Paragraph{node: el})
		case el.Is("tbl"):
			out = append(out, TableParagraphs([]*Table{{node: el}})...)
		}
	}
	return out
}

// Text returns the paragraph texts joined by newlines.
func (c *Cell) Text() string {
	paras := c.Paragraphs()
	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = p.Text()
	}
	return strings.Join(texts, "\n")
}

// TableParagraphs returns every paragraph of every cell of the given tables in
// document order, nested tables included.
func TableParagraphs(tables []*Table) []*Paragraph {
	var out []*Paragraph
	for _, t := range tables {
		for _, row := range t.Rows() {
			out = append(out, row.Paragraphs()...)
		}
	}
	return out
}

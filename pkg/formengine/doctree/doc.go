// Package doctree provides a mutable tree view over the WordprocessingML parts
// of a DOCX package.
//
// DOCX files are ZIP archives. The parts that carry text (word/document.xml and
// the header and footer parts referenced from section properties) are parsed
// into a generic, token-preserving element tree. Everything the tree does not
// understand is kept verbatim, so a document that is opened and saved without
// modification serializes back to equivalent XML.
//
// # Structure Organization
//
//   - node.go: the generic element tree (parse, serialize, detach, clone)
//   - package.go: ZIP package access and relationships
//   - document.go: Document, Body, Section and Story (header/footer)
//   - paragraph.go: Paragraph facade (runs, text, alignment)
//   - run.go: Run facade (text, breaks, formatting)
//   - table.go: Table, Row and Cell facades
//
// # Key Concepts
//
// Facades (Paragraph, Run, Table, Row, Cell) are thin wrappers around *Node
// values. Creating a facade is cheap and never copies; all mutations go
// straight to the underlying tree.
//
// Every node keeps a reference to its parent. The reference exists for
// detachment only (RemoveSelf); traversal always goes top-down.
//
// # XML Namespaces
//
// Element and attribute names keep their literal prefix (w:, r:, wp:, ...).
// WordprocessingML elements are recognized by local name with the "w" prefix
// or no prefix at all.
package doctree

package forms

import (
	"fmt"
	"slices"
	"strings"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/formengine/doctree"
)

// OutcomeCleanup removes the body paragraphs of the decision branch that was
// not taken. Templates carry both branches separated by a line holding only
// Separator.
type OutcomeCleanup struct {
	Separator string
	// ApprovalOnly paragraphs are removed when the outcome is a rejection.
	ApprovalOnly []string
	// RejectionOnly paragraphs are removed when the outcome is an approval.
	RejectionOnly []string
	// DropBlank also removes paragraphs left blank or holding only a stray
	// punctuation mark. The first paragraph is always kept.
	DropBlank bool
}

// FacultyMinutesCleanup handles the faculty meeting minutes (3b).
func FacultyMinutesCleanup() *OutcomeCleanup {
	return &OutcomeCleanup{
		Separator:     "Hoặc",
		ApprovalOnly:  []string{"Đề nghị Nhà trường cho phép thực hiện", "chỉnh sửa, bổ sung"},
		RejectionOnly: []string{"Đề nghị Nhà trường không cho phép thực hiện", "không phù hợp sau:"},
	}
}

// CouncilMinutesCleanup handles the advisory council minutes (6b).
func CouncilMinutesCleanup() *OutcomeCleanup {
	return &OutcomeCleanup{
		Separator:     "Hoặc",
		ApprovalOnly:  []string{"Đề nghị Nhà trường cho phép thực hiện", "nội dung chỉnh sửa", "nội dung bổ sung"},
		RejectionOnly: []string{"Đề nghị Nhà trường không cho phép thực hiện", "nội dung không phù hợp sau"},
		DropBlank:     true,
	}
}

var strayMarks = map[string]bool{"": true, ".": true, ",": true, "_": true}

// Process implements formengine.PostProcessor.
func (o *OutcomeCleanup) Process(doc *doctree.Document, ctx formengine.Context) error {
	approved, err := Approved(ctx)
	if err != nil {
		return fmt.Errorf("outcome flag: %w", err)
	}
	drop := o.ApprovalOnly
	if approved {
		drop = o.RejectionOnly
	}

	for _, p := range doc.Paragraphs() {
		text := strings.TrimSpace(p.Text())
		if (o.Separator != "" && text == o.Separator) || containsAny(text, drop) {
			p.RemoveSelf()
		}
	}

	if o.DropBlank {
		for i, p := range doc.Paragraphs() {
			if i > 0 && strayMarks[strings.TrimSpace(p.Text())] && !p.HasObjects() {
				p.RemoveSelf()
			}
		}
	}
	return nil
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// RowInjection repeats a table row once per item of a list. The template row
// is the first row, in any table of the body, that holds a placeholder for one
// of Columns. Each copy is filled from its item and the template row is then
// removed.
type RowInjection struct {
	// Key names the context list holding the items.
	Key     string   `json:"key"`
	Columns []string `json:"columns"`
	// CountKey, when set, receives the number of items during Prepare.
	CountKey string `json:"count_key,omitempty"`
}

// Items decodes the item list of ctx. Each item is a map whose values are
// converted to strings. present is false when the key is absent.
func (ri *RowInjection) Items(ctx formengine.Context) (items []formengine.Context, present bool, err error) {
	raw, ok := ctx[ri.Key]
	if !ok || raw == nil {
		return nil, false, nil
	}
	var rows []map[string]string
	if err := decode(raw, &rows); err != nil {
		return nil, true, fmt.Errorf("%s must be a list of rows: %w", ri.Key, err)
	}
	items = make([]formengine.Context, len(rows))
	for i, row := range rows {
		item := make(formengine.Context, len(row))
		for k, v := range row {
			item[k] = v
		}
		items[i] = item
	}
	return items, true, nil
}

// Process implements formengine.PostProcessor. A context without the list
// leaves the document untouched.
func (ri *RowInjection) Process(doc *doctree.Document, ctx formengine.Context) error {
	items, present, err := ri.Items(ctx)
	if err != nil || !present {
		return err
	}

	row := ri.templateRow(doc.Tables())
	if row == nil {
		return fmt.Errorf("no table row holds placeholders for %s", ri.Key)
	}

	for _, item := range items {
		clone := row.Clone()
		for _, p := range clone.Paragraphs() {
			formengine.Substitute(p, item)
		}
		if err := row.InsertBefore(clone); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	row.RemoveSelf()
	return nil
}

func (ri *RowInjection) templateRow(tables []*doctree.Table) *doctree.Row {
	for _, t := range tables {
		for _, row := range t.Rows() {
			if ri.matches(row) {
				return row
			}
			for _, c := range row.Cells() {
				if nested := ri.templateRow(c.Tables()); nested != nil {
					return nested
				}
			}
		}
	}
	return nil
}

// matches looks at the row's own cell paragraphs; rows of nested tables are
// candidates of their own.
func (ri *RowInjection) matches(row *doctree.Row) bool {
	for _, c := range row.Cells() {
		for _, p := range c.Paragraphs() {
			for _, ph := range formengine.FindPlaceholders(p.Text()) {
				if slices.Contains(ri.Columns, ph.Name) {
					return true
				}
			}
		}
	}
	return false
}

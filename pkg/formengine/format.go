package formengine

import (
	"strings"

	"github.com/benjaminschreck/go-formengine/pkg/formengine/doctree"
)

// listMarkers start paragraphs that hold list content.
var listMarkers = []string{"-", "•"}

// isListParagraph reports whether text looks like list content: it starts with
// a list marker or mentions one of the known list variables.
func isListParagraph(text string, listVars []string) bool {
	text = strings.TrimSpace(text)
	for _, v := range listVars {
		if v != "" && strings.Contains(text, v) {
			return true
		}
	}
	for _, m := range listMarkers {
		if strings.HasPrefix(text, m) {
			return true
		}
	}
	return false
}

// AlignListParagraphs forces left alignment on list paragraphs and returns how
// many were changed.
func AlignListParagraphs(paras []*doctree.Paragraph, listVars []string) int {
	n := 0
	for _, p := range paras {
		if !isListParagraph(p.Text(), listVars) {
			continue
		}
		if p.Alignment() != doctree.AlignLeft {
			p.SetAlignment(doctree.AlignLeft)
			n++
		}
	}
	return n
}

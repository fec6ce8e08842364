package formengine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/benjaminschreck/go-formengine/pkg/formengine/doctree"
)

// Context maps variable names to the values substituted for them.
type Context map[string]any

// Keys returns the context keys in sorted order.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a new context holding c overridden by other.
func (c Context) Merge(other Context) Context {
	out := make(Context, len(c)+len(other))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Stringify renders a context value as document text. nil becomes "", string
// lists become one line per item and times use the dd/mm/yyyy form.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, "\n")
	case []any:
		lines := make([]string, len(val))
		for i, item := range val {
			lines[i] = Stringify(item)
		}
		return strings.Join(lines, "\n")
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case json.Number:
		return val.String()
	case time.Time:
		return val.Format("02/01/2006")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Substitute replaces every placeholder for the keys of ctx in p and reports
// whether the paragraph changed.
//
// The paragraph text is matched as a whole, so placeholders split across runs
// are found. Keys are applied one after another to the current text, so a
// later key also sees what earlier keys wrote. A value containing newlines
// replaces the whole paragraph text with its lines. The result is written into
// the first run, which keeps its formatting; the remaining runs lose their
// text and empty runs are dropped. Newlines become line breaks inside that run.
func Substitute(p *doctree.Paragraph, ctx Context) bool {
	text := p.Text()
	if text == "" || !strings.Contains(text, "{{") {
		return false
	}

	changed := false
	for _, key := range ctx.Keys() {
		value := Stringify(ctx[key])
		next, ok := replaceKey(text, key, value)
		if !ok {
			continue
		}
		if strings.Contains(value, "\n") {
			next = value
		}
		text = next
		changed = true
	}

	if changed {
		writeParagraphText(p, text)
	}
	return changed
}

func replaceKey(text, key, value string) (string, bool) {
	variants := PlaceholderVariants(key)
	found := false
	pairs := make([]string, 0, 2*len(variants))
	for _, v := range variants {
		if strings.Contains(text, v) {
			found = true
		}
		pairs = append(pairs, v, value)
	}
	if !found {
		return text, false
	}
	return strings.NewReplacer(pairs...).Replace(text), true
}

func writeParagraphText(p *doctree.Paragraph, text string) {
	first := p.FirstRun()
	if first == nil {
		first = p.AddRun()
	}
	for _, r := range p.Runs() {
		if r.Node() != first.Node() {
			r.ClearText()
		}
	}
	first.SetText(text)
	p.RemoveEmptyRuns()
}

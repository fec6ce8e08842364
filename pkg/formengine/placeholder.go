package formengine

import (
	"regexp"
	"sort"
	"strings"
)

// Placeholder is one {{name}} occurrence in a piece of text.
type Placeholder struct {
	Raw   string `json:"raw"`
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

var placeholderRegex = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// FindPlaceholders returns the placeholders in text in order of appearance.
// Delimiters with nothing but whitespace inside are ignored.
func FindPlaceholders(text string) []Placeholder {
	if !strings.Contains(text, "{{") {
		return nil
	}

	var out []Placeholder
	for _, m := range placeholderRegex.FindAllStringSubmatchIndex(text, -1) {
		name := strings.TrimSpace(text[m[2]:m[3]])
		if name == "" {
			continue
		}
		out = append(out, Placeholder{
			Raw:   text[m[0]:m[1]],
			Name:  name,
			Start: m[0],
			End:   m[1],
		})
	}
	return out
}

// PlaceholderVariants lists the spellings accepted for key: no spaces, space
// before, space after and spaces on both sides.
func PlaceholderVariants(key string) []string {
	return []string{
		"{{" + key + "}}",
		"{{ " + key + "}}",
		"{{" + key + " }}",
		"{{ " + key + " }}",
	}
}

func placeholderNames(texts []string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range texts {
		for _, p := range FindPlaceholders(t) {
			if !seen[p.Name] {
				seen[p.Name] = true
				names = append(names, p.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

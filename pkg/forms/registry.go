package forms

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/workflow"
)

// Form describes one form template.
type Form struct {
	ID          workflow.FormID `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Template    string          `json:"template"`
	Phase       workflow.Phase  `json:"phase"`
	// Required lists the context keys that must be present and non-empty.
	Required []string `json:"required_fields"`
	// Defaults are applied to keys the caller left out.
	Defaults   map[string]string `json:"defaults,omitempty"`
	CreatedBy  []workflow.Role   `json:"created_by"`
	ApprovedBy []workflow.Role   `json:"approved_by,omitempty"`
	// Outcome marks forms that record a committee decision; their checkbox
	// marks are derived from the is_approved flag.
	Outcome bool `json:"outcome,omitempty"`
	// Rows describes the repeated table row of the form, if any.
	Rows *RowInjection `json:"rows,omitempty"`
	// Processors run after substitution for this form's template.
	Processors []formengine.PostProcessor `json:"-"`
}

// StateForms lists the forms produced while a workflow instance is in a
// state.
type StateForms struct {
	Required []workflow.FormID `json:"required"`
	Optional []workflow.FormID `json:"optional"`
}

// Registry holds the known forms.
type Registry struct {
	mu     sync.RWMutex
	forms  map[workflow.FormID]Form
	order  []workflow.FormID
	states map[workflow.State]StateForms
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		forms:  make(map[workflow.FormID]Form),
		states: make(map[workflow.State]StateForms),
	}
}

// Register adds or replaces a form.
func (r *Registry) Register(f Form) error {
	if f.ID == "" {
		return fmt.Errorf("form id cannot be empty")
	}
	if f.Template == "" {
		f.Template = string(f.ID) + ".docx"
	}
	if f.Rows != nil {
		f.Processors = append(append([]formengine.PostProcessor(nil), f.Processors...), f.Rows)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.forms[f.ID]; !exists {
		r.order = append(r.order, f.ID)
	}
	r.forms[f.ID] = f
	return nil
}

// SetStateForms records the forms of a workflow state. Every form must be
// registered.
func (r *Registry) SetStateForms(s workflow.State, sf StateForms) error {
	if !s.Valid() {
		return fmt.Errorf("unknown workflow state %q", s)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range append(append([]workflow.FormID(nil), sf.Required...), sf.Optional...) {
		if _, ok := r.forms[id]; !ok {
			return fmt.Errorf("state %s references unknown form %q", s, id)
		}
	}
	r.states[s] = StateForms{
		Required: append([]workflow.FormID{}, sf.Required...),
		Optional: append([]workflow.FormID{}, sf.Optional...),
	}
	return nil
}

// Get returns the form with the given id.
func (r *Registry) Get(id workflow.FormID) (Form, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.forms[id]
	return f, ok
}

// Lookup resolves a form id leniently ("1B", "pl1", "1b.docx").
func (r *Registry) Lookup(name string) (Form, error) {
	id := ParseFormID(name)
	f, ok := r.Get(id)
	if !ok {
		return Form{}, fmt.Errorf("unknown form %q", name)
	}
	return f, nil
}

// Forms returns every form in registration order.
func (r *Registry) Forms() []Form {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Form, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.forms[id])
	}
	return out
}

// ForPhase returns the forms of a phase in registration order.
func (r *Registry) ForPhase(p workflow.Phase) []Form {
	var out []Form
	for _, f := range r.Forms() {
		if f.Phase == p {
			out = append(out, f)
		}
	}
	return out
}

// ForState returns the forms of a workflow state. States without forms
// yield empty lists.
func (r *Registry) ForState(s workflow.State) StateForms {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sf := r.states[s]
	return StateForms{
		Required: append([]workflow.FormID{}, sf.Required...),
		Optional: append([]workflow.FormID{}, sf.Optional...),
	}
}

// EngineOptions registers the forms' post-processors with an engine.
func (r *Registry) EngineOptions() []formengine.Option {
	var opts []formengine.Option
	for _, f := range r.Forms() {
		for _, p := range f.Processors {
			opts = append(opts, formengine.WithPostProcessor(f.Template, p))
		}
	}
	return opts
}

// ParseFormID normalizes a form name: "1B" and "1b.docx" become "1b", "pl2"
// becomes "PL2".
func ParseFormID(name string) workflow.FormID {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".docx"), ".DOCX")
	if strings.HasPrefix(strings.ToUpper(name), "PL") {
		return workflow.FormID(strings.ToUpper(name))
	}
	return workflow.FormID(strings.ToLower(name))
}

// SortFormIDs sorts ids in registration order of r. Unknown ids go last in
// lexical order.
func (r *Registry) SortFormIDs(ids []workflow.FormID) {
	r.mu.RLock()
	pos := make(map[workflow.FormID]int, len(r.order))
	for i, id := range r.order {
		pos[id] = i
	}
	r.mu.RUnlock()

	sort.SliceStable(ids, func(i, j int) bool {
		pi, iok := pos[ids[i]]
		pj, jok := pos[ids[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		default:
			return ids[i] < ids[j]
		}
	})
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the registry of the standard forms.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := registerStandardForms(defaultRegistry); err != nil {
			panic("forms: standard registry: " + err.Error())
		}
	})
	return defaultRegistry
}

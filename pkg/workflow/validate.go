package workflow

import (
	"fmt"
	"strings"
)

// Failure codes carried by a rejected Result.
const (
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeMissingRequiredForms  = "MISSING_REQUIRED_FORMS"
	CodeInsufficientApprovals = "INSUFFICIENT_APPROVALS"
)

// Result is the outcome of ValidateTransition.
type Result struct {
	From    State    `json:"from"`
	To      State    `json:"to"`
	Valid   bool     `json:"valid"`
	Missing []FormID `json:"missing"`
	Reason  string   `json:"reason,omitempty"`
	Code    string   `json:"code,omitempty"`
}

// ValidateTransition reports whether a workflow instance in from may move to
// to, given the forms already produced. Missing is never nil and keeps the
// order of the edge's required forms.
func ValidateTransition(from, to State, completed []FormID) Result {
	res := Result{From: from, To: to, Missing: []FormID{}}

	t, ok := Requirement(from, to)
	if !ok {
		res.Code = CodeInvalidTransition
		res.Reason = fmt.Sprintf("transition %s -> %s is not allowed", from, to)
		return res
	}

	have := make(map[FormID]bool, len(completed))
	for _, f := range completed {
		have[f] = true
	}
	for _, f := range t.RequiredForms {
		if !have[f] {
			res.Missing = append(res.Missing, f)
		}
	}

	if len(res.Missing) > 0 {
		res.Code = CodeMissingRequiredForms
		res.Reason = "missing required forms: " + joinForms(res.Missing)
		return res
	}

	res.Valid = true
	return res
}

// Err returns the rejection as an error, or nil for a valid result.
func (r Result) Err() error {
	switch {
	case r.Valid:
		return nil
	case len(r.Missing) > 0:
		return &MissingRequiredFormsError{From: r.From, To: r.To, Missing: append([]FormID(nil), r.Missing...)}
	default:
		return &InvalidTransitionError{From: r.From, To: r.To}
	}
}

// InvalidTransitionError reports an edge missing from the table.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s is not allowed", e.From, e.To)
}

// Code returns the stable failure code.
func (e *InvalidTransitionError) Code() string { return CodeInvalidTransition }

// MissingRequiredFormsError reports forms that must be produced first.
type MissingRequiredFormsError struct {
	From    State
	To      State
	Missing []FormID
}

func (e *MissingRequiredFormsError) Error() string {
	return fmt.Sprintf("transition %s -> %s: missing required forms: %s", e.From, e.To, joinForms(e.Missing))
}

// Code returns the stable failure code.
func (e *MissingRequiredFormsError) Code() string { return CodeMissingRequiredForms }

// InsufficientApprovalsError reports a committee vote below the threshold.
type InsufficientApprovalsError struct {
	From     State
	To       State
	Required int
	Got      int
}

func (e *InsufficientApprovalsError) Error() string {
	return fmt.Sprintf("transition %s -> %s needs %d approvals, got %d", e.From, e.To, e.Required, e.Got)
}

// Code returns the stable failure code.
func (e *InsufficientApprovalsError) Code() string { return CodeInsufficientApprovals }

func joinForms(ids []FormID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

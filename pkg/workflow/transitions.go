package workflow

import "fmt"

// Transition is an allowed edge of the workflow.
type Transition struct {
	From          State    `json:"from"`
	To            State    `json:"to"`
	RequiredForms []FormID `json:"required_forms"`
	// MinApprovals is the number of approval votes a committee edge needs.
	// Zero means the edge is not a vote.
	MinApprovals int `json:"min_approvals,omitempty"`
}

// transitions is keyed by source state. Every state is present; terminal
// states map to nil.
var transitions = map[State][]Transition{
	Draft: {
		{From: Draft, To: FacultyReview, RequiredForms: []FormID{Form1b}},
	},
	FacultyReview: {
		{From: FacultyReview, To: SchoolSelectionReview, RequiredForms: []FormID{Form2b, Form3b}, MinApprovals: 3},
		{From: FacultyReview, To: ChangesRequested, RequiredForms: []FormID{Form3b}},
	},
	SchoolSelectionReview: {
		{From: SchoolSelectionReview, To: OutlineCouncilReview, RequiredForms: []FormID{Form4b, Form5b}},
		{From: SchoolSelectionReview, To: Rejected, RequiredForms: []FormID{Form5b}},
	},
	OutlineCouncilReview: {
		{From: OutlineCouncilReview, To: Approved, RequiredForms: []FormID{Form6b}, MinApprovals: 4},
		{From: OutlineCouncilReview, To: ChangesRequested, RequiredForms: []FormID{Form6b}},
	},
	ChangesRequested: {
		{From: ChangesRequested, To: FacultyReview, RequiredForms: []FormID{Form7b}},
	},
	Approved: {
		{From: Approved, To: InProgress},
	},
	InProgress: {
		{From: InProgress, To: FacultyAcceptanceReview, RequiredForms: []FormID{Form8b, FormPL2}},
	},
	FacultyAcceptanceReview: {
		{From: FacultyAcceptanceReview, To: SchoolAcceptanceReview, RequiredForms: []FormID{Form9b, Form10b, Form11b}, MinApprovals: 3},
		{From: FacultyAcceptanceReview, To: InProgress, RequiredForms: []FormID{Form10b}},
	},
	SchoolAcceptanceReview: {
		{From: SchoolAcceptanceReview, To: Handover, RequiredForms: []FormID{Form12b, Form13b, Form14b, Form15b, Form16b}, MinApprovals: 4},
		{From: SchoolAcceptanceReview, To: InProgress, RequiredForms: []FormID{Form15b}},
	},
	Handover: {
		{From: Handover, To: Completed, RequiredForms: []FormID{Form17b}},
	},
	Completed: nil,
	Rejected:  nil,
}

// AllowedTransitions returns the edges leaving from. Unknown and terminal
// states have none.
func AllowedTransitions(from State) []Transition {
	edges := transitions[from]
	out := make([]Transition, len(edges))
	for i, t := range edges {
		out[i] = t.clone()
	}
	return out
}

// Transitions returns every edge of the table in workflow order.
func Transitions() []Transition {
	var out []Transition
	for _, s := range states {
		out = append(out, AllowedTransitions(s)...)
	}
	return out
}

// Requirement returns the edge from -> to, if it is allowed.
func Requirement(from, to State) (Transition, bool) {
	for _, t := range transitions[from] {
		if t.To == to {
			return t.clone(), true
		}
	}
	return Transition{}, false
}

// CheckApprovals checks votes against the edge's approval threshold. Edges
// without a threshold accept any count.
func CheckApprovals(from, to State, votes int) error {
	t, ok := Requirement(from, to)
	if !ok {
		return &InvalidTransitionError{From: from, To: to}
	}
	if votes < t.MinApprovals {
		return &InsufficientApprovalsError{From: from, To: to, Required: t.MinApprovals, Got: votes}
	}
	return nil
}

func (t Transition) clone() Transition {
	t.RequiredForms = append([]FormID(nil), t.RequiredForms...)
	return t
}

func (t Transition) String() string {
	return fmt.Sprintf("%s -> %s", t.From, t.To)
}

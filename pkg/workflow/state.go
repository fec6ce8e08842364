package workflow

import (
	"fmt"
	"strings"
)

// State is a named stage of a workflow instance.
type State string

const (
	Draft                   State = "DRAFT"
	FacultyReview           State = "FACULTY_REVIEW"
	SchoolSelectionReview   State = "SCHOOL_SELECTION_REVIEW"
	OutlineCouncilReview    State = "OUTLINE_COUNCIL_REVIEW"
	ChangesRequested        State = "CHANGES_REQUESTED"
	Approved                State = "APPROVED"
	InProgress              State = "IN_PROGRESS"
	FacultyAcceptanceReview State = "FACULTY_ACCEPTANCE_REVIEW"
	SchoolAcceptanceReview  State = "SCHOOL_ACCEPTANCE_REVIEW"
	Handover                State = "HANDOVER"
	Completed               State = "COMPLETED"
	Rejected                State = "REJECTED"
)

var states = []State{
	Draft,
	FacultyReview,
	SchoolSelectionReview,
	OutlineCouncilReview,
	ChangesRequested,
	Approved,
	InProgress,
	FacultyAcceptanceReview,
	SchoolAcceptanceReview,
	Handover,
	Completed,
	Rejected,
}

// States returns every state in workflow order.
func States() []State {
	return append([]State(nil), states...)
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	_, ok := phases[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Phase returns the phase s belongs to, or "" for an unknown state.
func (s State) Phase() Phase {
	return phases[s]
}

func (s State) String() string {
	return string(s)
}

// ParseState parses a state name. Case and surrounding space are ignored,
// and dashes or spaces may stand in for underscores.
func ParseState(name string) (State, error) {
	norm := strings.ToUpper(strings.TrimSpace(name))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	s := State(norm)
	if !s.Valid() {
		return "", fmt.Errorf("unknown workflow state %q", name)
	}
	return s, nil
}

// Phase groups states that share a broad purpose.
type Phase string

const (
	PhaseProposal          Phase = "PROPOSAL"
	PhaseFacultyReview     Phase = "FACULTY_REVIEW"
	PhaseSchoolSelection   Phase = "SCHOOL_SELECTION"
	PhaseCouncilReview     Phase = "COUNCIL_REVIEW"
	PhaseImplementation    Phase = "IN_PROGRESS"
	PhaseFacultyAcceptance Phase = "FACULTY_ACCEPTANCE"
	PhaseSchoolAcceptance  Phase = "SCHOOL_ACCEPTANCE"
	PhaseCompletion        Phase = "COMPLETED"
)

var phases = map[State]Phase{
	Draft:                   PhaseProposal,
	FacultyReview:           PhaseFacultyReview,
	SchoolSelectionReview:   PhaseSchoolSelection,
	OutlineCouncilReview:    PhaseCouncilReview,
	ChangesRequested:        PhaseCouncilReview,
	Approved:                PhaseCouncilReview,
	InProgress:              PhaseImplementation,
	FacultyAcceptanceReview: PhaseFacultyAcceptance,
	SchoolAcceptanceReview:  PhaseSchoolAcceptance,
	Handover:                PhaseCompletion,
	Completed:               PhaseCompletion,
	Rejected:                PhaseCompletion,
}

// Role is an actor that creates or approves forms.
type Role string

const (
	RoleLecturer         Role = "GIANG_VIEN"
	RoleFacultyManager   Role = "QUAN_LY_KHOA"
	RoleResearchOffice   Role = "PHONG_KHCN"
	RoleCouncil          Role = "HOI_DONG"
	RoleCouncilSecretary Role = "THU_KY_HOI_DONG"
	RoleBoard            Role = "BAN_GIAM_HOC"
)

// FormID identifies a form template, e.g. "1b" or "PL2".
type FormID string

const (
	Form1b  FormID = "1b"
	FormPL1 FormID = "PL1"
	Form2b  FormID = "2b"
	Form3b  FormID = "3b"
	Form4b  FormID = "4b"
	Form5b  FormID = "5b"
	Form6b  FormID = "6b"
	Form7b  FormID = "7b"
	Form8b  FormID = "8b"
	Form9b  FormID = "9b"
	Form10b FormID = "10b"
	Form11b FormID = "11b"
	FormPL2 FormID = "PL2"
	Form12b FormID = "12b"
	Form13b FormID = "13b"
	Form14b FormID = "14b"
	Form15b FormID = "15b"
	Form16b FormID = "16b"
	FormPL3 FormID = "PL3"
	Form17b FormID = "17b"
	Form18b FormID = "18b"
)

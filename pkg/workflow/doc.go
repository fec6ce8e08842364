// Package workflow holds the static rules of the research project approval
// workflow: the named states, the phases grouping them and the transition
// table listing, per edge, the forms that must have been produced and the
// minimum number of approval votes.
//
// Validation is pure. ValidateTransition never fails; a rejected move is
// reported as a Result value:
//
//	res := workflow.ValidateTransition(workflow.Draft, workflow.FacultyReview, completed)
//	if !res.Valid {
//		// res.Missing lists the forms to render first
//	}
//
// The tables are package-level values that are never modified after
// initialization, so every function is safe for concurrent use.
package workflow

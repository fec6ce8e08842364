// Package forms describes the form templates of the research project
// workflow and prepares their input.
//
// A Registry maps each form id to its template, phase, roles and input
// fields. Prepare fills the date parts, aliases, checkbox marks and per-form
// defaults into a render context and validates the required fields before a
// render is attempted:
//
//	req, err := forms.Default().Request(workflow.Form1b, input, forms.RequestOptions{UserID: "u-1"})
//	if err != nil {
//		return err
//	}
//	result, err := engine.Render(ctx, req)
//
// Forms whose templates need structural edits carry post-processors.
// OutcomeCleanup drops the paragraphs of the branch a committee did not take;
// RowInjection repeats a table row once per list item. Registry.EngineOptions
// wires them into a formengine.Engine.
package forms

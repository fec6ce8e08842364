// Package formengine fills DOCX form templates from a key-value context and
// turns them into audited artifacts.
//
// # Placeholders
//
// A placeholder is a variable name between double braces. Four spellings are
// equivalent:
//
//	{{name}}  {{ name }}  {{name }}  {{ name}}
//
// There is no expression language: no conditionals, loops or filters. Keys
// missing from the context leave their placeholders untouched.
//
// # Rendering
//
// Engine.Render runs one template through these steps:
//
//  1. resolve the template under the template root
//  2. substitute body paragraphs, table cells, headers and footers
//  3. run post-processors registered for the template
//  4. left-align list paragraphs
//  5. save to <output>/<YYYY-MM-DD>/<template>_<HHMMSS>.docx
//  6. convert with the external office suite (optional, never fatal)
//  7. hash the artifacts with SHA-256
//  8. append the result to the JSONL audit log
//
// Substitution works on whole paragraphs, so a placeholder that the word
// processor split across several runs is still found. The rewritten text
// takes the formatting of the paragraph's first run.
//
// # Basic Usage
//
//	engine, err := formengine.New(formengine.ConfigFromEnvironment(),
//	    formengine.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	result, err := engine.Render(ctx, formengine.RenderRequest{
//	    Template: "1b",
//	    Context:  formengine.Context{"ten_de_tai": "X"},
//	    UserID:   "u-42",
//	})
//
// Errors carry stable codes (see ErrorCode and ToFailure) so HTTP and CLI
// front ends can report them uniformly.
package formengine

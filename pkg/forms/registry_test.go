package forms

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-formengine/pkg/workflow"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	all := reg.Forms()
	require.Len(t, all, 21)
	assert.Equal(t, workflow.Form1b, all[0].ID)

	for _, f := range all {
		assert.Equal(t, string(f.ID)+".docx", f.Template)
		assert.NotEmpty(t, f.Name, "form %s", f.ID)
		assert.NotEmpty(t, f.Required, "form %s", f.ID)
		assert.NotEmpty(t, f.CreatedBy, "form %s", f.ID)
	}

	for _, tr := range workflow.Transitions() {
		for _, id := range tr.RequiredForms {
			_, ok := reg.Get(id)
			assert.True(t, ok, "edge %s requires unregistered form %s", tr, id)
		}
	}

	assert.Len(t, reg.EngineOptions(), 4)
}

func TestRegistryForState(t *testing.T) {
	reg := Default()

	got := reg.ForState(workflow.FacultyReview)
	want := StateForms{
		Required: []workflow.FormID{workflow.Form1b, workflow.FormPL1, workflow.Form2b, workflow.Form3b},
		Optional: []workflow.FormID{workflow.Form4b},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ForState(FACULTY_REVIEW) mismatch (-want +got):\n%s", diff)
	}

	empty := reg.ForState(workflow.Completed)
	assert.NotNil(t, empty.Required)
	assert.Empty(t, empty.Required)
	assert.Empty(t, empty.Optional)

	got.Required[0] = "tampered"
	assert.Equal(t, workflow.Form1b, reg.ForState(workflow.FacultyReview).Required[0])
}

func TestRegistryForPhase(t *testing.T) {
	var ids []workflow.FormID
	for _, f := range Default().ForPhase(workflow.PhaseFacultyReview) {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []workflow.FormID{workflow.Form2b, workflow.Form3b, workflow.Form4b}, ids)
}

func TestParseFormID(t *testing.T) {
	tests := map[string]workflow.FormID{
		"1b":       workflow.Form1b,
		"1B":       workflow.Form1b,
		" 13b ":    workflow.Form13b,
		"pl1":      workflow.FormPL1,
		"PL3.docx": workflow.FormPL3,
		"4b.docx":  workflow.Form4b,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseFormID(in), "ParseFormID(%q)", in)
	}

	f, err := Default().Lookup("Pl2")
	require.NoError(t, err)
	assert.Equal(t, workflow.FormPL2, f.ID)

	_, err = Default().Lookup("99b")
	assert.Error(t, err)
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register(Form{}))

	require.NoError(t, reg.Register(Form{ID: "x", Name: "first"}))
	require.NoError(t, reg.Register(Form{ID: "y"}))
	require.NoError(t, reg.Register(Form{ID: "x", Name: "second"}))

	forms := reg.Forms()
	require.Len(t, forms, 2)
	assert.Equal(t, "second", forms[0].Name)
	assert.Equal(t, "x.docx", forms[0].Template)

	assert.Error(t, reg.SetStateForms(workflow.Draft, StateForms{Required: []workflow.FormID{"z"}}))
	assert.Error(t, reg.SetStateForms("NOPE", StateForms{}))
	assert.NoError(t, reg.SetStateForms(workflow.Draft, StateForms{Required: []workflow.FormID{"y"}}))

	ids := []workflow.FormID{"zz", "y", "x", "aa"}
	reg.SortFormIDs(ids)
	assert.Equal(t, []workflow.FormID{"x", "y", "aa", "zz"}, ids)
}

func TestRegisterRowsAddsProcessor(t *testing.T) {
	reg := NewRegistry()
	rows := &RowInjection{Key: "items", Columns: []string{"a"}}
	require.NoError(t, reg.Register(Form{ID: "t", Rows: rows}))

	f, ok := reg.Get("t")
	require.True(t, ok)
	require.Len(t, f.Processors, 1)
	assert.Same(t, rows, f.Processors[0])
}

func TestRegisterStandardForms(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, registerStandardForms(r))
	assert.Len(t, r.Forms(), len(Default().Forms()))

	err := registerForms(NewRegistry(), []Form{{ID: workflow.Form1b}, {ID: workflow.Form2b}, {ID: workflow.Form1b}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"1b" is listed twice`)

	err = registerForms(NewRegistry(), []Form{{ID: ""}})
	assert.Error(t, err)
}

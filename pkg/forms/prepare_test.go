package forms

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/workflow"
)

var renderDate = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

func mustForm(t *testing.T, id workflow.FormID) Form {
	t.Helper()
	f, ok := Default().Get(id)
	require.True(t, ok, "form %s", id)
	return f
}

func TestPrepareDefaults(t *testing.T) {
	input := formengine.Context{
		"ten_de_tai":       "X",
		"ho_ten_chu_nhiem": "TS. A",
		"khoa":             "CNTT",
		"ma_so_de_tai":     "NCKH-01",
	}

	got, err := mustForm(t, workflow.Form1b).Prepare(input, renderDate)
	require.NoError(t, err)

	want := formengine.Context{
		"ten_de_tai":       "X",
		"ho_ten_chu_nhiem": "TS. A",
		"chu_nhiem":        "TS. A",
		"ten_chu_nhiem":    "TS. A",
		"khoa":             "CNTT",
		"ten_khoa":         "CNTT",
		"ma_so_de_tai":     "NCKH-01",
		"ma_de_tai":        "NCKH-01",
		"ngay":             "5",
		"thang":            "3",
		"nam":              "2024",
		"nam_hoc":          "2024-2025",
		"ngay_thang_nam":   "Nam Định,\u00a0ngày\u00a05\u00a0tháng\u00a03\u00a0năm\u00a02024",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Prepare() mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, input, 4, "input must not be modified")
}

func TestPrepareKeepsCallerValues(t *testing.T) {
	got, err := mustForm(t, workflow.Form1b).Prepare(formengine.Context{
		"ten_de_tai": "X",
		"chu_nhiem":  "A",
		"khoa":       "CNTT",
		"ngay":       20,
		"thang":      "01",
		"dia_danh":   "Hà Nội",
		"nam_hoc":    "2023 - 2024",
	}, renderDate)
	require.NoError(t, err)

	assert.Equal(t, 20, got["ngay"])
	assert.Equal(t, "01", got["thang"])
	assert.Equal(t, "2024", got["nam"])
	assert.Equal(t, "2023 - 2024", got["nam_hoc"])
	assert.Equal(t, "Hà Nội,\u00a0ngày\u00a020\u00a0tháng\u00a001\u00a0năm\u00a02024", got["ngay_thang_nam"])
}

func TestPrepareValidation(t *testing.T) {
	_, err := mustForm(t, workflow.Form1b).Prepare(formengine.Context{"ten_de_tai": "  "}, renderDate)

	var verr *formengine.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "1b.docx", verr.Template)
	want := []formengine.ValidationIssue{
		{Field: "ten_de_tai", Message: "is required"},
		{Field: "chu_nhiem", Message: "is required"},
		{Field: "khoa", Message: "is required"},
	}
	if diff := cmp.Diff(want, verr.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, formengine.CodeValidationError, formengine.ErrorCode(err))
}

func TestPrepareOutcomeMarks(t *testing.T) {
	base := formengine.Context{"ten_de_tai": "X", "ten_chu_tich": "C", "ten_thu_ky": "T"}

	tests := []struct {
		name     string
		flag     any
		approved bool
	}{
		{"default approves", nil, true},
		{"bool false", false, false},
		{"string false", "false", false},
		{"numeric true", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := base.Merge(nil)
			if tt.flag != nil {
				input["is_approved"] = tt.flag
			}
			got, err := mustForm(t, workflow.Form3b).Prepare(input, renderDate)
			require.NoError(t, err)

			yes, no := CheckboxChecked, CheckboxUnchecked
			if !tt.approved {
				yes, no = no, yes
			}
			assert.Equal(t, yes, got["box_dat"])
			assert.Equal(t, yes, got["box_de_nghi"])
			assert.Equal(t, no, got["box_khong_dat"])
			assert.Equal(t, no, got["box_khong_de_nghi"])
			assert.Equal(t, "0", got["vang_mat"])
		})
	}

	t.Run("invalid flag", func(t *testing.T) {
		input := base.Merge(formengine.Context{"is_approved": "maybe"})
		_, err := mustForm(t, workflow.Form3b).Prepare(input, renderDate)
		var verr *formengine.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "is_approved", verr.Issues[0].Field)
	})

	t.Run("caller marks win", func(t *testing.T) {
		input := base.Merge(formengine.Context{"box_dat": "☑"})
		got, err := mustForm(t, workflow.Form3b).Prepare(input, renderDate)
		require.NoError(t, err)
		assert.Equal(t, "☑", got["box_dat"])
	})
}

func TestPrepareRows(t *testing.T) {
	f := mustForm(t, workflow.Form4b)

	got, err := f.Prepare(formengine.Context{
		"ten_khoa": "CNTT",
		"danh_sach_de_tai": []any{
			map[string]any{"stt": 1, "ten": "A"},
			map[string]any{"stt": 2, "ten": "B"},
		},
	}, renderDate)
	require.NoError(t, err)
	assert.Equal(t, "2", got["so_de_tai"])

	_, err = f.Prepare(formengine.Context{"ten_khoa": "CNTT", "danh_sach_de_tai": "not rows"}, renderDate)
	var verr *formengine.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "danh_sach_de_tai", verr.Issues[0].Field)
}

func TestRegistryRequest(t *testing.T) {
	req, err := Default().Request(workflow.Form1b, formengine.Context{"ten_de_tai": "X", "chu_nhiem": "A", "khoa": "K"},
		RequestOptions{UserID: "u-1", ProposalID: "p-1", Now: renderDate})
	require.NoError(t, err)
	assert.Equal(t, "1b.docx", req.Template)
	assert.Equal(t, "u-1", req.UserID)
	assert.Equal(t, "p-1", req.ProposalID)
	assert.Equal(t, "5", req.Context["ngay"])

	_, err = Default().Request("99b", nil, RequestOptions{})
	assert.Error(t, err)
}

func TestDateLineAndAcademicYear(t *testing.T) {
	assert.Equal(t, "Nam Định,\u00a0ngày\u00a01\u00a0tháng\u00a02\u00a0năm\u00a02025", DateLine(DefaultPlace, "1", "2", "2025"))
	assert.Equal(t, "2025-2026", AcademicYear(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-formengine/internal/docxtest"
	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/forms"
	"github.com/benjaminschreck/go-formengine/pkg/workflow"
)

type response struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *formengine.Failure `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	root := t.TempDir()
	cfg := formengine.DefaultConfig()
	cfg.TemplateDir = filepath.Join(root, "templates")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.LogDir = filepath.Join(root, "logs")
	cfg.ConvertEnabled = false
	require.NoError(t, os.MkdirAll(cfg.TemplateDir, 0o755))

	docxtest.New().
		Paragraph("Đề tài: {{ten_de_tai}}").
		Paragraph("Chủ nhiệm: {{chu_nhiem}}").
		Paragraph("Khoa {{khoa}}, ngày {{ngay}}").
		WriteFile(t, cfg.TemplateDir, "1b.docx")
	docxtest.New().
		Paragraph("{{ten_de_tai}}").
		WriteFile(t, cfg.TemplateDir, "memo.docx")

	reg := prometheus.NewRegistry()
	opts := append(forms.Default().EngineOptions(), formengine.WithMetrics(formengine.NewMetrics(reg)))
	engine, err := formengine.New(cfg, opts...)
	require.NoError(t, err)

	s := New(engine, Options{
		OutputDir: cfg.OutputDir,
		Gatherer:  reg,
		Version:   "test",
	})
	s.now = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) (int, response) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		status, resp := do(t, ts, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, status)
		require.True(t, resp.Success)

		var h Health
		require.NoError(t, json.Unmarshal(resp.Data, &h))
		assert.Equal(t, "healthy", h.Status)
		assert.Equal(t, "test", h.Version)
		assert.Equal(t, 2, h.TemplatesAvailable)
		assert.False(t, h.ConverterAvailable)
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t)

	status, resp := do(t, ts, http.MethodPost, "/api/v1/forms/render", map[string]any{
		"template_name": "memo",
		"context":       map[string]any{"ten_de_tai": "Hệ thống quản lý"},
		"user_id":       "u-1",
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.Success, "%+v", resp.Error)

	var res formengine.RenderResult
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.Equal(t, "memo.docx", res.Template)
	assert.Equal(t, "u-1", res.UserID)
	assert.Nil(t, res.PDFPath)
	assert.Len(t, res.SHA256Docx, 64)

	fileResp, err := ts.Client().Get(ts.URL + "/files/" + res.DocxPath)
	require.NoError(t, err)
	defer fileResp.Body.Close()
	assert.Equal(t, http.StatusOK, fileResp.StatusCode)
	head := make([]byte, 2)
	_, err = io.ReadFull(fileResp.Body, head)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(head))
}

func TestRenderForm(t *testing.T) {
	ts := newTestServer(t)

	t.Run("prepared by registry", func(t *testing.T) {
		status, resp := do(t, ts, http.MethodPost, "/api/v1/forms/render", map[string]any{
			"form_id": "1B",
			"context": map[string]any{
				"ten_de_tai": "Đề tài A",
				"chu_nhiem":  "Nguyễn Văn A",
				"khoa":       "CNTT",
			},
		})
		require.Equal(t, http.StatusOK, status, "%+v", resp.Error)

		var res formengine.RenderResult
		require.NoError(t, json.Unmarshal(resp.Data, &res))
		assert.Equal(t, "1b.docx", res.Template)
	})

	t.Run("missing required fields", func(t *testing.T) {
		status, resp := do(t, ts, http.MethodPost, "/api/v1/forms/render", map[string]any{
			"form_id": "1b",
			"context": map[string]any{"ten_de_tai": "Đề tài A"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, formengine.CodeValidationError, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "chu_nhiem")
	})

	t.Run("unknown form", func(t *testing.T) {
		status, resp := do(t, ts, http.MethodPost, "/api/v1/forms/render", map[string]any{
			"form_id": "99z",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, formengine.CodeValidationError, resp.Error.Code)
	})
}

func TestRenderFailures(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed body", "{", http.StatusBadRequest, CodeBadRequest},
		{"no template", map[string]any{"context": map[string]any{}}, http.StatusBadRequest, CodeBadRequest},
		{"unknown template", map[string]any{"template_name": "nope"}, http.StatusNotFound, formengine.CodeTemplateNotFound},
		{"path traversal", map[string]any{"template_name": "../secret"}, http.StatusNotFound, formengine.CodeTemplateNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := do(t, ts, http.MethodPost, "/api/v1/forms/render", tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestTemplates(t *testing.T) {
	ts := newTestServer(t)

	status, resp := do(t, ts, http.MethodGet, "/api/v1/forms/templates", nil)
	require.Equal(t, http.StatusOK, status)
	var list []formengine.TemplateInfo
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "1b.docx", list[0].Name)
	assert.Equal(t, "memo.docx", list[1].Name)

	status, resp = do(t, ts, http.MethodGet, "/api/v1/forms/templates/1b", nil)
	require.Equal(t, http.StatusOK, status)
	var info formengine.TemplateInfo
	require.NoError(t, json.Unmarshal(resp.Data, &info))
	assert.Equal(t, []string{"chu_nhiem", "khoa", "ngay", "ten_de_tai"}, info.Placeholders)

	status, resp = do(t, ts, http.MethodGet, "/api/v1/forms/templates/missing.docx", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, formengine.CodeTemplateNotFound, resp.Error.Code)
}

func TestRegistry(t *testing.T) {
	ts := newTestServer(t)

	status, resp := do(t, ts, http.MethodGet, "/api/v1/forms/registry", nil)
	require.Equal(t, http.StatusOK, status)
	var all []forms.Form
	require.NoError(t, json.Unmarshal(resp.Data, &all))
	assert.Len(t, all, len(forms.Default().Forms()))

	status, resp = do(t, ts, http.MethodGet, "/api/v1/forms/registry?phase=proposal", nil)
	require.Equal(t, http.StatusOK, status)
	var proposal []forms.Form
	require.NoError(t, json.Unmarshal(resp.Data, &proposal))
	require.NotEmpty(t, proposal)
	for _, f := range proposal {
		assert.Equal(t, workflow.PhaseProposal, f.Phase)
	}
}

func TestTransitions(t *testing.T) {
	ts := newTestServer(t)

	status, resp := do(t, ts, http.MethodGet, "/api/v1/workflow/states/faculty-review/transitions", nil)
	require.Equal(t, http.StatusOK, status)
	var st StateTransitions
	require.NoError(t, json.Unmarshal(resp.Data, &st))
	assert.Equal(t, workflow.FacultyReview, st.State)
	assert.False(t, st.Terminal)
	require.Len(t, st.Transitions, 2)
	assert.Equal(t, workflow.SchoolSelectionReview, st.Transitions[0].To)
	assert.Equal(t, 3, st.Transitions[0].MinApprovals)

	status, resp = do(t, ts, http.MethodGet, "/api/v1/workflow/states/completed/transitions", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &st))
	assert.True(t, st.Terminal)
	assert.Empty(t, st.Transitions)

	status, resp = do(t, ts, http.MethodGet, "/api/v1/workflow/states/limbo/transitions", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, formengine.CodeValidationError, resp.Error.Code)
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)
	votes := func(n int) *int { return &n }

	tests := []struct {
		name    string
		body    ValidateBody
		valid   bool
		code    string
		missing []workflow.FormID
	}{
		{
			name:  "allowed",
			body:  ValidateBody{From: "DRAFT", To: "FACULTY_REVIEW", CompletedForms: []string{"1b"}},
			valid: true,
		},
		{
			name:    "missing forms",
			body:    ValidateBody{From: "faculty_review", To: "school_selection_review", CompletedForms: []string{"2b.docx"}},
			code:    workflow.CodeMissingRequiredForms,
			missing: []workflow.FormID{workflow.Form3b},
		},
		{
			name: "not an edge",
			body: ValidateBody{From: "DRAFT", To: "COMPLETED"},
			code: workflow.CodeInvalidTransition,
		},
		{
			name: "unknown state",
			body: ValidateBody{From: "LIMBO", To: "DRAFT"},
			code: workflow.CodeInvalidTransition,
		},
		{
			name: "too few votes",
			body: ValidateBody{
				From: "OUTLINE_COUNCIL_REVIEW", To: "APPROVED",
				CompletedForms: []string{"6b"}, Approvals: votes(3),
			},
			code: workflow.CodeInsufficientApprovals,
		},
		{
			name: "enough votes",
			body: ValidateBody{
				From: "OUTLINE_COUNCIL_REVIEW", To: "APPROVED",
				CompletedForms: []string{"6b"}, Approvals: votes(4),
			},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := do(t, ts, http.MethodPost, "/api/v1/workflow/validate", tt.body)
			require.Equal(t, http.StatusOK, status)
			require.True(t, resp.Success)

			var res workflow.Result
			require.NoError(t, json.Unmarshal(resp.Data, &res))
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.code, res.Code)
			if tt.missing != nil {
				assert.Equal(t, tt.missing, res.Missing)
			}
		})
	}

	status, resp := do(t, ts, http.MethodPost, "/api/v1/workflow/validate", "not json")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeBadRequest, resp.Error.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	status, _ := do(t, ts, http.MethodPost, "/api/v1/forms/render", map[string]any{"template_name": "memo"})
	require.Equal(t, http.StatusOK, status)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `formengine_renders_total{status="ok",template="memo.docx"} 1`)
}

func TestRun(t *testing.T) {
	t.Run("stops when context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- Run(ctx, "127.0.0.1:0", http.NotFoundHandler(), formengine.NewNopLogger(), time.Second)
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		err := Run(context.Background(), "256.0.0.1:bad", http.NotFoundHandler(), formengine.NewNopLogger(), time.Second)
		assert.Error(t, err)
	})
}

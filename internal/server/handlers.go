package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/forms"
	"github.com/benjaminschreck/go-formengine/pkg/workflow"
)

// RenderBody is the body of POST /forms/render. When FormID is set the
// context is completed and validated by the form registry and TemplateName
// may be left empty.
type RenderBody struct {
	TemplateName string             `json:"template_name"`
	FormID       string             `json:"form_id,omitempty"`
	Context      formengine.Context `json:"context"`
	UserID       string             `json:"user_id,omitempty"`
	ProposalID   string             `json:"proposal_id,omitempty"`
}

// ValidateBody is the body of POST /workflow/validate.
type ValidateBody struct {
	From           string   `json:"from"`
	To             string   `json:"to"`
	CompletedForms []string `json:"completed_forms"`
	// Approvals is checked against the transition's minimum when present.
	Approvals *int `json:"approvals,omitempty"`
}

// Health is the data of GET /health.
type Health struct {
	Status             string    `json:"status"`
	Version            string    `json:"version"`
	TemplatesAvailable int       `json:"templates_available"`
	ConverterAvailable bool      `json:"converter_available"`
	Timestamp          time.Time `json:"timestamp"`
}

// StateTransitions is the data of GET /workflow/states/{state}/transitions.
type StateTransitions struct {
	State       workflow.State        `json:"state"`
	Phase       workflow.Phase        `json:"phase"`
	Terminal    bool                  `json:"terminal"`
	Transitions []workflow.Transition `json:"transitions"`
	Forms       forms.StateForms      `json:"forms"`
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := Health{
		Status:             "healthy",
		Version:            s.opts.Version,
		ConverterAvailable: s.engine.ConverterAvailable(r.Context()),
		Timestamp:          s.now().UTC(),
	}
	if list, err := s.engine.Templates(); err != nil {
		s.logger.Warn("health: listing templates failed", "err", err)
		h.Status = "degraded"
	} else {
		h.TemplatesAvailable = len(list)
	}
	writeData(w, http.StatusOK, h)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var body RenderBody
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, s.logger, err.Error())
		return
	}

	req := formengine.RenderRequest{
		Template:   body.TemplateName,
		Context:    body.Context,
		UserID:     body.UserID,
		ProposalID: body.ProposalID,
	}
	if body.FormID != "" {
		f, err := s.registry.Lookup(body.FormID)
		if err != nil {
			writeError(w, s.logger, &formengine.ValidationError{
				Issues: []formengine.ValidationIssue{{Field: "form_id", Message: err.Error()}},
			})
			return
		}
		req, err = s.registry.Request(f.ID, body.Context, forms.RequestOptions{
			UserID:     body.UserID,
			ProposalID: body.ProposalID,
			Now:        s.now(),
		})
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
	}
	if strings.TrimSpace(req.Template) == "" {
		badRequest(w, s.logger, "template_name or form_id is required")
		return
	}

	res, err := s.engine.Render(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.Templates()
	if err != nil {
		writeFailure(w, s.logger, &formengine.Failure{Code: formengine.CodeListError, Message: err.Error()})
		return
	}
	if list == nil {
		list = []formengine.TemplateInfo{}
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleTemplateInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.TemplateInfo(chi.URLParam(r, "name"))
	if err != nil {
		if formengine.IsTemplateNotFound(err) {
			writeError(w, s.logger, err)
			return
		}
		writeFailure(w, s.logger, &formengine.Failure{Code: formengine.CodeInfoError, Message: err.Error()})
		return
	}
	writeData(w, http.StatusOK, info)
}

func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	if phase := r.URL.Query().Get("phase"); phase != "" {
		writeData(w, http.StatusOK, s.registry.ForPhase(workflow.Phase(strings.ToUpper(phase))))
		return
	}
	writeData(w, http.StatusOK, s.registry.Forms())
}

func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	state, err := workflow.ParseState(chi.URLParam(r, "state"))
	if err != nil {
		writeError(w, s.logger, &formengine.ValidationError{
			Issues: []formengine.ValidationIssue{{Field: "state", Message: err.Error()}},
		})
		return
	}
	writeData(w, http.StatusOK, StateTransitions{
		State:       state,
		Phase:       state.Phase(),
		Terminal:    state.Terminal(),
		Transitions: workflow.AllowedTransitions(state),
		Forms:       s.registry.ForState(state),
	})
}

// handleValidate always answers 200 once the body decodes: a rejected
// transition is a result, not a request failure.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var body ValidateBody
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, s.logger, err.Error())
		return
	}

	completed := make([]workflow.FormID, 0, len(body.CompletedForms))
	for _, name := range body.CompletedForms {
		completed = append(completed, forms.ParseFormID(name))
	}

	res := workflow.ValidateTransition(parseStateLenient(body.From), parseStateLenient(body.To), completed)
	if res.Valid && body.Approvals != nil {
		if err := workflow.CheckApprovals(res.From, res.To, *body.Approvals); err != nil {
			res.Valid = false
			res.Code = formengine.ErrorCode(err)
			res.Reason = err.Error()
		}
	}
	writeData(w, http.StatusOK, res)
}

// parseStateLenient normalizes a state name; unknown names are kept so the
// validator reports the transition as not allowed.
func parseStateLenient(name string) workflow.State {
	if s, err := workflow.ParseState(name); err == nil {
		return s
	}
	return workflow.State(name)
}

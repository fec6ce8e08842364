package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/workflow"
)

// CodeBadRequest reports a request body that could not be decoded.
const CodeBadRequest = "BAD_REQUEST"

// Envelope wraps every API response.
type Envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *formengine.Failure `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, logger *slog.Logger, f *formengine.Failure) {
	status := statusFor(f.Code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", f.Code, "err", f.Message)
	}
	writeJSON(w, status, Envelope{Success: false, Error: f})
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	writeFailure(w, logger, formengine.ToFailure(err))
}

func badRequest(w http.ResponseWriter, logger *slog.Logger, msg string) {
	writeFailure(w, logger, &formengine.Failure{Code: CodeBadRequest, Message: msg})
}

func statusFor(code string) int {
	switch code {
	case formengine.CodeTemplateNotFound:
		return http.StatusNotFound
	case CodeBadRequest:
		return http.StatusBadRequest
	case formengine.CodeValidationError:
		return http.StatusUnprocessableEntity
	case workflow.CodeInvalidTransition, workflow.CodeMissingRequiredForms, workflow.CodeInsufficientApprovals:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

package formengine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type codedError struct{}

func (codedError) Error() string { return "coded" }
func (codedError) Code() string  { return CodeInvalidTransition }

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", &TemplateNotFoundError{Name: "1b.docx"}, CodeTemplateNotFound},
		{"wrapped not found", fmt.Errorf("outer: %w", &TemplateNotFoundError{Name: "x"}), CodeTemplateNotFound},
		{"render", &RenderError{Op: "load", Cause: errors.New("boom")}, CodeRenderError},
		{"validation", &ValidationError{Issues: []ValidationIssue{{Field: "a", Message: "required"}}}, CodeValidationError},
		{"failure", Failure{Code: CodeListError, Message: "x"}, CodeListError},
		{"coded", codedError{}, CodeInvalidTransition},
		{"plain", errors.New("plain"), CodeRenderError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestToFailure(t *testing.T) {
	assert.Nil(t, ToFailure(nil))

	f := ToFailure(&RenderError{Op: "save", Template: "1b.docx", Cause: errors.New("disk full")})
	assert.Equal(t, CodeRenderError, f.Code)
	assert.Equal(t, "render 1b.docx failed during save: disk full", f.Message)

	f = ToFailure(fmt.Errorf("list: %w", Failure{Code: CodeListError, Message: "denied"}))
	assert.Equal(t, CodeListError, f.Code)
	assert.Equal(t, "denied", f.Message)
}

func TestValidationError_Message(t *testing.T) {
	one := &ValidationError{Issues: []ValidationIssue{{Field: "ten_de_tai", Message: "required"}}}
	assert.Equal(t, "validation error: ten_de_tai - required", one.Error())

	two := &ValidationError{Issues: []ValidationIssue{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}}
	assert.Equal(t, "2 validation issues:\n  a: x\n  b: y", two.Error())
}

func TestIsConversionError(t *testing.T) {
	assert.True(t, IsConversionError(&ConversionTimeoutError{Command: "soffice", Timeout: time.Second}))
	assert.True(t, IsConversionError(fmt.Errorf("x: %w", &ConversionUnavailableError{Command: "soffice", Cause: errors.New("missing")})))
	assert.False(t, IsConversionError(errors.New("other")))
	assert.True(t, IsTemplateNotFound(&TemplateNotFoundError{}))
}

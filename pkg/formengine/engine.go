package formengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/benjaminschreck/go-formengine/pkg/formengine/doctree"
)

// DefaultUserID is recorded when a render request names no user.
const DefaultUserID = "system"

// RenderRequest asks for one template to be filled and persisted.
type RenderRequest struct {
	Template   string  `json:"template_name" yaml:"template_name"`
	Context    Context `json:"context" yaml:"context"`
	UserID     string  `json:"user_id,omitempty" yaml:"user_id"`
	ProposalID string  `json:"proposal_id,omitempty" yaml:"proposal_id"`
	// ListVariables extends the configured list variables for this call.
	ListVariables []string `json:"list_variables,omitempty" yaml:"list_variables"`
}

// RenderResult records a completed render. It is appended to the audit log
// as is. Paths are relative to the output root.
type RenderResult struct {
	ID         string    `json:"id"`
	Template   string    `json:"template"`
	UserID     string    `json:"user_id"`
	ProposalID *string   `json:"proposal_id"`
	Timestamp  time.Time `json:"timestamp"`
	DocxPath   string    `json:"docx_path"`
	PDFPath    *string   `json:"pdf_path"`
	DocxURL    string    `json:"docx_url,omitempty"`
	PDFURL     *string   `json:"pdf_url,omitempty"`
	SHA256Docx string    `json:"sha256_docx"`
	SHA256PDF  *string   `json:"sha256_pdf"`
	PDFPages   *int      `json:"pdf_pages,omitempty"`
}

// Engine renders templates into artifacts. It owns its paths and
// collaborators; nothing is shared between engines.
type Engine struct {
	config     *Config
	store      *TemplateStore
	converter  Converter
	audit      *AuditLog
	logger     *slog.Logger
	metrics    *Metrics
	processors map[string][]PostProcessor
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConverter replaces the external converter. A nil converter disables
// conversion.
func WithConverter(c Converter) Option {
	return func(e *Engine) {
		e.converter = c
	}
}

// WithMetrics records render metrics.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock sets the time source used for output names and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithCache sets the template cache.
func WithCache(c *TemplateCache) Option {
	return func(e *Engine) {
		if c != nil {
			e.store.cache = c
		}
	}
}

// WithPostProcessor runs p for every render of template. Several processors
// for one template run in registration order.
func WithPostProcessor(template string, p PostProcessor) Option {
	return func(e *Engine) {
		name, err := e.store.FileName(template)
		if err != nil {
			return
		}
		e.processors[name] = append(e.processors[name], p)
	}
}

// New creates an engine for the given configuration. A nil config uses
// DefaultConfig.
func New(config *Config, opts ...Option) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cache := NewTemplateCache(CacheConfig{MaxSize: config.CacheMaxSize, TTL: config.CacheTTL})
	e := &Engine{
		config:     config,
		store:      NewTemplateStore(config.TemplateDir, config.TempFilePrefix, cache),
		audit:      NewAuditLog(filepath.Join(config.LogDir, config.AuditFile)),
		logger:     NewNopLogger(),
		processors: make(map[string][]PostProcessor),
		now:        time.Now,
	}
	if config.ConvertEnabled {
		e.converter = NewCommandConverter(config)
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return *e.config
}

// AuditLog returns the engine's audit log.
func (e *Engine) AuditLog() *AuditLog {
	return e.audit
}

// Templates lists the available templates.
func (e *Engine) Templates() ([]TemplateInfo, error) {
	return e.store.List()
}

// TemplateInfo describes one template.
func (e *Engine) TemplateInfo(name string) (*TemplateInfo, error) {
	return e.store.Info(name)
}

// ConverterAvailable reports whether conversion would be attempted.
func (e *Engine) ConverterAvailable(ctx context.Context) bool {
	return e.converter != nil && e.converter.Available(ctx) == nil
}

// Fill substitutes the request context into doc, runs the template's
// post-processors and applies the formatting pass.
func (e *Engine) Fill(doc *doctree.Document, req RenderRequest) error {
	changed := 0
	walkDocument(doc, func(_ string, p *doctree.Paragraph) {
		if Substitute(p, req.Context) {
			changed++
		}
	})
	e.logger.Debug("substitution applied", "template", req.Template, "paragraphs", changed)

	if name, err := e.store.FileName(req.Template); err == nil {
		for _, p := range e.processors[name] {
			if err := p.Process(doc, req.Context); err != nil {
				return &RenderError{Op: "post-process", Template: name, Cause: err}
			}
		}
	}

	listVars := append(append([]string(nil), e.config.ListVariables...), req.ListVariables...)
	AlignListParagraphs(bodyParagraphs(doc), listVars)
	return nil
}

// Render fills a template, saves it under the output root, attempts
// conversion, hashes the artifacts and appends an audit record.
//
// Template resolution, load, save and audit failures fail the call.
// Conversion problems only leave the secondary artifact out of the result.
func (e *Engine) Render(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	start := time.Now()
	result, err := e.render(context.WithoutCancel(ctx), req)

	label := unknownTemplate
	if name, nerr := e.store.FileName(req.Template); nerr == nil && !IsTemplateNotFound(err) {
		label = name
	}
	if err != nil {
		e.metrics.observeRender(label, "error", time.Since(start))
		e.logger.Error("render failed", "template", label, "error", err)
		return nil, err
	}

	e.metrics.observeRender(label, "ok", time.Since(start))
	e.logger.Info("render complete",
		"template", result.Template,
		"id", result.ID,
		"docx", result.DocxPath,
		"converted", result.PDFPath != nil,
		"duration", time.Since(start))
	return result, nil
}

func (e *Engine) render(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	path, data, err := e.store.Load(req.Template)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	e.logger.Debug("template resolved", "template", name, "path", path)

	doc, err := doctree.Open(data)
	if err != nil {
		return nil, &RenderError{Op: "load", Template: name, Cause: err}
	}

	req.Template = name
	if err := e.Fill(doc, req); err != nil {
		return nil, err
	}

	now := e.now()
	docxPath, err := e.save(doc, now, strings.TrimSuffix(name, filepath.Ext(name)))
	if err != nil {
		return nil, &RenderError{Op: "save", Template: name, Cause: err}
	}

	sumDocx, err := HashFile(docxPath)
	if err != nil {
		return nil, &RenderError{Op: "hash", Template: name, Cause: err}
	}

	userID := req.UserID
	if userID == "" {
		userID = DefaultUserID
	}
	result := &RenderResult{
		ID:         uuid.NewString(),
		Template:   name,
		UserID:     userID,
		Timestamp:  now,
		DocxPath:   e.relative(docxPath),
		SHA256Docx: sumDocx,
	}
	if req.ProposalID != "" {
		result.ProposalID = &req.ProposalID
	}
	result.DocxURL = e.url(result.DocxPath)

	if pdfPath := e.convert(ctx, docxPath); pdfPath != "" {
		if sum, err := HashFile(pdfPath); err != nil {
			e.logger.Warn("converted artifact unreadable", "path", pdfPath, "error", err)
		} else {
			rel := e.relative(pdfPath)
			result.PDFPath = &rel
			result.SHA256PDF = &sum
			if u := e.url(rel); u != "" {
				result.PDFURL = &u
			}
			result.PDFPages = e.pageCount(pdfPath)
		}
	}

	if err := e.audit.Append(result); err != nil {
		return nil, &RenderError{Op: "audit", Template: name, Cause: err}
	}
	e.metrics.observeAudit()
	return result, nil
}

// save writes doc to <output>/<YYYY-MM-DD>/<base>_<HHMMSS>.docx. The file is
// created exclusively; when the name is taken a random suffix is added.
func (e *Engine) save(doc *doctree.Document, now time.Time, base string) (string, error) {
	dir := filepath.Join(e.config.OutputDir, now.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	stem := fmt.Sprintf("%s_%s", base, now.Format("150405"))
	var (
		f    *os.File
		path string
		err  error
	)
	for attempt := 0; attempt < 5; attempt++ {
		name := stem
		if attempt > 0 {
			name = stem + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		}
		path = filepath.Join(dir, name+templateExt)
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if !errors.Is(err, fs.ErrExist) {
			break
		}
	}
	if err != nil {
		return "", err
	}

	if _, err := doc.WriteTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// convert returns the converted artifact path or "" when conversion was
// skipped or failed.
func (e *Engine) convert(ctx context.Context, input string) string {
	if e.converter == nil {
		e.metrics.observeConversion(conversionDisabled)
		return ""
	}

	if err := e.converter.Available(ctx); err != nil {
		e.metrics.observeConversion(conversionUnavailable)
		e.logger.Warn("converter unavailable, skipping conversion", "error", err)
		return ""
	}

	out, err := e.converter.Convert(ctx, input, filepath.Dir(input))
	if err != nil {
		var timeout *ConversionTimeoutError
		if errors.As(err, &timeout) {
			e.metrics.observeConversion(conversionTimeout)
		} else {
			e.metrics.observeConversion(conversionFailed)
		}
		e.logger.Warn("conversion failed", "input", input, "error", err)
		return ""
	}

	e.metrics.observeConversion(conversionOK)
	return out
}

func (e *Engine) pageCount(path string) *int {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		e.logger.Warn("failed to read PDF page count", "path", path, "error", err)
		return nil
	}
	return &n
}

func (e *Engine) relative(path string) string {
	rel, err := filepath.Rel(e.config.OutputDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (e *Engine) url(rel string) string {
	if e.config.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(e.config.BaseURL, "/") + "/files/" + rel
}

package forms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/benjaminschreck/go-formengine/pkg/formengine"
	"github.com/benjaminschreck/go-formengine/pkg/workflow"
)

// Checkbox marks written into outcome forms.
const (
	CheckboxChecked   = "[x]"
	CheckboxUnchecked = "[ ]"
)

// DefaultPlace is the place name of the date line when dia_danh is not given.
const DefaultPlace = "Nam Định"

// Common is the input shared by every form. Unset date parts default to the
// render date.
type Common struct {
	Day          string `mapstructure:"ngay"`
	Month        string `mapstructure:"thang"`
	Year         string `mapstructure:"nam"`
	AcademicYear string `mapstructure:"nam_hoc"`
	Place        string `mapstructure:"dia_danh"`
}

// Outcome is the decision recorded by committee forms. A missing flag means
// approved.
type Outcome struct {
	Approved *bool `mapstructure:"is_approved"`
}

// aliasGroups are keys templates use interchangeably. A missing key takes the
// value of the first present key of its group.
var aliasGroups = [][]string{
	{"ma_so_de_tai", "ma_de_tai"},
	{"chu_nhiem", "ten_chu_nhiem", "ho_ten_chu_nhiem"},
	{"ten_khoa", "khoa"},
}

// outcomeMarks maps checkbox keys to whether they are ticked on approval.
var outcomeMarks = []struct {
	key      string
	approval bool
}{
	{"box_dat", true},
	{"dat", true},
	{"box_de_nghi", true},
	{"box_khong_dat", false},
	{"ko_dat", false},
	{"khong_dat", false},
	{"box_khong_de_nghi", false},
}

// RequestOptions carries the caller fields of a render request.
type RequestOptions struct {
	UserID     string
	ProposalID string
	// Now is the render date used for date defaults. Zero means time.Now.
	Now time.Time
}

// Request prepares input for form id and wraps it in a render request.
func (r *Registry) Request(id workflow.FormID, input formengine.Context, opts RequestOptions) (formengine.RenderRequest, error) {
	f, ok := r.Get(id)
	if !ok {
		return formengine.RenderRequest{}, fmt.Errorf("unknown form %q", id)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	ctx, err := f.Prepare(input, now)
	if err != nil {
		return formengine.RenderRequest{}, err
	}
	return formengine.RenderRequest{
		Template:   f.Template,
		Context:    ctx,
		UserID:     opts.UserID,
		ProposalID: opts.ProposalID,
	}, nil
}

// Prepare returns input completed with the form's defaults, or a
// ValidationError listing every problem found. input is not modified.
func (f Form) Prepare(input formengine.Context, now time.Time) (formengine.Context, error) {
	ctx := formengine.Context{}.Merge(input)
	var issues []formengine.ValidationIssue

	var common Common
	if err := decode(map[string]any(ctx), &common); err != nil {
		issues = append(issues, formengine.ValidationIssue{Field: "ngay", Message: err.Error()})
	}
	applyDates(ctx, common, now)
	applyAliases(ctx)
	for k, v := range f.Defaults {
		setDefault(ctx, k, v)
	}

	if f.Outcome {
		approved, err := Approved(ctx)
		if err != nil {
			issues = append(issues, formengine.ValidationIssue{Field: "is_approved", Message: err.Error()})
		}
		for _, m := range outcomeMarks {
			mark := CheckboxUnchecked
			if approved == m.approval {
				mark = CheckboxChecked
			}
			setDefault(ctx, m.key, mark)
		}
	}

	if f.Rows != nil {
		items, present, err := f.Rows.Items(ctx)
		switch {
		case err != nil:
			issues = append(issues, formengine.ValidationIssue{Field: f.Rows.Key, Message: err.Error()})
		case present && f.Rows.CountKey != "":
			setDefault(ctx, f.Rows.CountKey, strconv.Itoa(len(items)))
		}
	}

	for _, field := range f.Required {
		if blank(ctx[field]) {
			issues = append(issues, formengine.ValidationIssue{Field: field, Message: "is required"})
		}
	}

	if len(issues) > 0 {
		return nil, &formengine.ValidationError{Template: f.Template, Issues: issues}
	}
	return ctx, nil
}

// Approved reads the is_approved flag of ctx. Strings such as "false" and
// numbers are accepted.
func Approved(ctx formengine.Context) (bool, error) {
	var o Outcome
	if err := decode(map[string]any{"is_approved": ctx["is_approved"]}, &o); err != nil {
		return true, err
	}
	if o.Approved == nil {
		return true, nil
	}
	return *o.Approved, nil
}

// DateLine renders "<place>, ngày d tháng m năm y" with non-breaking spaces
// so the line does not wrap.
func DateLine(place, day, month, year string) string {
	return fmt.Sprintf("%s,\u00a0ngày\u00a0%s\u00a0tháng\u00a0%s\u00a0năm\u00a0%s", place, day, month, year)
}

// AcademicYear returns the academic year label starting in t's year.
func AcademicYear(t time.Time) string {
	return fmt.Sprintf("%d-%d", t.Year(), t.Year()+1)
}

func applyDates(ctx formengine.Context, c Common, now time.Time) {
	day := orDefault(c.Day, strconv.Itoa(now.Day()))
	month := orDefault(c.Month, strconv.Itoa(int(now.Month())))
	year := orDefault(c.Year, strconv.Itoa(now.Year()))

	setDefault(ctx, "ngay", day)
	setDefault(ctx, "thang", month)
	setDefault(ctx, "nam", year)
	setDefault(ctx, "nam_hoc", orDefault(c.AcademicYear, AcademicYear(now)))
	setDefault(ctx, "ngay_thang_nam", DateLine(orDefault(c.Place, DefaultPlace), day, month, year))
}

func applyAliases(ctx formengine.Context) {
	for _, group := range aliasGroups {
		var value any
		for _, k := range group {
			if v, ok := ctx[k]; ok && v != nil {
				value = v
				break
			}
		}
		if value == nil {
			continue
		}
		for _, k := range group {
			setDefault(ctx, k, value)
		}
	}
}

func setDefault(ctx formengine.Context, key string, value any) {
	if v, ok := ctx[key]; !ok || v == nil {
		ctx[key] = value
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func blank(v any) bool {
	return strings.TrimSpace(formengine.Stringify(v)) == ""
}

// decode copies loosely typed input into out, converting numbers, booleans
// and strings into each other as needed.
func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

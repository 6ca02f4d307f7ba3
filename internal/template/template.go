// Package template holds the fill-in-the-blanks document templates offered to
// founders (executive summary, pitch, investor update, ...).
package template

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"launchhub/internal/apperrors"
)

//go:embed catalogue/*.yaml
var catalogueFS embed.FS

type VariableType string

const (
	TypeText    VariableType = "text"
	TypeNumber  VariableType = "number"
	TypeDate    VariableType = "date"
	TypeBoolean VariableType = "boolean"
	TypeSelect  VariableType = "select"
)

func (t VariableType) Valid() bool {
	switch t {
	case TypeText, TypeNumber, TypeDate, TypeBoolean, TypeSelect:
		return true
	}
	return false
}

// Variable is a named placeholder a template expects.
type Variable struct {
	Name         string       `json:"name" yaml:"name"`
	Type         VariableType `json:"type" yaml:"type"`
	Required     bool         `json:"required" yaml:"required"`
	Options      []string     `json:"options,omitempty" yaml:"options,omitempty"`
	DefaultValue string       `json:"defaultValue,omitempty" yaml:"default,omitempty"`
}

// Template is a document body with {{ name }} placeholders.
type Template struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Category    string     `json:"category" yaml:"category"`
	Content     string     `json:"content" yaml:"content"`
	Variables   []Variable `json:"variables" yaml:"variables"`
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// DateLayout is the accepted format for date variables.
const DateLayout = "2006-01-02"

// Placeholders returns the distinct placeholder names in content order.
func (t *Template) Placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(t.Content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Validate checks the template definition itself.
func Validate(t *Template) error {
	var errs apperrors.ValidationErrors
	if strings.TrimSpace(t.ID) == "" {
		errs = append(errs, apperrors.NewValidationError("id", "required", "template id is required"))
	}

	declared := make(map[string]bool, len(t.Variables))
	for _, v := range t.Variables {
		if declared[v.Name] {
			errs = append(errs, apperrors.NewValidationError("variables", "duplicate",
				fmt.Sprintf("variable %q declared twice", v.Name)))
			continue
		}
		declared[v.Name] = true
		if !v.Type.Valid() {
			errs = append(errs, apperrors.NewValidationError("variables."+v.Name, "invalid_type",
				fmt.Sprintf("unknown variable type %q", v.Type)))
		}
		if v.Type == TypeSelect && len(v.Options) == 0 {
			errs = append(errs, apperrors.NewValidationError("variables."+v.Name, "missing_options",
				"select variables need options"))
		}
	}

	for _, name := range t.Placeholders() {
		if !declared[name] {
			errs = append(errs, apperrors.NewValidationError("content", "undefined_variable",
				fmt.Sprintf("placeholder {{%s}} has no variable definition", name),
				"Declare "+name+" under variables"))
		}
	}
	return errs.ErrOrNil()
}

// ValidateValues checks user-supplied values against the variable
// definitions. Unknown keys are ignored.
func ValidateValues(t *Template, values map[string]string) error {
	var errs apperrors.ValidationErrors
	for _, v := range t.Variables {
		val, ok := values[v.Name]
		if !ok || val == "" {
			if v.Required && v.DefaultValue == "" {
				errs = append(errs, apperrors.NewValidationError(v.Name, "required", v.Name+" is required"))
			}
			continue
		}
		switch v.Type {
		case TypeNumber:
			if _, err := strconv.ParseFloat(val, 64); err != nil {
				errs = append(errs, apperrors.NewValidationError(v.Name, "invalid_number", v.Name+" must be a number"))
			}
		case TypeDate:
			if _, err := time.Parse(DateLayout, val); err != nil {
				errs = append(errs, apperrors.NewValidationError(v.Name, "invalid_date", v.Name+" must be a date (YYYY-MM-DD)"))
			}
		case TypeBoolean:
			if _, err := strconv.ParseBool(val); err != nil {
				errs = append(errs, apperrors.NewValidationError(v.Name, "invalid_boolean", v.Name+" must be true or false"))
			}
		case TypeSelect:
			if !contains(v.Options, val) {
				errs = append(errs, apperrors.NewValidationError(v.Name, "invalid_option",
					v.Name+" must be one of the listed options", v.Options...))
			}
		}
	}
	return errs.ErrOrNil()
}

// Render substitutes every placeholder. A missing value falls back to the
// variable default, then to the empty string. Render never fails.
func Render(t *Template, values map[string]string) string {
	defaults := make(map[string]string, len(t.Variables))
	for _, v := range t.Variables {
		defaults[v.Name] = v.DefaultValue
	}
	return placeholderRe.ReplaceAllStringFunc(t.Content, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		if val, ok := values[name]; ok && val != "" {
			return val
		}
		return defaults[name]
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Registry holds the available templates.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry loads the built-in catalogue. A malformed built-in template is
// a programming error, so it panics.
func NewRegistry() *Registry {
	r, err := LoadRegistry(catalogueFS)
	if err != nil {
		panic(err)
	}
	return r
}

// LoadRegistry reads every *.yaml file under catalogue/ in fsys.
func LoadRegistry(fsys fs.FS) (*Registry, error) {
	r := &Registry{templates: make(map[string]*Template)}
	files, err := fs.Glob(fsys, "catalogue/*.yaml")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		b, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		var t Template
		if err := yaml.Unmarshal(b, &t); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path.Base(f), err)
		}
		if err := r.Register(&t); err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(f), err)
		}
	}
	return r, nil
}

// Register validates and adds t, replacing any template with the same id.
func (r *Registry) Register(t *Template) error {
	if err := Validate(t); err != nil {
		return err
	}
	r.templates[t.ID] = t
	return nil
}

// Get returns a template by id.
func (r *Registry) Get(id string) (*Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("template not found: %s: %w", id, apperrors.ErrNotFound)
	}
	return t, nil
}

// List returns all templates sorted by id.
func (r *Registry) List() []*Template {
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) ListByCategory(category string) []*Template {
	var out []*Template
	for _, t := range r.List() {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range r.templates {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out
}

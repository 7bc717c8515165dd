package common

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docparse/constants"
)

// FieldError is one rejected input: a job payload field, a CLI argument or
// a template id.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Field, e.Value, e.Reason)
}

// Check inspects one input string and returns the reason it is rejected, or
// "" when it passes.
type Check func(value string) string

// Validator collects FieldErrors across several inputs.
type Validator struct {
	problems []FieldError
}

func NewValidator() *Validator { return &Validator{} }

// Field runs checks in order and records the first failure only, so a blank
// path is reported as missing rather than also as having no extension.
func (v *Validator) Field(name, value string, checks ...Check) *Validator {
	for _, check := range checks {
		if reason := check(value); reason != "" {
			v.problems = append(v.problems, FieldError{Field: name, Value: value, Reason: reason})
			break
		}
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.problems) > 0 }

func (v *Validator) Errors() []FieldError { return v.problems }

// Error joins the recorded problems; nil when there are none.
func (v *Validator) Error() error {
	errs := make([]error, len(v.problems))
	for i, p := range v.problems {
		errs[i] = p
	}
	return errors.Join(errs...)
}

// ValidateAndReturnError maps recorded problems onto codes.InvalidArgument.
func ValidateAndReturnError(v *Validator) error {
	if !v.HasErrors() {
		return nil
	}
	reasons := make([]string, len(v.problems))
	for i, p := range v.problems {
		reasons[i] = p.Error()
	}
	return InvalidArgumentError(strings.Join(reasons, "; "))
}

func Required(value string) string {
	if strings.TrimSpace(value) == "" {
		return "is required"
	}
	return ""
}

// DocumentPath accepts paths whose extension has a layout provider.
func DocumentPath(value string) string {
	ext := constants.NormalizeExt(filepath.Ext(value))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return "is not a .pdf or .json document"
	}
	return ""
}

// Class accepts any spelling constants.Canonicalize maps onto a class.
func Class(value string) string {
	if _, ok := constants.Canonicalize(value); !ok {
		return "is not a document class"
	}
	return ""
}

// TraceID accepts an empty value or a UUID.
func TraceID(value string) string {
	if value == "" {
		return ""
	}
	if _, err := uuid.Parse(value); err != nil {
		return "is not a UUID"
	}
	return ""
}

// TemplateID rejects ids that cannot double as an exemplar directory name.
func TemplateID(value string) string {
	if strings.ContainsAny(value, `/\`) || value == "." || value == ".." {
		return "is not a single directory name"
	}
	return ""
}

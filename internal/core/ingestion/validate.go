package ingestion

import (
	"fmt"
	"slices"
)

// Fixed error texts for configuration errors
const (
	ErrTextInvalidMethod = "Invalid method"
	ErrTextInvalidStep   = "Invalid step"
)

// StepResult is the outcome of ValidateStep. Errors lists every failed field
// in required-list order.
type StepResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func invalid(msg string) StepResult {
	return StepResult{Valid: false, Errors: []string{msg}}
}

// ValidateStep checks every field required by step 1 or 2 of the method.
// Failures are collected, never short-circuited. Forbidden fields are not
// consulted even when present and malformed.
func (r *Registry) ValidateStep(id MethodID, step int, d Draft, atts []Attachment) StepResult {
	m, ok := r.lookup(id)
	if !ok {
		return invalid(ErrTextInvalidMethod)
	}
	required := m.Required(step)
	if required == nil {
		return invalid(ErrTextInvalidStep)
	}

	errs := make([]string, 0, len(required))
	for _, name := range required {
		f := r.fields[name]
		if !r.satisfied(f, d, atts) {
			errs = append(errs, f.Message)
		}
	}
	return StepResult{Valid: len(errs) == 0, Errors: errs}
}

func (r *Registry) satisfied(f Field, d Draft, atts []Attachment) bool {
	switch f.Kind {
	case KindText:
		return present(d[f.Name])
	case KindMinText:
		return minText(d[f.Name], f.Min)
	case KindScopeTarget:
		return targetExempt(d) || present(d[f.Name])
	case KindDigest:
		s, ok := d[f.Name].(string)
		return ok && IsSHA256Hex(s)
	case KindAttachments:
		return len(atts) >= 1
	}
	// unreachable for a loaded registry: Load rejects unknown kinds
	return false
}

// CanProceedToNextStep runs the method's gating predicate for leaving step 1
// or step 2. Step 3 has no next step; sealing is a separate action.
func (r *Registry) CanProceedToNextStep(id MethodID, currentStep int, d Draft, atts []Attachment) bool {
	m, ok := r.lookup(id)
	if !ok {
		return false
	}
	switch currentStep {
	case 1:
		return m.StepGating.Step1ToStep2(d)
	case 2:
		return m.StepGating.Step2ToStep3(d, atts)
	}
	return false
}

// CanSeal runs the method's seal predicate
func (r *Registry) CanSeal(id MethodID, d Draft, mode Mode, atts []Attachment) bool {
	m, ok := r.lookup(id)
	if !ok {
		return false
	}
	return m.StepGating.CanSeal(d, mode, atts)
}

// ShouldShowField reports whether a form control for field should be rendered.
// Unknown methods show nothing.
func (r *Registry) ShouldShowField(id MethodID, field string) bool {
	m, ok := r.lookup(id)
	if !ok {
		return false
	}
	return !m.Forbids(field)
}

// CheckDeclaration verifies the declared evidence type and scope are in the
// method's allowed sets. It returns one message per violation.
func (r *Registry) CheckDeclaration(id MethodID, d Draft) []string {
	m, ok := r.lookup(id)
	if !ok {
		return []string{ErrTextInvalidMethod}
	}
	var errs []string
	if et := EvidenceType(d.Text(FieldDatasetType)); !slices.Contains(m.AllowedEvidenceTypes, et) {
		errs = append(errs, fmt.Sprintf("Dataset type %q is not allowed for %s", et, m.Label))
	}
	if st := ScopeType(d.Text(FieldDeclaredScope)); !slices.Contains(m.AllowedScopeTypes, st) {
		errs = append(errs, fmt.Sprintf("Declared scope %q is not allowed for %s", st, m.Label))
	}
	return errs
}

// ValidateStep validates against the default registry
func ValidateStep(id MethodID, step int, d Draft, atts []Attachment) StepResult {
	return Default().ValidateStep(id, step, d, atts)
}

// CanProceedToNextStep gates against the default registry
func CanProceedToNextStep(id MethodID, currentStep int, d Draft, atts []Attachment) bool {
	return Default().CanProceedToNextStep(id, currentStep, d, atts)
}

// CanSeal gates sealing against the default registry
func CanSeal(id MethodID, d Draft, mode Mode, atts []Attachment) bool {
	return Default().CanSeal(id, d, mode, atts)
}

// ShouldShowField checks visibility against the default registry
func ShouldShowField(id MethodID, field string) bool {
	return Default().ShouldShowField(id, field)
}

// CheckDeclaration checks the declaration against the default registry
func CheckDeclaration(id MethodID, d Draft) []string {
	return Default().CheckDeclaration(id, d)
}

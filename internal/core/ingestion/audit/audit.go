// Package audit drives the ingestion registry through every allowed
// method × evidence type × scope × channel × mode combination and reports
// any rule that does not hold. It is a correctness oracle for the
// validators, used by the test suite, the audit CLI and the API.
package audit

import (
	"fmt"
	"slices"
	"strings"

	"evidencegate/internal/core/ingestion"
)

// Check names
const (
	CheckMinimalValid     = "minimal_valid"
	CheckForbiddenPoison  = "forbidden_poison"
	CheckGatingAgreement  = "gating_agreement"
	CheckHashComputedBy   = "hash_computed_by"
	CheckLabelDrift       = "label_drift"
	CheckSealMode         = "seal_mode"
	CheckSealNotResealed  = "seal_not_resealed"
	CheckSealUnaffected   = "seal_poison"
	CheckDeclarationAllow = "declaration_allowed"
)

// driftLabel must never appear in a method label
const driftLabel = "Supplier Portal"

// Options narrows a run. Empty fields mean everything.
type Options struct {
	Methods  []ingestion.MethodID
	Channels []ingestion.SubmissionChannel
	Modes    []ingestion.Mode
}

// Finding is one violated rule
type Finding struct {
	Check        string                      `json:"check" yaml:"check"`
	Method       ingestion.MethodID          `json:"method" yaml:"method"`
	EvidenceType ingestion.EvidenceType      `json:"evidence_type,omitempty" yaml:"evidence_type,omitempty"`
	Scope        ingestion.ScopeType         `json:"scope,omitempty" yaml:"scope,omitempty"`
	Channel      ingestion.SubmissionChannel `json:"channel,omitempty" yaml:"channel,omitempty"`
	Mode         ingestion.Mode              `json:"mode,omitempty" yaml:"mode,omitempty"`
	Detail       string                      `json:"detail" yaml:"detail"`
}

func (f Finding) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", f.Check, f.Method)
	if f.EvidenceType != "" {
		fmt.Fprintf(&b, " %s/%s/%s/%s", f.EvidenceType, f.Scope, f.Channel, f.Mode)
	}
	fmt.Fprintf(&b, ": %s", f.Detail)
	return b.String()
}

// Report summarises a run
type Report struct {
	Combinations int       `json:"combinations" yaml:"combinations"`
	Checks       int       `json:"checks" yaml:"checks"`
	Findings     []Finding `json:"findings" yaml:"findings"`
}

// OK reports whether the run found nothing
func (r Report) OK() bool { return len(r.Findings) == 0 }

// combo is the coordinates of one enumerated case
type combo struct {
	method  ingestion.MethodID
	et      ingestion.EvidenceType
	scope   ingestion.ScopeType
	channel ingestion.SubmissionChannel
	mode    ingestion.Mode
}

type runner struct {
	reg *ingestion.Registry
	rep Report
}

func (rn *runner) expect(ok bool, check string, c combo, format string, args ...any) {
	rn.rep.Checks++
	if ok {
		return
	}
	rn.rep.Findings = append(rn.rep.Findings, Finding{
		Check:        check,
		Method:       c.method,
		EvidenceType: c.et,
		Scope:        c.scope,
		Channel:      c.channel,
		Mode:         c.mode,
		Detail:       fmt.Sprintf(format, args...),
	})
}

// Run audits reg
func Run(reg *ingestion.Registry, opts Options) Report {
	channels := opts.Channels
	if len(channels) == 0 {
		channels = ingestion.Channels
	}
	modes := opts.Modes
	if len(modes) == 0 {
		modes = ingestion.Modes
	}

	rn := &runner{reg: reg, rep: Report{Findings: []Finding{}}}
	for _, m := range reg.Methods() {
		if len(opts.Methods) > 0 && !slices.Contains(opts.Methods, m.ID) {
			continue
		}
		rn.method(&m)
		for _, et := range m.AllowedEvidenceTypes {
			for _, scope := range m.AllowedScopeTypes {
				for _, ch := range channels {
					for _, mode := range modes {
						rn.rep.Combinations++
						rn.combination(&m, combo{m.ID, et, scope, ch, mode})
					}
				}
			}
		}
	}
	return rn.rep
}

func (rn *runner) method(m *ingestion.MethodConfig) {
	c := combo{method: m.ID}
	rn.expect(strings.TrimSpace(m.HashBehavior.ComputedBy) != "", CheckHashComputedBy, c,
		"hash_behavior.computed_by is empty")
	rn.expect(!strings.Contains(m.Label, driftLabel), CheckLabelDrift, c,
		"label %q contains %q", m.Label, driftLabel)
}

func (rn *runner) combination(m *ingestion.MethodConfig, c combo) {
	d, atts := MinimalDraft(rn.reg, m, c.et, c.scope, c.channel)
	poisoned := Poison(m, d)

	rn.expect(len(rn.reg.CheckDeclaration(m.ID, d)) == 0, CheckDeclarationAllow, c,
		"allowed declaration rejected: %v", rn.reg.CheckDeclaration(m.ID, d))

	for _, step := range []int{1, 2} {
		res := rn.reg.ValidateStep(m.ID, step, d, atts)
		rn.expect(res.Valid, CheckMinimalValid, c,
			"minimal draft fails step %d: %v", step, res.Errors)

		pres := rn.reg.ValidateStep(m.ID, step, poisoned, atts)
		rn.expect(sameResult(res, pres), CheckForbiddenPoison, c,
			"forbidden fields changed step %d from %v to %v", step, res, pres)

		rn.gating(m, c, step, d, atts)
		rn.gating(m, c, step, poisoned, atts)

		for _, name := range m.Required(step) {
			bd, batts, removed := without(rn.reg, d, atts, name)
			rn.gating(m, c, step, bd, batts)

			bres := rn.reg.ValidateStep(m.ID, step, bd, batts)
			if removed {
				rn.expect(!bres.Valid, CheckMinimalValid, c,
					"step %d still valid without %s", step, name)
			}
			pbres := rn.reg.ValidateStep(m.ID, step, Poison(m, bd), batts)
			rn.expect(sameResult(bres, pbres), CheckForbiddenPoison, c,
				"forbidden fields changed step %d without %s from %v to %v", step, name, bres, pbres)
		}
	}

	canSeal := rn.reg.CanSeal(m.ID, d, c.mode, atts)
	rn.expect(canSeal == (c.mode == ingestion.ModeProduction), CheckSealMode, c,
		"CanSeal=%t in mode %s", canSeal, c.mode)
	rn.expect(rn.reg.CanSeal(m.ID, poisoned, c.mode, atts) == canSeal, CheckSealUnaffected, c,
		"forbidden fields changed CanSeal")

	sealed := d.Clone()
	sealed[ingestion.FieldStatus] = ingestion.StatusSealed
	rn.expect(!rn.reg.CanSeal(m.ID, sealed, c.mode, atts), CheckSealNotResealed, c,
		"CanSeal true on a SEALED draft")
}

// gating checks that the method's transition predicate for leaving step
// agrees with ValidateStep's verdict on the same draft
func (rn *runner) gating(m *ingestion.MethodConfig, c combo, step int, d ingestion.Draft, atts []ingestion.Attachment) {
	valid := rn.reg.ValidateStep(m.ID, step, d, atts).Valid
	gate := rn.reg.CanProceedToNextStep(m.ID, step, d, atts)
	rn.expect(valid == gate, CheckGatingAgreement, c,
		"step %d gating=%t but validation=%t (draft keys %v, %d attachments)",
		step, gate, valid, keys(d), len(atts))
}

func sameResult(a, b ingestion.StepResult) bool {
	return a.Valid == b.Valid && slices.Equal(a.Errors, b.Errors)
}

func keys(d ingestion.Draft) []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

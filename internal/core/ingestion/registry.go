// Package ingestion holds the Contract 1 ingestion method registry: the static
// rule table of required and forbidden fields per method, the step-gating
// predicates and the hash provenance metadata, plus the pure validators that
// consult it. Nothing here performs I/O or keeps drafts.
package ingestion

import (
	"bytes"
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed methods.yaml
var embedded []byte

// MethodID identifies an ingestion method
type MethodID string

// Known ingestion methods
const (
	MethodManualEntry   MethodID = "MANUAL_ENTRY"
	MethodFileUpload    MethodID = "FILE_UPLOAD"
	MethodAPIPushDigest MethodID = "API_PUSH_DIGEST"
	MethodERPExportFile MethodID = "ERP_EXPORT_FILE"
	MethodERPAPIPull    MethodID = "ERP_API_PULL"
)

// KnownMethods lists every method id the registry accepts, in table order
var KnownMethods = []MethodID{
	MethodManualEntry,
	MethodFileUpload,
	MethodAPIPushDigest,
	MethodERPExportFile,
	MethodERPAPIPull,
}

// EvidenceType classifies the dataset an evidence record declares
type EvidenceType string

// ScopeType classifies the business entity an evidence record pertains to
type ScopeType string

// ScopeUnknown is the only scope that does not need a concrete scope_target
const ScopeUnknown ScopeType = "UNKNOWN"

// SubmissionChannel records who submitted the evidence
type SubmissionChannel string

// Submission channels
const (
	ChannelInternalUser       SubmissionChannel = "INTERNAL_USER"
	ChannelSupplierSubmission SubmissionChannel = "SUPPLIER_SUBMISSION"
	ChannelSystemIntegration  SubmissionChannel = "SYSTEM_INTEGRATION"
)

// Channels lists every submission channel
var Channels = []SubmissionChannel{ChannelInternalUser, ChannelSupplierSubmission, ChannelSystemIntegration}

// Mode is the environment a draft is being filled in
type Mode string

// Modes
const (
	ModeProduction Mode = "production"
	ModeSimulation Mode = "simulation"
)

// Modes lists every mode
var Modes = []Mode{ModeProduction, ModeSimulation}

// Trust levels
const (
	TrustLow    = "LOW"
	TrustMedium = "MEDIUM"
	TrustHigh   = "HIGH"
)

// StatusSealed is the draft status after a successful seal
const StatusSealed = "SEALED"

// Hash origins
const (
	ComputedByServer   = "server"
	ComputedByExternal = "external"
)

// EvidenceTypeInfo is one entry of the global evidence type enumeration
type EvidenceTypeInfo struct {
	ID    EvidenceType `yaml:"id" json:"id"`
	Label string       `yaml:"label" json:"label"`
}

// ScopeTypeInfo is one entry of the global scope enumeration
type ScopeTypeInfo struct {
	ID             ScopeType `yaml:"id" json:"id"`
	Label          string    `yaml:"label" json:"label"`
	RequiresTarget bool      `yaml:"requires_target" json:"requires_target"`
}

// Defaults is the metadata stamped onto sealed evidence when the draft does not override it
type Defaults struct {
	TrustLevel   string `yaml:"trust_level" json:"trust_level"`
	ReviewStatus string `yaml:"review_status" json:"review_status"`
	SourceSystem string `yaml:"source_system" json:"source_system"`
}

// HashBehavior describes where the payload digest comes from and when it may be shown
type HashBehavior struct {
	ComputedBy          string `yaml:"computed_by" json:"computed_by"`
	DisplayInStep2      bool   `yaml:"display_in_step2" json:"display_in_step2"`
	DisplayInStep3      bool   `yaml:"display_in_step3" json:"display_in_step3"`
	Source              string `yaml:"source" json:"source"`
	RequiresAttachments bool   `yaml:"requires_attachments" json:"requires_attachments"`
}

// Idempotency names the draft field that deduplicates repeat submissions
type Idempotency struct {
	Enforced bool   `yaml:"enforced" json:"enforced"`
	Key      string `yaml:"key" json:"key"`
	Scope    string `yaml:"scope" json:"scope"`
}

// StepGating holds the per-method transition predicates
type StepGating struct {
	Step1ToStep2 func(d Draft) bool
	Step2ToStep3 func(d Draft, atts []Attachment) bool
	CanSeal      func(d Draft, mode Mode, atts []Attachment) bool
}

// MethodConfig is the immutable rule record for one ingestion method
type MethodConfig struct {
	ID                   MethodID       `yaml:"id" json:"id"`
	Label                string         `yaml:"label" json:"label"`
	Description          string         `yaml:"description" json:"description"`
	AllowedEvidenceTypes []EvidenceType `yaml:"allowed_evidence_types" json:"allowed_evidence_types"`
	AllowedScopeTypes    []ScopeType    `yaml:"allowed_scope_types" json:"allowed_scope_types"`
	Step1Required        []string       `yaml:"step1_required" json:"step1_required"`
	Step2Required        []string       `yaml:"step2_required" json:"step2_required"`
	ForbiddenFields      []string       `yaml:"forbidden_fields" json:"forbidden_fields"`
	Defaults             Defaults       `yaml:"defaults" json:"defaults"`
	HashBehavior         HashBehavior   `yaml:"hash_behavior" json:"hash_behavior"`
	Idempotency          *Idempotency   `yaml:"idempotency" json:"idempotency,omitempty"`

	StepGating StepGating `yaml:"-" json:"-"`
}

// Required returns the required field list for step 1 or 2, nil otherwise
func (m *MethodConfig) Required(step int) []string {
	switch step {
	case 1:
		return m.Step1Required
	case 2:
		return m.Step2Required
	}
	return nil
}

// Forbids reports whether field is in the method's forbidden set
func (m *MethodConfig) Forbids(field string) bool {
	return slices.Contains(m.ForbiddenFields, field)
}

// Allows reports whether the method may declare the evidence type and scope
func (m *MethodConfig) Allows(et EvidenceType, scope ScopeType) bool {
	return slices.Contains(m.AllowedEvidenceTypes, et) && slices.Contains(m.AllowedScopeTypes, scope)
}

func (m *MethodConfig) clone() *MethodConfig {
	c := *m
	c.AllowedEvidenceTypes = slices.Clone(m.AllowedEvidenceTypes)
	c.AllowedScopeTypes = slices.Clone(m.AllowedScopeTypes)
	c.Step1Required = slices.Clone(m.Step1Required)
	c.Step2Required = slices.Clone(m.Step2Required)
	c.ForbiddenFields = slices.Clone(m.ForbiddenFields)
	if m.Idempotency != nil {
		idem := *m.Idempotency
		c.Idempotency = &idem
	}
	return &c
}

type rawTable struct {
	Version       int                `yaml:"version"`
	EvidenceTypes []EvidenceTypeInfo `yaml:"evidence_types"`
	ScopeTypes    []ScopeTypeInfo    `yaml:"scope_types"`
	Fields        map[string]Field   `yaml:"fields"`
	Methods       []MethodConfig     `yaml:"methods"`
}

// Registry is a loaded, validated rule table. Safe for concurrent use.
type Registry struct {
	version  int
	evidence []EvidenceTypeInfo
	scopes   []ScopeTypeInfo
	scopeBy  map[ScopeType]ScopeTypeInfo
	fields   map[string]Field
	methods  []*MethodConfig
	byID     map[MethodID]*MethodConfig
}

// LoadOption adjusts how a table is bound at load time
type LoadOption func(*loadOptions)

type loadOptions struct {
	gating map[MethodID]StepGating
}

// WithGating replaces the gating predicates bound to one method
func WithGating(id MethodID, g StepGating) LoadOption {
	return func(o *loadOptions) { o.gating[id] = g }
}

// Load parses and validates a rule table. Any violated invariant is an error;
// a table that loads is never partially applied.
func Load(data []byte, opts ...LoadOption) (*Registry, error) {
	o := loadOptions{gating: make(map[MethodID]StepGating, len(builtinGating))}
	for id, g := range builtinGating {
		o.gating[id] = g
	}
	for _, opt := range opts {
		opt(&o)
	}

	var rt rawTable
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rt); err != nil {
		return nil, fmt.Errorf("ingestion: parse method table: %w", err)
	}
	if rt.Version != 1 {
		return nil, fmt.Errorf("ingestion: unsupported method table version %d (want 1)", rt.Version)
	}

	r := &Registry{
		version: rt.Version,
		scopeBy: make(map[ScopeType]ScopeTypeInfo, len(rt.ScopeTypes)),
		fields:  make(map[string]Field, len(rt.Fields)),
		byID:    make(map[MethodID]*MethodConfig, len(rt.Methods)),
	}

	evSeen := make(map[EvidenceType]bool, len(rt.EvidenceTypes))
	for _, e := range rt.EvidenceTypes {
		if strings.TrimSpace(string(e.ID)) == "" {
			return nil, fmt.Errorf("ingestion: evidence type with empty id")
		}
		if evSeen[e.ID] {
			return nil, fmt.Errorf("ingestion: duplicate evidence type %s", e.ID)
		}
		evSeen[e.ID] = true
		r.evidence = append(r.evidence, e)
	}
	for _, s := range rt.ScopeTypes {
		if strings.TrimSpace(string(s.ID)) == "" {
			return nil, fmt.Errorf("ingestion: scope type with empty id")
		}
		if _, dup := r.scopeBy[s.ID]; dup {
			return nil, fmt.Errorf("ingestion: duplicate scope type %s", s.ID)
		}
		if s.RequiresTarget == (s.ID == ScopeUnknown) {
			return nil, fmt.Errorf("ingestion: scope type %s: requires_target must be %t", s.ID, s.ID != ScopeUnknown)
		}
		r.scopeBy[s.ID] = s
		r.scopes = append(r.scopes, s)
	}
	if len(r.evidence) == 0 || len(r.scopes) == 0 {
		return nil, fmt.Errorf("ingestion: evidence and scope enumerations must be non-empty")
	}

	for name, f := range rt.Fields {
		f.Name = name
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("ingestion: field %s: %w", name, err)
		}
		r.fields[name] = f
	}

	for i := range rt.Methods {
		m := rt.Methods[i]
		if err := r.checkMethod(&m); err != nil {
			return nil, fmt.Errorf("ingestion: method %s: %w", m.ID, err)
		}
		g, ok := o.gating[m.ID]
		if !ok || g.Step1ToStep2 == nil || g.Step2ToStep3 == nil || g.CanSeal == nil {
			return nil, fmt.Errorf("ingestion: method %s: no gating predicates bound", m.ID)
		}
		m.StepGating = g
		r.methods = append(r.methods, &m)
		r.byID[m.ID] = &m
	}
	if len(r.methods) == 0 {
		return nil, fmt.Errorf("ingestion: method table is empty")
	}

	return r, nil
}

func (r *Registry) checkMethod(m *MethodConfig) error {
	if !slices.Contains(KnownMethods, m.ID) {
		return fmt.Errorf("unknown method id")
	}
	if _, dup := r.byID[m.ID]; dup {
		return fmt.Errorf("duplicate method id")
	}
	if strings.TrimSpace(m.Label) == "" {
		return fmt.Errorf("empty label")
	}

	if len(m.AllowedEvidenceTypes) == 0 {
		return fmt.Errorf("allowed_evidence_types is empty")
	}
	for _, et := range m.AllowedEvidenceTypes {
		if !r.hasEvidence(et) {
			return fmt.Errorf("allowed evidence type %s is not in the global enumeration", et)
		}
	}
	if len(m.AllowedScopeTypes) == 0 {
		return fmt.Errorf("allowed_scope_types is empty")
	}
	for _, st := range m.AllowedScopeTypes {
		if _, ok := r.scopeBy[st]; !ok {
			return fmt.Errorf("allowed scope type %s is not in the global enumeration", st)
		}
	}

	required := make(map[string]bool, len(m.Step1Required)+len(m.Step2Required))
	for step, list := range [][]string{m.Step1Required, m.Step2Required} {
		if len(list) == 0 {
			return fmt.Errorf("step%d_required is empty", step+1)
		}
		for _, name := range list {
			if _, ok := r.fields[name]; !ok {
				return fmt.Errorf("step%d required field %q has no validation rule", step+1, name)
			}
			if required[name] {
				return fmt.Errorf("field %q is required more than once", name)
			}
			required[name] = true
		}
	}
	for _, name := range m.ForbiddenFields {
		if _, ok := r.fields[name]; !ok {
			return fmt.Errorf("forbidden field %q is not in the field catalog", name)
		}
		if required[name] {
			return fmt.Errorf("field %q is both required and forbidden", name)
		}
	}

	switch m.HashBehavior.ComputedBy {
	case ComputedByServer, ComputedByExternal:
	default:
		return fmt.Errorf("hash_behavior.computed_by %q must be %s or %s",
			m.HashBehavior.ComputedBy, ComputedByServer, ComputedByExternal)
	}
	if strings.TrimSpace(m.HashBehavior.Source) == "" {
		return fmt.Errorf("hash_behavior.source is empty")
	}

	switch m.Defaults.TrustLevel {
	case TrustLow, TrustMedium, TrustHigh:
	default:
		return fmt.Errorf("defaults.trust_level %q is not LOW, MEDIUM or HIGH", m.Defaults.TrustLevel)
	}
	if m.Defaults.ReviewStatus == "" || m.Defaults.SourceSystem == "" {
		return fmt.Errorf("defaults.review_status and defaults.source_system are required")
	}

	if idem := m.Idempotency; idem != nil && idem.Enforced {
		if !required[idem.Key] {
			return fmt.Errorf("idempotency key %q is not a required field", idem.Key)
		}
		if idem.Scope == "" {
			return fmt.Errorf("idempotency scope is empty")
		}
	}
	return nil
}

func (r *Registry) hasEvidence(et EvidenceType) bool {
	for _, e := range r.evidence {
		if e.ID == et {
			return true
		}
	}
	return false
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry loaded from the embedded table. An invalid
// embedded table is a build defect and panics.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(embedded)
		if err != nil {
			panic(err)
		}
		defaultReg = r
	})
	return defaultReg
}

// Table returns a copy of the embedded method table
func Table() []byte { return bytes.Clone(embedded) }

// Version is the table format version
func (r *Registry) Version() int { return r.version }

// lookup returns the shared config without copying; callers must not mutate it
func (r *Registry) lookup(id MethodID) (*MethodConfig, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// GetMethodConfig returns a copy of the method's config, or nil for unknown ids
func (r *Registry) GetMethodConfig(id MethodID) *MethodConfig {
	m, ok := r.lookup(id)
	if !ok {
		return nil
	}
	return m.clone()
}

// Methods returns copies of every method config in table order
func (r *Registry) Methods() []MethodConfig {
	out := make([]MethodConfig, 0, len(r.methods))
	for _, m := range r.methods {
		out = append(out, *m.clone())
	}
	return out
}

// EvidenceTypes returns the global evidence type enumeration
func (r *Registry) EvidenceTypes() []EvidenceTypeInfo { return slices.Clone(r.evidence) }

// ScopeTypes returns the global scope enumeration
func (r *Registry) ScopeTypes() []ScopeTypeInfo { return slices.Clone(r.scopes) }

// Scope returns the scope entry for id
func (r *Registry) Scope(id ScopeType) (ScopeTypeInfo, bool) {
	s, ok := r.scopeBy[id]
	return s, ok
}

// Field returns the catalog entry for a field name
func (r *Registry) Field(name string) (Field, bool) {
	f, ok := r.fields[name]
	return f, ok
}

// GetMethodConfig looks up a method in the default registry
func GetMethodConfig(id MethodID) *MethodConfig { return Default().GetMethodConfig(id) }

// Methods lists the default registry's methods
func Methods() []MethodConfig { return Default().Methods() }

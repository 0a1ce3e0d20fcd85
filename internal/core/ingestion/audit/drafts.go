package audit

import (
	"evidencegate/internal/core/ingestion"
)

// poison values cycle through types a stray field from another method might carry
var poison = []any{
	"POISON",
	"",
	"zz",
	0,
	false,
	[]any{"junk"},
	map[string]any{"nested": true},
	nil,
}

// MinimalDraft builds the smallest draft that satisfies both steps of m for
// the given declaration, using catalog examples for free-form fields. The
// attachment list holds one file when the method needs one.
func MinimalDraft(
	reg *ingestion.Registry,
	m *ingestion.MethodConfig,
	et ingestion.EvidenceType,
	scope ingestion.ScopeType,
	channel ingestion.SubmissionChannel,
) (ingestion.Draft, []ingestion.Attachment) {
	d := ingestion.Draft{}
	var atts []ingestion.Attachment
	if channel != "" {
		d[ingestion.FieldSubmissionChannel] = string(channel)
	}

	for _, list := range [][]string{m.Step1Required, m.Step2Required} {
		for _, name := range list {
			f, _ := reg.Field(name)
			switch {
			case name == ingestion.FieldDatasetType:
				d[name] = string(et)
			case name == ingestion.FieldDeclaredScope:
				d[name] = string(scope)
			case f.Kind == ingestion.KindScopeTarget:
				if s, ok := reg.Scope(scope); ok && !s.RequiresTarget {
					continue
				}
				d[name] = f.Example
			case f.Kind == ingestion.KindAttachments:
				atts = []ingestion.Attachment{{
					FileName: "evidence.csv",
					SHA256:   "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
				}}
			default:
				d[name] = f.Example
			}
		}
	}
	return d, atts
}

// Poison returns a copy of d with every forbidden field of m set to junk
func Poison(m *ingestion.MethodConfig, d ingestion.Draft) ingestion.Draft {
	out := d.Clone()
	for i, name := range m.ForbiddenFields {
		out[name] = poison[i%len(poison)]
	}
	return out
}

// without removes one required field, or the attachments for an attachment
// field. removed is false when there was nothing to take away, as with the
// scope target of an UNKNOWN scope.
func without(reg *ingestion.Registry, d ingestion.Draft, atts []ingestion.Attachment, name string) (ingestion.Draft, []ingestion.Attachment, bool) {
	if f, _ := reg.Field(name); f.Kind == ingestion.KindAttachments {
		return d, nil, len(atts) > 0
	}
	_, had := d[name]
	out := d.Clone()
	delete(out, name)
	return out, atts, had
}

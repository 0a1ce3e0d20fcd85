package audit

import (
	"bytes"
	"strings"
	"testing"

	"evidencegate/internal/core/ingestion"
)

func TestRunDefaultRegistryIsClean(t *testing.T) {
	rep := Run(ingestion.Default(), Options{})
	for _, f := range rep.Findings {
		t.Errorf("finding: %s", f)
	}
	// allowed evidence × scope pairs: 4*5 + 8*7 + 5*5 + 4*7 + 3*6 = 147
	if want := 147 * len(ingestion.Channels) * len(ingestion.Modes); rep.Combinations != want {
		t.Fatalf("combinations = %d, want %d", rep.Combinations, want)
	}
	if rep.Checks <= rep.Combinations {
		t.Fatalf("checks = %d, expected several per combination", rep.Checks)
	}
	if !rep.OK() {
		t.Fatalf("report not OK")
	}
}

func TestRunNarrowedByOptions(t *testing.T) {
	rep := Run(ingestion.Default(), Options{
		Methods:  []ingestion.MethodID{ingestion.MethodERPAPIPull},
		Channels: []ingestion.SubmissionChannel{ingestion.ChannelSystemIntegration},
		Modes:    []ingestion.Mode{ingestion.ModeProduction},
	})
	if rep.Combinations != 18 {
		t.Fatalf("combinations = %d, want 18", rep.Combinations)
	}
	if !rep.OK() {
		t.Fatalf("findings: %v", rep.Findings)
	}
}

func TestMinimalDraftPassesBothSteps(t *testing.T) {
	reg := ingestion.Default()
	for _, m := range reg.Methods() {
		for _, scope := range m.AllowedScopeTypes {
			d, atts := MinimalDraft(reg, &m, m.AllowedEvidenceTypes[0], scope, ingestion.ChannelInternalUser)
			for _, step := range []int{1, 2} {
				if res := reg.ValidateStep(m.ID, step, d, atts); !res.Valid {
					t.Fatalf("%s/%s step %d: %v", m.ID, scope, step, res.Errors)
				}
			}
			_, hasTarget := d[ingestion.FieldScopeTarget]
			if hasTarget == (scope == ingestion.ScopeUnknown) {
				t.Fatalf("%s/%s scope_target present = %t", m.ID, scope, hasTarget)
			}
			if m.HashBehavior.RequiresAttachments != (len(atts) > 0) {
				t.Fatalf("%s attachments = %d", m.ID, len(atts))
			}
		}
	}
}

func TestPoisonSetsEveryForbiddenField(t *testing.T) {
	m := ingestion.GetMethodConfig(ingestion.MethodFileUpload)
	d := ingestion.Draft{ingestion.FieldDatasetType: "BOM"}
	p := Poison(m, d)
	for _, f := range m.ForbiddenFields {
		if _, ok := p[f]; !ok {
			t.Fatalf("forbidden field %s not poisoned", f)
		}
	}
	if len(d) != 1 {
		t.Fatalf("Poison mutated its input")
	}
}

func TestRunDetectsGatingDrift(t *testing.T) {
	// step 1 gating forgets the external reference, so it passes drafts validation rejects
	loose := ingestion.GetMethodConfig(ingestion.MethodManualEntry).StepGating
	push := ingestion.GetMethodConfig(ingestion.MethodAPIPushDigest).StepGating
	push.Step1ToStep2 = loose.Step1ToStep2

	reg, err := ingestion.Load(ingestion.Table(), ingestion.WithGating(ingestion.MethodAPIPushDigest, push))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rep := Run(reg, Options{})
	if rep.OK() {
		t.Fatalf("drift not detected")
	}
	for _, f := range rep.Findings {
		if f.Check != CheckGatingAgreement || f.Method != ingestion.MethodAPIPushDigest {
			t.Fatalf("unexpected finding: %s", f)
		}
	}
}

func TestRunDetectsSealInSimulation(t *testing.T) {
	file := ingestion.GetMethodConfig(ingestion.MethodFileUpload).StepGating
	file.CanSeal = func(d ingestion.Draft, _ ingestion.Mode, atts []ingestion.Attachment) bool {
		return len(atts) > 0
	}
	reg, err := ingestion.Load(ingestion.Table(), ingestion.WithGating(ingestion.MethodFileUpload, file))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rep := Run(reg, Options{Methods: []ingestion.MethodID{ingestion.MethodFileUpload}})
	var mode, resealed bool
	for _, f := range rep.Findings {
		switch f.Check {
		case CheckSealMode:
			mode = true
		case CheckSealNotResealed:
			resealed = true
		}
	}
	if !mode || !resealed {
		t.Fatalf("seal findings missing: %v", rep.Findings)
	}
}

func TestRunDetectsLabelDrift(t *testing.T) {
	data := bytes.Replace(ingestion.Table(), []byte("label: File Upload"), []byte("label: Supplier Portal Upload"), 1)
	reg, err := ingestion.Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rep := Run(reg, Options{Methods: []ingestion.MethodID{ingestion.MethodFileUpload}})
	if len(rep.Findings) != 1 || rep.Findings[0].Check != CheckLabelDrift {
		t.Fatalf("findings = %v, want one label drift", rep.Findings)
	}
	if !strings.Contains(rep.Findings[0].String(), "Supplier Portal") {
		t.Fatalf("finding text = %q", rep.Findings[0].String())
	}
}

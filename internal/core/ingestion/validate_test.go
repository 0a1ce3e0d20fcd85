package ingestion

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var hex64 = strings.Repeat("a", 64)

func declarationDraft() Draft {
	return Draft{
		FieldDatasetType:     "SUPPLIER_MASTER",
		FieldDeclaredScope:   "SUPPLIER",
		FieldScopeTarget:     "SUP-1",
		FieldWhyThisEvidence: "Annual refresh of the supplier master",
	}
}

func oneFile() []Attachment {
	return []Attachment{{FileName: "a.csv", SHA256: hex64}}
}

func TestValidateStepScenarios(t *testing.T) {
	tests := []struct {
		name   string
		method MethodID
		step   int
		draft  Draft
		atts   []Attachment
		want   StepResult
	}{
		{
			name:   "file upload without attachments",
			method: MethodFileUpload,
			step:   2,
			draft:  Draft{},
			want:   StepResult{Valid: false, Errors: []string{"At least one file attachment is required"}},
		},
		{
			name:   "api push digest payload",
			method: MethodAPIPushDigest,
			step:   2,
			draft:  Draft{FieldPayloadDigest: hex64, FieldReceivedAtUTC: "2025-01-01T00:00:00Z"},
			want:   StepResult{Valid: true, Errors: []string{}},
		},
		{
			name:   "unknown method",
			method: "NOT_A_METHOD",
			step:   1,
			draft:  Draft{},
			want:   StepResult{Valid: false, Errors: []string{"Invalid method"}},
		},
		{
			name:   "unknown method wins over bad step",
			method: "NOT_A_METHOD",
			step:   7,
			want:   StepResult{Valid: false, Errors: []string{"Invalid method"}},
		},
		{
			name:   "step 3 is not validated",
			method: MethodManualEntry,
			step:   3,
			draft:  declarationDraft(),
			want:   StepResult{Valid: false, Errors: []string{"Invalid step"}},
		},
		{
			name:   "step 0",
			method: MethodManualEntry,
			step:   0,
			want:   StepResult{Valid: false, Errors: []string{"Invalid step"}},
		},
		{
			name:   "empty declaration collects every error in order",
			method: MethodERPAPIPull,
			step:   1,
			draft:  Draft{},
			want: StepResult{Valid: false, Errors: []string{
				"Dataset type is required",
				"Declared scope is required",
				"Scope target is required unless declared scope is UNKNOWN",
				"Why this evidence must be at least 20 characters",
				"Connector ID is required",
				"Source system is required",
			}},
		},
		{
			name:   "unknown scope needs no target",
			method: MethodManualEntry,
			step:   1,
			draft: Draft{
				FieldDatasetType:     "CERTIFICATE",
				FieldDeclaredScope:   "UNKNOWN",
				FieldWhyThisEvidence: "Certificate for an unmapped site",
			},
			want: StepResult{Valid: true, Errors: []string{}},
		},
		{
			name:   "short purpose",
			method: MethodFileUpload,
			step:   1,
			draft: Draft{
				FieldDatasetType:     "BOM",
				FieldDeclaredScope:   "BOM",
				FieldScopeTarget:     "BOM-7",
				FieldWhyThisEvidence: "too short, sorry",
			},
			want: StepResult{Valid: false, Errors: []string{"Why this evidence must be at least 20 characters"}},
		},
		{
			name:   "short attestation",
			method: MethodManualEntry,
			step:   2,
			draft:  Draft{FieldAttestationNotes: "checked"},
			want:   StepResult{Valid: false, Errors: []string{"Attestation notes must be at least 20 characters"}},
		},
		{
			name:   "erp export needs files and job",
			method: MethodERPExportFile,
			step:   2,
			draft:  Draft{FieldExportJobID: ""},
			want: StepResult{Valid: false, Errors: []string{
				"At least one file attachment is required",
				"Export job ID is required",
			}},
		},
		{
			name:   "erp export complete",
			method: MethodERPExportFile,
			step:   2,
			draft:  Draft{FieldExportJobID: "EXP-1"},
			atts:   oneFile(),
			want:   StepResult{Valid: true, Errors: []string{}},
		},
		{
			name:   "non string digest",
			method: MethodAPIPushDigest,
			step:   2,
			draft:  Draft{FieldPayloadDigest: 42, FieldReceivedAtUTC: "2025-01-01T00:00:00Z"},
			want:   StepResult{Valid: false, Errors: []string{"Payload digest must be a 64-character hex SHA-256"}},
		},
		{
			name:   "false and zero are missing",
			method: MethodERPAPIPull,
			step:   2,
			draft:  Draft{FieldSyncRunID: false, FieldReceivedAtUTC: 0.0},
			want: StepResult{Valid: false, Errors: []string{
				"Sync run ID is required",
				"Received at (UTC) is required",
			}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateStep(tc.method, tc.step, tc.draft, tc.atts)
			if d := cmp.Diff(tc.want, got); d != "" {
				t.Fatalf("ValidateStep (-want +got):\n%s", d)
			}
		})
	}
}

func TestValidateStepNilDraft(t *testing.T) {
	got := ValidateStep(MethodManualEntry, 2, nil, nil)
	if got.Valid || len(got.Errors) != 1 {
		t.Fatalf("nil draft = %+v", got)
	}
}

func TestForbiddenFieldsNeverConsulted(t *testing.T) {
	d := declarationDraft()
	d[FieldAttestationNotes] = "Confirmed with the supplier by phone"
	base1 := ValidateStep(MethodManualEntry, 1, d, nil)
	base2 := ValidateStep(MethodManualEntry, 2, d, nil)
	if !base1.Valid || !base2.Valid {
		t.Fatalf("baseline invalid: %+v %+v", base1, base2)
	}

	poisoned := d.Clone()
	poisoned[FieldPayloadDigest] = "not-a-digest"
	poisoned[FieldExternalReference] = ""
	poisoned[FieldConnectorID] = []any{}
	poisoned[FieldSyncRunID] = nil
	if got := ValidateStep(MethodManualEntry, 1, poisoned, nil); !cmp.Equal(base1, got) {
		t.Fatalf("step 1 changed: %+v", got)
	}
	if got := ValidateStep(MethodManualEntry, 2, poisoned, nil); !cmp.Equal(base2, got) {
		t.Fatalf("step 2 changed: %+v", got)
	}
}

func TestShouldShowField(t *testing.T) {
	tests := []struct {
		method MethodID
		field  string
		want   bool
	}{
		{MethodManualEntry, FieldPayloadDigest, false},
		{MethodManualEntry, FieldAttestationNotes, true},
		{MethodFileUpload, FieldAttestationNotes, false},
		{MethodAPIPushDigest, FieldPayloadDigest, true},
		{MethodERPAPIPull, FieldConnectorID, true},
		{MethodERPAPIPull, FieldExportJobID, false},
		{MethodManualEntry, "some_unlisted_field", true},
		{"NOT_A_METHOD", FieldDatasetType, false},
	}
	for _, tc := range tests {
		if got := ShouldShowField(tc.method, tc.field); got != tc.want {
			t.Fatalf("ShouldShowField(%s, %s) = %t, want %t", tc.method, tc.field, got, tc.want)
		}
	}
}

func TestCheckDeclaration(t *testing.T) {
	if errs := CheckDeclaration(MethodERPAPIPull, declarationDraft()); len(errs) != 0 {
		t.Fatalf("allowed declaration rejected: %v", errs)
	}
	d := declarationDraft()
	d[FieldDatasetType] = "CERTIFICATE"
	d[FieldDeclaredScope] = "SITE"
	errs := CheckDeclaration(MethodERPAPIPull, d)
	want := []string{
		`Dataset type "CERTIFICATE" is not allowed for ERP API Pull`,
		`Declared scope "SITE" is not allowed for ERP API Pull`,
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("CheckDeclaration (-want +got):\n%s", diff)
	}
	if errs := CheckDeclaration("NOT_A_METHOD", d); len(errs) != 1 || errs[0] != ErrTextInvalidMethod {
		t.Fatalf("unknown method = %v", errs)
	}
}

func TestMinTextCountsCharactersNotBytes(t *testing.T) {
	// 20 characters, 40 bytes
	if !minText(strings.Repeat("\u00e9", 20), 20) {
		t.Fatalf("20 composed characters rejected")
	}
	if minText(strings.Repeat("\u00e9", 19), 20) {
		t.Fatalf("19 characters accepted")
	}
	// 19 decomposed characters are 38 runes before NFC
	if minText(strings.Repeat("e\u0301", 19), 20) {
		t.Fatalf("decomposed accents counted twice")
	}
	if !minText(strings.Repeat("e\u0301", 20), 20) {
		t.Fatalf("20 decomposed characters rejected")
	}
	if minText(42, 1) {
		t.Fatalf("non-string accepted")
	}
	// padding counts toward the length
	if !minText("   too short, sorry   ", 20) {
		t.Fatalf("padded text rejected")
	}
}

func TestScopeTargetRuleMatchesGating(t *testing.T) {
	tests := []struct {
		scope string
		want  bool
	}{
		{"UNKNOWN", true},
		{" UNKNOWN", false},
		{"unknown", false},
		{"SITE", false},
	}
	for _, tc := range tests {
		t.Run(tc.scope, func(t *testing.T) {
			d := Draft{
				FieldDatasetType:     "CERTIFICATE",
				FieldDeclaredScope:   tc.scope,
				FieldWhyThisEvidence: "Certificate for an unmapped site",
			}
			got := ValidateStep(MethodManualEntry, 1, d, nil)
			if got.Valid != tc.want {
				t.Fatalf("ValidateStep valid = %t, want %t (%v)", got.Valid, tc.want, got.Errors)
			}
			if gate := CanProceedToNextStep(MethodManualEntry, 1, d, nil); gate != got.Valid {
				t.Fatalf("gate = %t, ValidateStep = %t", gate, got.Valid)
			}
		})
	}
}

func TestPresent(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{"", false},
		{" \t", true},
		{"x", true},
		{false, false},
		{true, true},
		{0, false},
		{0.0, false},
		{1.5, true},
		{int64(3), true},
		{[]any{}, false},
		{[]any{1}, true},
		{map[string]any{}, false},
		{map[string]any{"a": 1}, true},
		{[]string{"a"}, true},
		{uint8(0), false},
		{struct{}{}, true},
	}
	for _, tc := range tests {
		if got := present(tc.v); got != tc.want {
			t.Fatalf("present(%#v) = %t, want %t", tc.v, got, tc.want)
		}
	}
}

func TestValidatorsConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := declarationDraft()
			d[FieldAttestationNotes] = "Confirmed with the supplier by phone"
			for j := 0; j < 200; j++ {
				if !ValidateStep(MethodManualEntry, 1+j%2, d, nil).Valid {
					errs <- "validate"
					return
				}
				if !CanSeal(MethodManualEntry, d, ModeProduction, nil) {
					errs <- "seal"
					return
				}
				if ShouldShowField(MethodManualEntry, FieldPayloadDigest) {
					errs <- "visibility"
					return
				}
				_ = GetMethodConfig(KnownMethods[(i+j)%len(KnownMethods)])
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatalf("concurrent %s check failed", e)
	}
}

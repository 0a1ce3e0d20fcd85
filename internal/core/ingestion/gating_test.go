package ingestion

import "testing"

func TestCanProceedToNextStep(t *testing.T) {
	push := declarationDraft()
	push[FieldExternalReference] = "ext-42"

	tests := []struct {
		name   string
		method MethodID
		step   int
		draft  Draft
		atts   []Attachment
		want   bool
	}{
		{"manual step 1", MethodManualEntry, 1, declarationDraft(), nil, true},
		{"manual step 1 incomplete", MethodManualEntry, 1, Draft{FieldDatasetType: "BOM"}, nil, false},
		{"push step 1 needs external reference", MethodAPIPushDigest, 1, declarationDraft(), nil, false},
		{"push step 1", MethodAPIPushDigest, 1, push, nil, true},
		{"file upload step 2 ignores text", MethodFileUpload, 2, Draft{}, oneFile(), true},
		{"file upload step 2 needs a file", MethodFileUpload, 2, declarationDraft(), nil, false},
		{"push step 2", MethodAPIPushDigest, 2, Draft{FieldPayloadDigest: hex64, FieldReceivedAtUTC: "2025-01-01T00:00:00Z"}, nil, true},
		{"push step 2 short digest", MethodAPIPushDigest, 2, Draft{FieldPayloadDigest: hex64[:63], FieldReceivedAtUTC: "2025-01-01T00:00:00Z"}, nil, false},
		{"export step 2", MethodERPExportFile, 2, Draft{FieldExportJobID: "EXP-1"}, oneFile(), true},
		{"export step 2 without job", MethodERPExportFile, 2, Draft{}, oneFile(), false},
		{"pull step 2", MethodERPAPIPull, 2, Draft{FieldSyncRunID: "r", FieldReceivedAtUTC: "t"}, nil, true},
		{"step 3 has no next step", MethodManualEntry, 3, declarationDraft(), oneFile(), false},
		{"step 0", MethodManualEntry, 0, declarationDraft(), nil, false},
		{"unknown method", "NOT_A_METHOD", 1, declarationDraft(), nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanProceedToNextStep(tc.method, tc.step, tc.draft, tc.atts); got != tc.want {
				t.Fatalf("CanProceedToNextStep = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestCanSeal(t *testing.T) {
	manual := declarationDraft()
	manual[FieldAttestationNotes] = "Confirmed with the supplier by phone"

	sealed := manual.Clone()
	sealed[FieldStatus] = StatusSealed

	draftStatus := manual.Clone()
	draftStatus[FieldStatus] = "DRAFT"

	tests := []struct {
		name   string
		method MethodID
		draft  Draft
		mode   Mode
		atts   []Attachment
		want   bool
	}{
		{"manual production", MethodManualEntry, manual, ModeProduction, nil, true},
		{"manual simulation", MethodManualEntry, manual, ModeSimulation, nil, false},
		{"unknown mode", MethodManualEntry, manual, "staging", nil, false},
		{"already sealed", MethodManualEntry, sealed, ModeProduction, nil, false},
		{"draft status", MethodManualEntry, draftStatus, ModeProduction, nil, true},
		{"manual incomplete", MethodManualEntry, declarationDraft(), ModeProduction, nil, false},
		{"file upload with file", MethodFileUpload, declarationDraft(), ModeProduction, oneFile(), true},
		{"file upload without file", MethodFileUpload, declarationDraft(), ModeProduction, nil, false},
		{"unknown method", "NOT_A_METHOD", manual, ModeProduction, nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanSeal(tc.method, tc.draft, tc.mode, tc.atts); got != tc.want {
				t.Fatalf("CanSeal = %t, want %t", got, tc.want)
			}
		})
	}
}

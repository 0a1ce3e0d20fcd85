package version

import "testing"

func TestInfoDefaults(t *testing.T) {
	bi := Info()
	if bi.Service != "evidencegate-api" {
		t.Fatalf("service = %q", bi.Service)
	}
	if bi.Version == "" || bi.Commit == "" || bi.Date == "" {
		t.Fatalf("empty stamp fields: %+v", bi)
	}
}

func TestForKeepsStamp(t *testing.T) {
	a, b := Info(), For("evidencegate-audit")
	if b.Service != "evidencegate-audit" || a.Version != b.Version || a.Commit != b.Commit {
		t.Fatalf("For() = %+v, Info() = %+v", b, a)
	}
}

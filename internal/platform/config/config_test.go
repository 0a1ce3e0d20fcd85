package config

import (
	"testing"
	"time"

	kit "evidencegate/internal/platform/testkit"

	"github.com/google/go-cmp/cmp"
)

func TestPrefixComposesKeys(t *testing.T) {
	c := FromMap(map[string]string{"PLATFORM_SEAL_PATH": "/seal"}).Prefix("PLATFORM_")
	if got := c.key("SEAL_PATH"); got != "PLATFORM_SEAL_PATH" {
		t.Fatalf("key = %q", got)
	}
	if got := c.MayString("SEAL_PATH", ""); got != "/seal" {
		t.Fatalf("MayString = %q", got)
	}
	if got := c.Prefix("X_").key("Y"); got != "PLATFORM_X_Y" {
		t.Fatalf("nested key = %q", got)
	}
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("CORE_API_TENANT_HEADER", " X-Org ")
	if got := New().Prefix("CORE_API_").MayString("TENANT_HEADER", "X-Tenant-ID"); got != "X-Org" {
		t.Fatalf("MayString = %q", got)
	}
}

func TestZeroConfIsEmpty(t *testing.T) {
	var c Conf
	if got := c.MayString("ANY", "def"); got != "def" {
		t.Fatalf("zero Conf = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := FromMap(map[string]string{"PLATFORM_API_KEY": " k1 ", "PLATFORM_BLANK": "  "}).Prefix("PLATFORM_")
	if got := c.MustString("API_KEY"); got != "k1" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("BLANK") })
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustURL(t *testing.T) {
	c := FromMap(map[string]string{
		"OK":       "https://platform.example/api",
		"RELATIVE": "/api",
		"FTP":      "ftp://platform.example",
		"BROKEN":   "://x",
	})
	if u := c.MustURL("OK"); u.Host != "platform.example" {
		t.Fatalf("host = %q", u.Host)
	}
	for _, k := range []string{"RELATIVE", "FTP", "BROKEN", "MISSING"} {
		kit.MustPanic(t, func() { _ = c.MustURL(k) })
	}
}

func TestMayFallbacks(t *testing.T) {
	c := FromMap(map[string]string{
		"RETRIES":     " 5 ",
		"RETRIES_BAD": "five",
		"LOG_SQL":     "true",
		"LOG_BAD":     "perhaps",
		"TIMEOUT":     "250ms",
		"TIMEOUT_BAD": "soon",
		"TIMEOUT_NEG": "-1s",
	})
	if got := c.MayInt("RETRIES", 3); got != 5 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayInt("RETRIES_BAD", 3); got != 3 {
		t.Fatalf("MayInt bad = %d", got)
	}
	if !c.MayBool("LOG_SQL", false) || c.MayBool("LOG_BAD", false) || !c.MayBool("MISSING", true) {
		t.Fatalf("MayBool fallbacks wrong")
	}
	if got := c.MayDuration("TIMEOUT", time.Second); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	for _, k := range []string{"TIMEOUT_BAD", "TIMEOUT_NEG", "MISSING"} {
		if got := c.MayDuration(k, time.Second); got != time.Second {
			t.Fatalf("MayDuration(%s) = %v, want default", k, got)
		}
	}
}

func TestMayCSV(t *testing.T) {
	c := FromMap(map[string]string{
		"ORIGINS": " https://a.example, ,https://b.example ,, ",
		"EMPTY":   " , , ",
	})
	if d := cmp.Diff([]string{"https://a.example", "https://b.example"}, c.MayCSV("ORIGINS", nil)); d != "" {
		t.Fatalf("MayCSV (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]string{"*"}, c.MayCSV("EMPTY", []string{"*"})); d != "" {
		t.Fatalf("MayCSV empty (-want +got):\n%s", d)
	}
}

func TestMayEnumReturnsAllowedSpelling(t *testing.T) {
	c := FromMap(map[string]string{"SEALER_BACKEND": "Ledger", "BAD": "sqlite"})
	if got := c.MayEnum("SEALER_BACKEND", "none", "none", "platform", "ledger"); got != "ledger" {
		t.Fatalf("MayEnum = %q, want ledger", got)
	}
	if got := c.MayEnum("MISSING", "none", "none", "platform", "ledger"); got != "none" {
		t.Fatalf("MayEnum default = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "none", "none", "platform", "ledger") })
}

func TestMayPort(t *testing.T) {
	c := FromMap(map[string]string{"BARE": "8080", "COLON": ":9090", "BAD": "http", "OOB": "70000"})
	if got := c.MayPort("BARE", ":4000"); got != ":8080" {
		t.Fatalf("MayPort bare = %q", got)
	}
	if got := c.MayPort("COLON", ":4000"); got != ":9090" {
		t.Fatalf("MayPort colon = %q", got)
	}
	if got := c.MayPort("MISSING", ":4000"); got != ":4000" {
		t.Fatalf("MayPort default = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MayPort("BAD", ":4000") })
	kit.MustPanic(t, func() { _ = c.MayPort("OOB", ":4000") })
}

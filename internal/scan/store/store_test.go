package store

import (
	"path/filepath"
	"testing"

	"github.com/aidanhs/tclscan/internal/scan/result"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "baseline.db")
	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return st
}

func TestDiffWithNoPriorScanReportsEverythingNew(t *testing.T) {
	st := openTestStore(t)
	results := []result.CheckResult{
		result.Dangerf("eval $x", "Dangerous unquoted block", "$x"),
	}

	fresh, err := st.Diff("script.tcl", results)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(fresh) != 1 {
		t.Fatalf("Diff = %v, want 1 result (no baseline recorded yet)", fresh)
	}
}

func TestDiffAfterRecordOnlyReportsNewFindings(t *testing.T) {
	st := openTestStore(t)
	first := []result.CheckResult{
		result.Dangerf("eval $x", "Dangerous unquoted block", "$x"),
	}
	if _, err := st.Record("script.tcl", first); err != nil {
		t.Fatalf("Record: %v", err)
	}

	second := append(append([]result.CheckResult{}, first...),
		result.Warnf("if [abc] {}", "Unquoted expr", "[abc]"))

	fresh, err := st.Diff("script.tcl", second)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(fresh) != 1 {
		t.Fatalf("Diff = %v, want only the one new finding", fresh)
	}
	if fresh[0].Message != "Unquoted expr" {
		t.Errorf("fresh finding = %+v, want the Unquoted expr one", fresh[0])
	}
}

func TestSuppressCarriesForwardAcrossRecord(t *testing.T) {
	st := openTestStore(t)
	finding := result.Dangerf("eval $x", "Dangerous unquoted block", "$x")

	if _, err := st.Record("script.tcl", []result.CheckResult{finding}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	key := FindingKey(finding)
	if err := st.Suppress("script.tcl", key); err != nil {
		t.Fatalf("Suppress: %v", err)
	}

	suppressed, err := st.IsSuppressed("script.tcl", key)
	if err != nil {
		t.Fatalf("IsSuppressed: %v", err)
	}
	if !suppressed {
		t.Fatalf("IsSuppressed = false, want true right after Suppress")
	}

	rec, err := st.Record("script.tcl", []result.CheckResult{finding})
	if err != nil {
		t.Fatalf("second Record: %v", err)
	}
	if len(rec.Findings) != 1 || !rec.Findings[0].Suppressed {
		t.Errorf("second scan's finding should carry Suppressed forward, got %+v", rec.Findings)
	}
}

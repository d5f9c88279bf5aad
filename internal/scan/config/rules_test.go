package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanhs/tclscan/internal/scan/analyze"
)

func writeRules(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing fixture rules file: %v", err)
	}
	return path
}

func TestLoadRulesValid(t *testing.T) {
	path := writeRules(t, `
commands:
  - head: safe_eval
    roles: [literal, block]
  - head: log
    roles: [normal]
    vararg: true
`)
	rs, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}

	rule, ok := rs.Lookup("safe_eval")
	if !ok {
		t.Fatalf("Lookup(safe_eval) not found")
	}
	if len(rule.Roles) != 2 || rule.Roles[0] != analyze.CodeLiteral || rule.Roles[1] != analyze.CodeBlock {
		t.Errorf("safe_eval roles = %v, want [literal block]", rule.Roles)
	}

	logRule, ok := rs.Lookup("log")
	if !ok || !logRule.Vararg {
		t.Errorf("log rule = %+v, want a vararg rule", logRule)
	}

	if _, ok := rs.Lookup("nonexistent"); ok {
		t.Errorf("Lookup(nonexistent) should report not found")
	}
}

func TestLoadRulesUnknownRoleIsAnError(t *testing.T) {
	path := writeRules(t, `
commands:
  - head: bogus
    roles: [not_a_real_role]
`)
	if _, err := LoadRules(path); err == nil {
		t.Errorf("LoadRules should reject an unknown role name")
	}
}

func TestLoadRulesMissingFileIsAnError(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Errorf("LoadRules should error on a missing file")
	}
}

func TestLoadRulesMalformedYAMLIsAnError(t *testing.T) {
	path := writeRules(t, "commands: [this is not valid: : :")
	if _, err := LoadRules(path); err == nil {
		t.Errorf("LoadRules should error on malformed YAML")
	}
}

func TestNilRuleSetLookupMisses(t *testing.T) {
	var rs *RuleSet
	if _, ok := rs.Lookup("eval"); ok {
		t.Errorf("a nil RuleSet should never match")
	}
}

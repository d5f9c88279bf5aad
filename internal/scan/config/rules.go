// Package config loads user-supplied extensions to the analyzer's
// built-in command role table: a YAML file letting a team teach the
// scanner about its own wrapper commands (e.g. a local "safe_eval"
// helper) without recompiling.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aidanhs/tclscan/internal/scan/analyze"
)

// override is the YAML wire format for one rule entry.
type override struct {
	Head   string   `yaml:"head"`
	Roles  []string `yaml:"roles"`
	Vararg bool     `yaml:"vararg"`
}

type rulesFile struct {
	Commands []override `yaml:"commands"`
}

// RuleSet is a validated, analyzer-ready set of command role overrides,
// keyed by head word.
type RuleSet struct {
	overrides map[string]analyze.RoleRule
}

// Lookup implements analyze.RuleSource.
func (r *RuleSet) Lookup(head string) (analyze.RoleRule, bool) {
	if r == nil {
		return analyze.RoleRule{}, false
	}
	rule, ok := r.overrides[head]
	return rule, ok
}

// entryError is one rejected "commands" entry, pinned to the line and
// column yaml.v3 recorded for it so a team can find the offending entry
// without counting lines by hand.
type entryError struct {
	path   string
	line   int
	column int
	reason string
}

func (e *entryError) Error() string {
	if e.line == 0 {
		return fmt.Sprintf("%s: %s", e.path, e.reason)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.path, e.line, e.column, e.reason)
}

// LoadRules reads and validates a rules YAML file. A missing file is
// reported as an error too — callers that treat the rules flag as
// optional should simply not call LoadRules when the flag is unset,
// rather than tolerate a missing path here.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var parsed rulesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	var root yaml.Node
	_ = yaml.Unmarshal(data, &root)
	entryNodes := commandEntryNodes(&root)

	var errs []error
	rs := &RuleSet{overrides: make(map[string]analyze.RoleRule, len(parsed.Commands))}

	for i, entry := range parsed.Commands {
		var line, column int
		if i < len(entryNodes) {
			line, column = entryNodes[i].Line, entryNodes[i].Column
		}
		fail := func(reason string) {
			errs = append(errs, &entryError{path: path, line: line, column: column, reason: reason})
		}

		if entry.Head == "" {
			fail("command entry missing 'head'")
			continue
		}

		roles := make([]analyze.Code, 0, len(entry.Roles))
		valid := true
		for _, name := range entry.Roles {
			code, ok := parseCode(name)
			if !ok {
				fail(fmt.Sprintf("%s: unknown role %q", entry.Head, name))
				valid = false
				continue
			}
			roles = append(roles, code)
		}
		if !valid {
			continue
		}
		if len(roles) == 0 {
			fail(fmt.Sprintf("%s: no roles given", entry.Head))
			continue
		}

		rs.overrides[entry.Head] = analyze.RoleRule{Roles: roles, Vararg: entry.Vararg}
	}

	if len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid rules file:\n%s", strings.Join(lines, "\n"))
	}
	return rs, nil
}

// commandEntryNodes returns the YAML mapping node for each entry under
// the top-level "commands" sequence, in document order, so validation
// errors can point at the line and column the offending entry actually
// starts on rather than just naming the head word.
func commandEntryNodes(root *yaml.Node) []*yaml.Node {
	if len(root.Content) == 0 {
		return nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == "commands" {
			return doc.Content[i+1].Content
		}
	}
	return nil
}

func parseCode(name string) (analyze.Code, bool) {
	switch name {
	case "block":
		return analyze.CodeBlock, true
	case "expr":
		return analyze.CodeExpr, true
	case "literal":
		return analyze.CodeLiteral, true
	case "normal":
		return analyze.CodeNormal, true
	default:
		return 0, false
	}
}

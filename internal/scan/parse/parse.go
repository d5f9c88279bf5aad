// Package parse wraps the Tcl C library's command and expression parser
// and reifies its flat token stream into the tree types defined by
// package token. The Tcl parser is an opaque, external collaborator: this
// package never second-guesses its output, only restructures it.
package parse

import "github.com/aidanhs/tclscan/internal/scan/token"

// Parse is the result of one Tcl_ParseCommand or Tcl_ParseExpr call.
// Comment and Command are nil for expression parses, which have no
// surrounding command framing; for command parses they are always
// non-nil, though possibly pointing at an empty string (no comment, or
// an empty command such as ";;").
type Parse struct {
	Comment *string
	Command *string
	Tokens  []token.Token
}

// HasCommand reports whether p was produced by a command parse (as
// opposed to an expression parse).
func (p Parse) HasCommand() bool {
	return p.Command != nil
}

// Parser is the contract the rest of the scanner depends on: something
// that can turn Tcl source text into reified token trees. The production
// implementation, Tcl, calls into the real Tcl C library via cgo; tests
// for packages built on top of Parser substitute a small fixture-backed
// fake so they do not require a Tcl installation to run.
type Parser interface {
	// ParseScript parses s one command at a time until the input is
	// exhausted, returning every parse in source order, including ones
	// with no tokens. No parse of the final, empty suffix is made.
	ParseScript(s string) []Parse
	// ParseCommand parses a single command from the start of s,
	// returning the parse and the unconsumed remainder of s.
	ParseCommand(s string) (Parse, string)
	// ParseExpr parses s in its entirety as a Tcl expression. The
	// returned tail is always empty.
	ParseExpr(s string) (Parse, string)
}

// ParseScript is shared by every Parser implementation: it is defined
// purely in terms of ParseCommand, so concrete parsers only need to
// implement ParseCommand and ParseExpr. It accumulates every parse,
// including ones with no tokens at all (an empty command such as ";;",
// or a line that is only a comment) — skipping those is the script
// scanner's job (it needs to tell "nothing here" apart from "a command
// with no tokens", which never actually happens, but the distinction
// belongs one layer up). The loop condition means the hypothetical
// final parse of an already-empty suffix is never performed at all,
// rather than performed and discarded.
func ParseScript(p Parser, s string) []Parse {
	var out []Parse
	for len(s) > 0 {
		var parsed Parse
		parsed, s = p.ParseCommand(s)
		out = append(out, parsed)
	}
	return out
}

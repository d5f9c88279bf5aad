// Package safety implements the scanner's syntactic safety predicates:
// whether a token's value is a constant literal, and whether a value
// that does contain substitutions is nonetheless guaranteed not to
// carry attacker-controlled data.
package safety

import (
	"strings"

	"github.com/aidanhs/tclscan/internal/scan/parse"
	"github.com/aidanhs/tclscan/internal/scan/result"
	"github.com/aidanhs/tclscan/internal/scan/token"
)

// IsLiteral reports whether t's value is a brace-quoted block, or
// contains neither '$' nor '[' — i.e. whether it is guaranteed to be a
// constant with no substitution.
func IsLiteral(t *token.Token) bool {
	if len(t.Val) == 0 {
		return true
	}
	if t.Val[0] == '{' {
		return true
	}
	return !strings.ContainsAny(t.Val, "$[")
}

// CheckLiteral reports a diagnostic when t is required to be a literal
// but is not: Danger "Expected literal, found $" or "Expected literal,
// found [", depending on which substitution character appears. A braced
// value, or one with neither character, produces no diagnostic.
func CheckLiteral(ctx string, t *token.Token) []result.CheckResult {
	if len(t.Val) > 0 && t.Val[0] == '{' {
		return nil
	}
	if strings.ContainsRune(t.Val, '$') {
		return []result.CheckResult{result.Dangerf(ctx, "Expected literal, found $", t.Val)}
	}
	if strings.ContainsRune(t.Val, '[') {
		return []result.CheckResult{result.Dangerf(ctx, "Expected literal, found [", t.Val)}
	}
	return nil
}

// IsSafeVar reports whether a Variable token is guaranteed to hold a
// safe value. It is always false: nothing about a variable reference's
// syntax constrains what ends up in it at runtime.
func IsSafeVar(t *token.Token) bool {
	return false
}

// IsSafeCmd reports whether a Command token (a bracketed substitution,
// t.Val framed by '[' and ']') is guaranteed safe. An empty bracketed
// script ("[]") is safe — there is nothing to substitute. Otherwise
// every command in the inner script must match one of a small whitelist
// of known-pure built-ins (llength <x>, clock seconds, info exists …,
// catch …); anything else makes the whole substitution unsafe.
func IsSafeCmd(p parse.Parser, t *token.Token) bool {
	inner := t.Val[1 : len(t.Val)-1]
	parses := p.ParseScript(inner)
	if len(parses) == 0 {
		return true
	}
	for _, cmd := range parses {
		if len(cmd.Tokens) == 0 {
			continue
		}
		if !isWhitelistedBuiltin(cmd.Tokens) {
			return false
		}
	}
	return true
}

// isWhitelistedBuiltin matches a command's words against the fixed shapes
// IsSafeCmd trusts.
func isWhitelistedBuiltin(words []token.Token) bool {
	switch words[0].Val {
	case "llength":
		return len(words) == 2
	case "clock":
		return len(words) == 2 && words[1].Val == "seconds"
	case "info":
		return len(words) >= 3 && words[1].Val == "exists"
	case "catch":
		return len(words) >= 1
	default:
		return false
	}
}

// IsSafeVal walks t pre-order and evaluates every substitution it finds
// (a Variable via IsSafeVar, a Command via IsSafeCmd); any single unsafe
// substitution taints the whole value. Plain Text/Bs tokens never taint.
func IsSafeVal(p parse.Parser, t *token.Token) bool {
	safe := true
	t.Iter(func(tok *token.Token) {
		if !safe {
			return
		}
		switch tok.Type {
		case token.Variable:
			if !IsSafeVar(tok) {
				safe = false
			}
		case token.Command:
			if !IsSafeCmd(p, tok) {
				safe = false
			}
		}
	})
	return safe
}

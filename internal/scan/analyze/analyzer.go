package analyze

import (
	"github.com/aidanhs/tclscan/internal/scan/parse"
	"github.com/aidanhs/tclscan/internal/scan/result"
	"github.com/aidanhs/tclscan/internal/scan/safety"
	"github.com/aidanhs/tclscan/internal/scan/token"
)

// Analyzer ties a Parser to a command role table (built-in, plus any
// user overrides) and is the thing that actually walks a script looking
// for danger.
type Analyzer struct {
	parser parse.Parser
	rules  RuleSource
}

// New constructs an Analyzer. rules may be nil, meaning only the
// built-in role table applies.
func New(p parse.Parser, rules RuleSource) *Analyzer {
	return &Analyzer{parser: p, rules: rules}
}

// ScanScript parses s one command at a time and checks each in turn,
// skipping empty parses (blank lines, bare comments, a lone ";"). This
// is the scanner's top-level entry point, and is also what every
// recursive descent into a nested script (a block's body, a bracketed
// substitution's interior) bottoms out on.
func (a *Analyzer) ScanScript(s string) []result.CheckResult {
	var out []result.CheckResult
	for _, p := range parse.ParseScript(a.parser, s) {
		if len(p.Tokens) == 0 {
			continue
		}
		out = append(out, a.CheckCommand(*p.Command, p.Tokens)...)
	}
	return out
}

// scanCommand checks a single bracketed substitution's interior. s must
// be framed by '[' and ']'; scanCommand strips the brackets and scans
// whatever script is inside.
func (a *Analyzer) scanCommand(s string) []result.CheckResult {
	return a.ScanScript(s[1 : len(s)-1])
}

// CheckCommand checks one already-parsed command: first every bracketed
// substitution reachable anywhere inside its words (however deeply
// nested, inside a quoted word, a variable's index, an expression —
// wherever the Tcl parser allows one), then the command itself against
// its role vector. ctx is the command's own source text, used as the
// Ctx field on every diagnostic CheckCommand and its callees emit.
func (a *Analyzer) CheckCommand(ctx string, tokens []token.Token) []result.CheckResult {
	out := a.substitutions(ctx, tokens)

	if len(tokens) == 0 {
		return out
	}

	if diags := safety.CheckLiteral(ctx, &tokens[0]); len(diags) > 0 {
		out = append(out, result.Warnf(ctx, "Non-literal command, cannot scan", tokens[0].Val))
		return out
	}

	roles := a.roleVector(tokens)
	if len(roles) != len(tokens)-1 {
		out = append(out, result.Warnf(ctx, "badly formed command", tokens[0].Val))
		return out
	}

	for i, role := range roles {
		arg := &tokens[i+1]
		switch role {
		case CodeBlock:
			out = append(out, a.checkBlock(ctx, arg)...)
		case CodeExpr:
			out = append(out, a.checkExpr(ctx, arg)...)
		case CodeLiteral:
			out = append(out, safety.CheckLiteral(ctx, arg)...)
		case CodeNormal:
			// Data. Nothing to check.
		}
	}
	return out
}

// substitutions finds every Command token reachable from tokens, at any
// depth, and recursively scans its interior.
func (a *Analyzer) substitutions(ctx string, tokens []token.Token) []result.CheckResult {
	var out []result.CheckResult
	for i := range tokens {
		tokens[i].Iter(func(t *token.Token) {
			if t.Type == token.Command {
				out = append(out, a.scanCommand(t.Val)...)
			}
		})
	}
	return out
}

// checkBlock checks a CodeBlock argument: a braced value is a literal
// script body, parsed and scanned recursively; anything else is a
// runtime-assembled script, flagged Warn if it is provably safe and
// Danger otherwise.
func (a *Analyzer) checkBlock(ctx string, t *token.Token) []result.CheckResult {
	if !isBraced(t.Val) {
		if safety.IsSafeVal(a.parser, t) {
			return []result.CheckResult{result.Warnf(ctx, "Unquoted block", t.Val)}
		}
		return []result.CheckResult{result.Dangerf(ctx, "Dangerous unquoted block", t.Val)}
	}
	return a.ScanScript(t.Val[1 : len(t.Val)-1])
}

// checkExpr checks a CodeExpr argument analogously to checkBlock, but
// for an expression: a braced value is parsed with ParseExpr and its
// embedded command substitutions are scanned; the brace-less case is
// flagged exactly as in checkBlock.
func (a *Analyzer) checkExpr(ctx string, t *token.Token) []result.CheckResult {
	if !isBraced(t.Val) {
		if safety.IsSafeVal(a.parser, t) {
			return []result.CheckResult{result.Warnf(ctx, "Unquoted expr", t.Val)}
		}
		return []result.CheckResult{result.Dangerf(ctx, "Dangerous unquoted expr", t.Val)}
	}

	parsed, _ := a.parser.ParseExpr(t.Val[1 : len(t.Val)-1])
	if len(parsed.Tokens) != 1 {
		return nil
	}

	var out []result.CheckResult
	parsed.Tokens[0].Iter(func(t *token.Token) {
		if t.Type == token.Command {
			out = append(out, a.scanCommand(t.Val)...)
		}
	})
	return out
}

func isBraced(v string) bool {
	return len(v) >= 2 && v[0] == '{' && v[len(v)-1] == '}'
}

// roleVector derives the role vector for tokens[0]'s command, checking
// any user override first, then falling back to the built-in table,
// then to CodeNormal for every argument.
func (a *Analyzer) roleVector(tokens []token.Token) []Code {
	head := tokens[0].Val
	argc := len(tokens) - 1

	if a.rules != nil {
		if rule, ok := a.rules.Lookup(head); ok {
			return rule.Expand(argc)
		}
	}

	switch head {
	case "eval":
		return repeat(CodeBlock, argc)
	case "catch":
		roles := []Code{CodeBlock}
		switch argc {
		case 2:
			roles = append(roles, CodeLiteral)
		case 3:
			roles = append(roles, CodeLiteral, CodeLiteral)
		}
		return roles
	case "expr":
		return repeat(CodeExpr, argc)
	case "proc":
		return []Code{CodeLiteral, CodeLiteral, CodeBlock}
	case "for":
		return []Code{CodeBlock, CodeExpr, CodeBlock, CodeBlock}
	case "foreach":
		return []Code{CodeLiteral, CodeNormal, CodeBlock}
	case "while":
		return []Code{CodeExpr, CodeBlock}
	case "if":
		return ifRoles(tokens)
	default:
		return repeat(CodeNormal, argc)
	}
}

// ifRoles derives if's role vector: a leading [Expr, Block] for the
// condition and then-body, followed by zero or more [Literal, Expr,
// Block] triples for each "elseif cond body", optionally terminated by
// a [Literal, Block] pair for a trailing "else body". The walk inspects
// the literal word value at each keyword position to decide whether to
// continue; anything that isn't "elseif" or "else" stops the scan,
// leaving whatever tokens remain unaccounted for — the caller's arity
// check then reports the command as badly formed.
func ifRoles(tokens []token.Token) []Code {
	roles := []Code{CodeExpr, CodeBlock}
	pos := 3
	for pos < len(tokens) {
		switch tokens[pos].Val {
		case "elseif":
			roles = append(roles, CodeLiteral, CodeExpr, CodeBlock)
			pos += 3
		case "else":
			roles = append(roles, CodeLiteral, CodeBlock)
			pos += 2
		default:
			return roles
		}
	}
	return roles
}

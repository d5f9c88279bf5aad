package token

import "fmt"

// Desc is the Go-side mirror of a single Tcl_Token descriptor: a type tag,
// a byte offset into the script the token was parsed from, a byte length,
// and the declared component count for compound types. The parse package
// fills these in from the C parser's output before handing them to Reify.
type Desc struct {
	Type          Type
	Offset        int
	Size          int
	NumComponents int
}

// Reify reconstructs a typed, owned token tree from the flat, pre-order
// descriptor stream the Tcl parser produces. Each compound token (Word,
// ExpandWord, SimpleWord, Variable, SubExpr) is immediately followed, in
// the flat stream, by exactly NumComponents descriptors comprising its
// subtree, recursively flattened the same way.
//
// The reconstruction walks the array from the last descriptor to the
// first, maintaining a stack of already-built nodes. A leaf token is
// pushed directly. A compound token pops nodes off the top of the
// stack, summing their subtree sizes, until the sum equals its declared
// NumComponents, assembles them as its children, and pushes the result.
// This works because by the time the reverse walk reaches a compound
// token, every descriptor in its subtree has already been visited (they
// all sit later in the flat array) and is sitting on top of the stack —
// and popping them off the stack top hands them back already in source
// order (see popComponents), so only the final top-level reversal below
// is needed, once, to put a command's words back in source order.
//
// script is the original source the offsets index into; Reify returns
// borrows into it. The returned slice is in source order.
func Reify(script string, descs []Desc) ([]Token, error) {
	var stack []Token
	for i := len(descs) - 1; i >= 0; i-- {
		d := descs[i]
		val := script[d.Offset : d.Offset+d.Size]
		// The interior of an empty braced word ("{}") is an empty Text
		// token; every other kind must cover at least one byte.
		if len(val) == 0 && d.Type != Text {
			return nil, fmt.Errorf("token %s at offset %d has zero length", d.Type, d.Offset)
		}
		tok, rest, err := reifyOne(d, val, stack)
		if err != nil {
			return nil, err
		}
		stack = append(rest, tok)
	}
	out := make([]Token, len(stack))
	for i, t := range stack {
		out[len(stack)-1-i] = t
	}
	return out, nil
}

// reifyOne builds the single node described by d, popping whatever
// children it needs from the top of stack, and returns the node together
// with the remainder of stack.
func reifyOne(d Desc, val string, stack []Token) (Token, []Token, error) {
	switch d.Type {
	case Text, Bs, Operator:
		if d.NumComponents != 0 {
			return Token{}, nil, fmt.Errorf("%s token has %d components, want 0", d.Type, d.NumComponents)
		}
		return Token{Type: d.Type, Val: val}, stack, nil

	case Command:
		if d.NumComponents != 0 {
			return Token{}, nil, fmt.Errorf("Command token has %d components, want 0", d.NumComponents)
		}
		if val[0] != '[' || val[len(val)-1] != ']' {
			return Token{}, nil, fmt.Errorf("Command token %q not framed by [ ]", val)
		}
		return Token{Type: d.Type, Val: val}, stack, nil

	case Word, ExpandWord:
		children, rest, err := popComponents(stack, d.NumComponents)
		if err != nil {
			return Token{}, nil, err
		}
		return Token{Type: d.Type, Val: val, Tokens: children}, rest, nil

	case SimpleWord:
		if d.NumComponents != 1 {
			return Token{}, nil, fmt.Errorf("SimpleWord token has %d components, want 1", d.NumComponents)
		}
		if len(stack) == 0 {
			return Token{}, nil, fmt.Errorf("SimpleWord token has no child to consume")
		}
		child := stack[len(stack)-1]
		rest := stack[:len(stack)-1]
		if child.Type != Text {
			return Token{}, nil, fmt.Errorf("SimpleWord child is %s, want Text", child.Type)
		}
		return Token{Type: d.Type, Val: val, Tokens: []Token{child}}, rest, nil

	case Variable:
		if len(stack) == 0 {
			return Token{}, nil, fmt.Errorf("Variable token has no name child to consume")
		}
		name := stack[len(stack)-1]
		rest := stack[:len(stack)-1]
		if name.Type != Text {
			return Token{}, nil, fmt.Errorf("Variable name child is %s, want Text", name.Type)
		}
		children := []Token{name}
		count := name.count()
		for count < d.NumComponents {
			if len(rest) == 0 {
				return Token{}, nil, fmt.Errorf("Variable token ran out of children at count %d/%d", count, d.NumComponents)
			}
			next := rest[len(rest)-1]
			switch next.Type {
			case Text, Bs, Command, Variable:
				// allowed indexing-part types
			default:
				return Token{}, nil, fmt.Errorf("Variable index part has invalid type %s", next.Type)
			}
			rest = rest[:len(rest)-1]
			children = append(children, next)
			count += next.count()
		}
		if count != d.NumComponents {
			return Token{}, nil, fmt.Errorf("Variable token consumed %d components, want %d", count, d.NumComponents)
		}
		return Token{Type: d.Type, Val: val, Tokens: children}, rest, nil

	case SubExpr:
		rest := stack
		var children []Token
		count := 0
		if len(rest) > 0 && rest[len(rest)-1].Type == Operator {
			op := rest[len(rest)-1]
			rest = rest[:len(rest)-1]
			children = append(children, op)
			count += op.count()
		}
		for count < d.NumComponents {
			if len(rest) == 0 {
				return Token{}, nil, fmt.Errorf("SubExpr token ran out of operands at count %d/%d", count, d.NumComponents)
			}
			next := rest[len(rest)-1]
			rest = rest[:len(rest)-1]
			children = append(children, next)
			count += next.count()
		}
		if count != d.NumComponents {
			return Token{}, nil, fmt.Errorf("SubExpr token consumed %d components, want %d", count, d.NumComponents)
		}
		return Token{Type: d.Type, Val: val, Tokens: children}, rest, nil

	default:
		return Token{}, nil, fmt.Errorf("unrecognized token type %d", int(d.Type))
	}
}

// popComponents pops nodes off the top of stack until their aggregate
// subtree size equals want. Because the overall reification walks the
// descriptor array back to front, the stack top always holds whatever
// descriptor comes immediately next in source order, so popping
// repeatedly yields this compound's children already in source order —
// no reversal needed (the one reversal the algorithm needs happens once,
// across a whole command's top-level words, in Reify itself).
func popComponents(stack []Token, want int) ([]Token, []Token, error) {
	var children []Token
	count := 0
	for count < want {
		if len(stack) == 0 {
			return nil, nil, fmt.Errorf("ran out of tokens popping components (%d/%d)", count, want)
		}
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children = append(children, next)
		count += next.count()
	}
	if count != want {
		return nil, nil, fmt.Errorf("popped components summed to %d, want %d", count, want)
	}
	return children, stack, nil
}

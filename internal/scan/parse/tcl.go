package parse

/*
#cgo pkg-config: tcl
#include <stdlib.h>
#include <tcl.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/aidanhs/tclscan/internal/scan/token"
)

// Tcl is the production Parser: it drives the real Tcl C library through
// cgo, exactly as the original tool did via Rust FFI against tcl.h. Each
// Tcl value owns one interpreter handle, created lazily on its first use
// and reused by every later parse through that value (separate NewTcl
// calls get separate handles) — Tcl_CreateInterp is not documented safe to call concurrently with
// itself, so creation is serialized by once, and every parse call is
// serialized by mu, since the parser is not documented reentrant either
// (see §5/§9 of the design notes: a pool-per-worker handle is the
// alternative for callers who need real parallelism).
type Tcl struct {
	once   sync.Once
	mu     sync.Mutex
	interp *C.Tcl_Interp
}

// NewTcl constructs a Tcl parser. The underlying interpreter is not
// created until the first parse call.
func NewTcl() *Tcl {
	return &Tcl{}
}

func (t *Tcl) interpreter() *C.Tcl_Interp {
	t.once.Do(func() {
		t.interp = C.Tcl_CreateInterp()
	})
	return t.interp
}

// ParseScript implements Parser.
func (t *Tcl) ParseScript(s string) []Parse {
	return ParseScript(t, s)
}

// ParseCommand implements Parser by calling Tcl_ParseCommand once. On
// parse failure the adapter silently yields an empty Parse and an empty
// tail, truncating the remainder of the script — this is the documented
// behavior of the original tool (see the design notes' open question on
// silent parse failures).
func (t *Tcl) ParseCommand(s string) (Parse, string) {
	if len(s) == 0 {
		empty := ""
		return Parse{Comment: &empty, Command: &empty}, ""
	}

	cstr := C.CString(s)
	defer C.free(unsafe.Pointer(cstr))
	base := uintptr(unsafe.Pointer(cstr))

	raw := (*C.Tcl_Parse)(C.malloc(C.sizeof_Tcl_Parse))
	defer C.free(unsafe.Pointer(raw))
	t.mu.Lock()
	rc := C.Tcl_ParseCommand(t.interpreter(), cstr, C.int(len(s)), C.int(0), raw)
	t.mu.Unlock()
	if rc != 0 {
		empty := ""
		return Parse{Comment: &empty, Command: &empty}, ""
	}
	defer C.Tcl_FreeParse(raw)

	commentStart := int(uintptr(unsafe.Pointer(raw.commentStart)) - base)
	commentSize := int(raw.commentSize)
	var comment string
	if commentSize > 0 {
		// commentStart is documented as undefined when commentSize == 0.
		comment = s[commentStart : commentStart+commentSize]
	}

	commandStart := int(uintptr(unsafe.Pointer(raw.commandStart)) - base)
	commandSize := int(raw.commandSize)
	command := s[commandStart : commandStart+commandSize]
	tail := s[commandStart+commandSize:]

	descs := tokensToDescs(raw.tokenPtr, int(raw.numTokens), base)
	tokens, err := token.Reify(s, descs)
	if err != nil {
		empty := ""
		return Parse{Comment: &empty, Command: &empty}, ""
	}

	return Parse{Comment: &comment, Command: &command, Tokens: tokens}, tail
}

// ParseExpr implements Parser by calling Tcl_ParseExpr once. The tail is
// always empty; Comment and Command are always nil, since an expression
// parse has no command framing.
func (t *Tcl) ParseExpr(s string) (Parse, string) {
	if len(s) == 0 {
		return Parse{}, ""
	}

	cstr := C.CString(s)
	defer C.free(unsafe.Pointer(cstr))
	base := uintptr(unsafe.Pointer(cstr))

	raw := (*C.Tcl_Parse)(C.malloc(C.sizeof_Tcl_Parse))
	defer C.free(unsafe.Pointer(raw))
	t.mu.Lock()
	rc := C.Tcl_ParseExpr(t.interpreter(), cstr, C.int(len(s)), raw)
	t.mu.Unlock()
	if rc != 0 {
		return Parse{}, ""
	}
	defer C.Tcl_FreeParse(raw)

	descs := tokensToDescs(raw.tokenPtr, int(raw.numTokens), base)
	tokens, err := token.Reify(s, descs)
	if err != nil {
		return Parse{}, ""
	}
	return Parse{Tokens: tokens}, ""
}

// tokensToDescs converts the C parser's flat Tcl_Token array into the
// offset-based Desc form package token operates on, resolving every
// token's start pointer back to a byte offset against base (the address
// of the start of the null-terminated copy of the input we handed to the
// parser). The adapter must not retain these C pointers past the
// Tcl_FreeParse call that follows.
func tokensToDescs(tokenPtr *C.Tcl_Token, numTokens int, base uintptr) []token.Desc {
	if numTokens == 0 {
		return nil
	}
	raw := unsafe.Slice(tokenPtr, numTokens)
	descs := make([]token.Desc, numTokens)
	for i, tok := range raw {
		descs[i] = token.Desc{
			Type:          token.Type(tok._type),
			Offset:        int(uintptr(unsafe.Pointer(tok.start)) - base),
			Size:          int(tok.size),
			NumComponents: int(tok.numComponents),
		}
	}
	return descs
}

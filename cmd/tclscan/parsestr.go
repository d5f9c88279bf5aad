package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aidanhs/tclscan/internal/scan/parse"
	"github.com/aidanhs/tclscan/internal/scan/token"
)

// cmdParsestr prints the reified token tree the real Tcl parser
// produces for a single string — a debugging aid for understanding why
// the analyzer treated some construct the way it did.
func cmdParsestr(args []string) {
	fs := flag.NewFlagSet("parsestr", flag.ExitOnError)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: tclscan parsestr ( - | <script-str> )\n")
	}
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	s := fs.Arg(0)
	if s == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		s = string(data)
	}

	p := parse.NewTcl()
	for _, parsed := range p.ParseScript(s) {
		if parsed.Command != nil {
			fmt.Printf("command: %q\n", *parsed.Command)
		}
		for i := range parsed.Tokens {
			printTree(&parsed.Tokens[i], 0)
		}
	}
}

func printTree(t *token.Token, depth int) {
	fmt.Printf("%s%s %q\n", strings.Repeat("  ", depth), t.Type, t.Val)
	for i := range t.Tokens {
		printTree(&t.Tokens[i], depth+1)
	}
}

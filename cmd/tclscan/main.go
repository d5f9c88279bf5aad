// Command tclscan statically scans Tcl scripts for unsafe substitutions
// into code-shaped argument positions.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "check":
		cmdCheck(args)
	case "parsestr":
		cmdParsestr(args)
	case "baseline":
		cmdBaseline(args)
	case "-h", "-help", "--help", "help":
		usage()
	default:
		_, _ = fmt.Fprintf(os.Stderr, "tclscan: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `Usage: tclscan <command> [arguments]

Commands:
  check      scan a script for unsafe substitutions
  parsestr   print the reified token tree for a single string
  baseline   record, diff or suppress findings against a baseline database
`)
}

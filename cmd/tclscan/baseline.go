package main

import (
	"fmt"
	"os"

	"github.com/aidanhs/tclscan/internal/scan/analyze"
	"github.com/aidanhs/tclscan/internal/scan/parse"
	"github.com/aidanhs/tclscan/internal/scan/store"
)

// cmdBaseline drives the baseline database directly: recording a fresh
// scan, diffing a script against its last recorded scan, or silencing a
// specific finding (identified by the key shown alongside it in
// "tclscan baseline diff" output) so later diffs stop reporting it as new.
func cmdBaseline(args []string) {
	usage := func() {
		_, _ = fmt.Fprintf(os.Stderr, `Usage:
  tclscan baseline record <db-path> <script-path>
  tclscan baseline diff <db-path> <script-path>
  tclscan baseline suppress <db-path> <script-path> <key>
`)
	}

	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "record":
		baselineRecord(rest, usage)
	case "diff":
		baselineDiff(rest, usage)
	case "suppress":
		baselineSuppress(rest, usage)
	default:
		_, _ = fmt.Fprintf(os.Stderr, "tclscan baseline: unknown subcommand %q\n\n", sub)
		usage()
		os.Exit(1)
	}
}

func baselineRecord(args []string, usage func()) {
	if len(args) != 2 {
		usage()
		os.Exit(1)
	}
	dbPath, scriptPath := args[0], args[1]

	script, err := readScript(scriptPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a := analyze.New(parse.NewTcl(), nil)
	results := a.ScanScript(script)
	rec, err := st.Record(scriptPath, results)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("recorded scan #%d of %s: %d findings\n", rec.ID, scriptPath, len(results))
}

func baselineDiff(args []string, usage func()) {
	if len(args) != 2 {
		usage()
		os.Exit(1)
	}
	dbPath, scriptPath := args[0], args[1]

	script, err := readScript(scriptPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a := analyze.New(parse.NewTcl(), nil)
	results := a.ScanScript(script)
	fresh, err := st.Diff(scriptPath, results)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, r := range fresh {
		fmt.Printf("%s  [%s]\n", r.String(), store.FindingKey(r))
	}
	if len(fresh) > 0 {
		os.Exit(1)
	}
}

func baselineSuppress(args []string, usage func()) {
	if len(args) != 3 {
		usage()
		os.Exit(1)
	}
	dbPath, scriptPath, key := args[0], args[1], args[2]

	st, err := store.Open(dbPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := st.Suppress(scriptPath, key); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

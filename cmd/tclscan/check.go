package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aidanhs/tclscan/internal/scan/analyze"
	"github.com/aidanhs/tclscan/internal/scan/config"
	"github.com/aidanhs/tclscan/internal/scan/parse"
	"github.com/aidanhs/tclscan/internal/scan/result"
	"github.com/aidanhs/tclscan/internal/scan/store"
)

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	noWarn := fs.Bool("no-warn", false, "report only Danger findings, not Warn")
	rulesPath := fs.String("rules", "", "path to a command role rules file")
	baselinePath := fs.String("baseline", "", "path to a baseline database")
	failOnNew := fs.Bool("fail-on-new", false, "exit nonzero only on findings new since the baseline")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: tclscan check [--no-warn] [--rules path] [--baseline path] [--fail-on-new] ( - | <path> )\n\nFlags:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	target := fs.Arg(0)

	script, err := readScript(target)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var rules *config.RuleSet
	if *rulesPath != "" {
		rules, err = config.LoadRules(*rulesPath)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	a := analyze.New(parse.NewTcl(), rules)
	results := a.ScanScript(script)
	if *noWarn {
		results = filterDanger(results)
	}

	if *baselinePath == "" {
		printResults(results)
		return
	}

	st, err := store.Open(*baselinePath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fresh, err := st.Diff(target, results)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if _, err := st.Record(target, results); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printResults(results)
	if *failOnNew && len(fresh) > 0 {
		os.Exit(1)
	}
}

func readScript(target string) (string, error) {
	if target == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", target, err)
	}
	return string(data), nil
}

func filterDanger(results []result.CheckResult) []result.CheckResult {
	var out []result.CheckResult
	for _, r := range results {
		if r.Severity == result.Danger {
			out = append(out, r)
		}
	}
	return out
}

func printResults(results []result.CheckResult) {
	for _, r := range results {
		fmt.Println(r.String())
	}
}


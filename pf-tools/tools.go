package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/thatisuday/commando"
)

var traceKeys = []string{"font.pfloppy", "font.cff", "font.ttf", "font.diff"}

func main() {
	commando.
		SetExecutableName("pf-tools").
		SetVersion("v0.1.0").
		SetDescription("CLI for decoding, comparing and cross-checking CFF and TrueType fonts.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("dump").
		SetDescription("Parse every font in a file or directory tree and print a summary line per font.").
		SetShortDescription("font summaries").
		AddArgument("path", "font file or directory", "").
		AddFlag("errors,e", "print failures only", commando.Bool, nil).
		AddFlag("warnings,w", "print parse warnings", commando.Bool, nil).
		AddFlag("skip-cmap", "do not decode character maps", commando.Bool, nil).
		AddFlag("trace,t", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runDumpCommand)

	commando.
		Register("diff").
		SetDescription("Compare two fonts and print their differences. Exits with status 1 if they differ.").
		SetShortDescription("compare fonts").
		AddArgument("first", "font file", "").
		AddArgument("second", "font file", "").
		AddFlag("tolerance", "allowed coordinate deviation in font units", commando.Int, 1).
		AddFlag("timestamps", "compare creation and modification dates", commando.Bool, nil).
		AddFlag("trace,t", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runDiffCommand)

	commando.
		Register("check").
		SetDescription("Cross-check TrueType fonts against reference parsers.").
		SetShortDescription("cross-check fonts").
		AddArgument("path", "font file or directory", "").
		AddFlag("runes,r", "rune range to check (e.g. 20-24F)", commando.String, "20-24F").
		AddFlag("trace,t", "trace level [Debug|Info|Error]", commando.String, "Error").
		SetAction(runCheckCommand)

	commando.Parse(nil)
}

// setupTracing routes all trace keys of the module to Go's log package.
func setupTracing(flag commando.FlagValue) {
	level, err := flag.GetString()
	if err != nil {
		fatalf("invalid --trace flag: %v", err)
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{"tracing.adapter": "go"}
	for _, key := range traceKeys {
		conf["trace."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fatalf("cannot configure tracing: %v", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	var l tracing.TraceLevel
	switch level {
	case "Debug":
		l = tracing.LevelDebug
	case "Info":
		l = tracing.LevelInfo
	case "Error":
		l = tracing.LevelError
	default:
		fatalf("invalid trace level: %s", level)
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(l)
	}
}

// collectFiles returns path if it is a file, or all regular files below path
// in lexical order.
func collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// parseRuneRange parses "lo-hi" with hexadecimal bounds, optionally prefixed
// by "U+" or "0x". A single value is a range of one rune.
func parseRuneRange(spec string) ([]rune, error) {
	lo, hi, found := strings.Cut(strings.TrimSpace(spec), "-")
	from, err := parseCodepoint(lo)
	if err != nil {
		return nil, err
	}
	to := from
	if found {
		if to, err = parseCodepoint(hi); err != nil {
			return nil, err
		}
	}
	if to < from {
		return nil, fmt.Errorf("empty rune range %q", spec)
	}
	runes := make([]rune, 0, to-from+1)
	for r := from; r <= to; r++ {
		runes = append(runes, r)
	}
	return runes, nil
}

func parseCodepoint(token string) (rune, error) {
	hex := strings.TrimSpace(token)
	switch {
	case strings.HasPrefix(hex, "U+"), strings.HasPrefix(hex, "u+"):
		hex = hex[2:]
	case strings.HasPrefix(hex, "0x"), strings.HasPrefix(hex, "0X"):
		hex = hex[2:]
	}
	u, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || u > 0x10ffff {
		return 0, fmt.Errorf("invalid codepoint %q", token)
	}
	return rune(u), nil
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "pf-tools: "+format+"\n", args...)
	os.Exit(1)
}

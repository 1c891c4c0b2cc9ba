package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	"github.com/timheilig/pfloppy"
	"github.com/timheilig/pfloppy/internal/fontload"
)

func runCheckCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags["trace"])
	path := strings.TrimSpace(args["path"].Value)
	if path == "" {
		fatalf("path is required")
	}
	spec, err := flags["runes"].GetString()
	if err != nil {
		fatalf("invalid --runes flag: %v", err)
	}
	runes, err := parseRuneRange(spec)
	if err != nil {
		fatalf("%v", err)
	}
	files, err := collectFiles(path)
	if err != nil {
		fatalf("%v", err)
	}
	bad := 0
	for _, file := range files {
		n, err := checkFile(os.Stdout, file, runes)
		if err != nil {
			pterm.Error.Printf("%s: %v\n", file, err)
			bad++
		} else if n > 0 {
			bad++
		}
	}
	if bad > 0 {
		os.Exit(1)
	}
	pterm.Info.Printf("%d files checked\n", len(files))
}

// checkFile prints the mismatches of a font with the reference parsers and
// returns their number. Fonts other than TrueType are skipped.
func checkFile(w io.Writer, path string, runes []rune) (int, error) {
	f, err := pfloppy.LoadFont(path)
	if err != nil {
		return 0, err
	}
	if f.Kind != pfloppy.KindTTF {
		fmt.Fprintf(w, "%s: skipped, %s font\n", path, f.Kind)
		return 0, nil
	}
	ref, err := fontload.ParseOpenTypeFont(f.Binary)
	if err != nil {
		return 0, err
	}
	mm, err := fontload.CrossCheck(f.TTF, ref, runes)
	if err != nil {
		return 0, err
	}
	for _, m := range mm {
		fmt.Fprintf(w, "%s: %s\n", path, m)
	}
	return len(mm), nil
}

package main

import (
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	"github.com/timheilig/pfloppy"
	"github.com/timheilig/pfloppy/fontdiff"
)

func runDiffCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags["trace"])
	first := strings.TrimSpace(args["first"].Value)
	second := strings.TrimSpace(args["second"].Value)
	if first == "" || second == "" {
		fatalf("two font paths are required")
	}
	opt := fontdiff.DefaultOptions
	opt.Tolerance = mustFlagInt(flags["tolerance"], "tolerance")
	opt.Timestamps = mustFlagBool(flags["timestamps"], "timestamps")
	report, err := diffFiles(first, second, opt)
	if err != nil {
		fatalf("%v", err)
	}
	if report.Empty() {
		pterm.Info.Println("fonts match")
		return
	}
	pterm.Println(report.String())
	os.Exit(1)
}

func diffFiles(first, second string, opt fontdiff.Options) (*fontdiff.Report, error) {
	a, err := pfloppy.LoadFont(first)
	if err != nil {
		return nil, err
	}
	b, err := pfloppy.LoadFont(second)
	if err != nil {
		return nil, err
	}
	return fontdiff.Fonts(a, b, opt)
}

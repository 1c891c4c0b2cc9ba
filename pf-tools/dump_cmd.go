package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	"github.com/timheilig/pfloppy"
	"github.com/timheilig/pfloppy/ttf"
)

type dumpOptions struct {
	errorsOnly bool
	warnings   bool
	skipCMap   bool
}

func runDumpCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(flags["trace"])
	path := strings.TrimSpace(args["path"].Value)
	if path == "" {
		fatalf("path is required")
	}
	files, err := collectFiles(path)
	if err != nil {
		fatalf("%v", err)
	}
	opts := dumpOptions{
		errorsOnly: mustFlagBool(flags["errors"], "errors"),
		warnings:   mustFlagBool(flags["warnings"], "warnings"),
		skipCMap:   mustFlagBool(flags["skip-cmap"], "skip-cmap"),
	}
	failed := dumpFiles(os.Stdout, files, opts)
	if len(files) > 1 {
		pterm.Info.Printf("%d files, %d failed\n", len(files), failed)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// dumpFiles prints a summary for every file and returns the number of files
// which could not be decoded.
func dumpFiles(w io.Writer, files []string, opts dumpOptions) (failed int) {
	var popts []ttf.ParseOption
	if opts.skipCMap {
		popts = append(popts, ttf.SkipCMap)
	}
	for _, path := range files {
		f, err := pfloppy.LoadFont(path, popts...)
		if err != nil {
			failed++
			fmt.Fprintf(w, "%s: error: %v\n", path, err)
			continue
		}
		if opts.errorsOnly {
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", path, summary(f))
		if opts.warnings && f.TTF != nil {
			for _, warning := range f.TTF.Warnings() {
				fmt.Fprintf(w, "    %s\n", warning)
			}
		}
	}
	return
}

func summary(f *pfloppy.Font) string {
	var sb strings.Builder
	sb.WriteString(f.String())
	if f.TTF != nil {
		tags := f.TTF.TableTags()
		names := make([]string, len(tags))
		for i, tag := range tags {
			names[i] = strings.TrimSpace(tag.String())
		}
		fmt.Fprintf(&sb, ", tables: %s", strings.Join(names, " "))
	}
	if len(f.CFF) > 1 {
		fmt.Fprintf(&sb, ", %d fonts in CFF set", len(f.CFF))
	}
	return sb.String()
}

// Package main implements snapshotctl, a thin demonstration CLI driving
// the engine facade: it loads a movements file, runs one import batch,
// and renders the resulting snapshot series as Markdown.
//
// Grounded on etnz-portfolio's cmd/app.go (subcommand registration and
// the glamour-backed printMarkdown helper) and pcs/main.go (the
// subcommands.Commander wiring in main).
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

var noRender = flag.Bool("no-render", false, "disable markdown rendering in terminal output")

// Register registers every snapshotctl subcommand with c.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "reports")
}

// renderer is built once per process and reused by every report, rather
// than per-call like etnz-portfolio's printMarkdown does: the terminal
// width/color-profile autodetection glamour.WithAutoStyle() performs
// doesn't change between a "report" invocation's calls, and this binary
// only ever prints one report per run anyway, but building it lazily
// here means a -no-render run never pays for it at all.
var (
	renderer     *glamour.TermRenderer
	rendererOnce sync.Once
	rendererErr  error
)

func termRenderer() (*glamour.TermRenderer, error) {
	rendererOnce.Do(func() {
		renderer, rendererErr = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0),
		)
	})
	return renderer, rendererErr
}

// printMarkdown writes md to w, styled through glamour unless -no-render
// is set or styling fails, in which case the raw Markdown is written
// instead so a report is never silently dropped.
func printMarkdown(w io.Writer, md string) {
	if *noRender {
		fmt.Fprint(w, md)
		return
	}
	r, err := termRenderer()
	if err != nil {
		log.Printf("building markdown renderer: %v, printing raw markdown instead", err)
		fmt.Fprint(w, md)
		return
	}

	out, err := r.Render(md)
	if err != nil {
		log.Printf("rendering markdown: %v, printing raw markdown instead", err)
		fmt.Fprint(w, md)
		return
	}
	fmt.Fprint(w, out)
}

func fatalf(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitFailure
}

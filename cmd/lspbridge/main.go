// Command lspbridge is a terminal demo of the editor-protocol adapter:
// it opens a scripted document on a tcell screen, wires the adapter
// between the terminal surface and an in-process scripted connection,
// and lets you exercise hover, completion, signature help, navigation,
// and diagnostics interactively.
//
//	lspbridge [-options path/to/options.yaml]
//
// Mouse over a word for hover, type to complete, "(" for signature
// help, right-click a word for the navigation menu. Esc or Ctrl-C quits.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/lspbridge/internal/adapter"
	"github.com/dshills/lspbridge/internal/surface/term"
)

const demoText = `package demo

describe formats a scripted symbol summary.
describe takes a word and a count and returns text.

count tracks how often describe ran.
fixme: count overflows after 1 << 31 calls.

word is the token under the pointer.
describe(word, count) renders the summary line.
`

func main() {
	optionsPath := flag.String("options", "", "path to a YAML options file")
	responseDelay := flag.Duration("delay", 150*time.Millisecond, "scripted server response delay")
	flag.Parse()

	opts := adapter.DefaultOptions()
	if *optionsPath != "" {
		loaded, err := adapter.LoadOptions(*optionsPath)
		if err != nil {
			log.Fatalf("lspbridge: %v", err)
		}
		opts = loaded
	}

	if err := run(opts, *responseDelay); err != nil {
		fmt.Fprintf(os.Stderr, "lspbridge: %v\n", err)
		os.Exit(1)
	}
}

func run(opts adapter.Options, delay time.Duration) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	surface := term.NewSurface(screen, demoText)
	conn := newScriptConn(demoText, delay, func() {
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	})

	ad := adapter.New(surface, conn, surface, opts)
	defer ad.Remove()

	conn.PublishDemoDiagnostics()

	surface.Draw()
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}
		if _, ok := ev.(*tcell.EventInterrupt); !ok {
			if !surface.HandleEvent(ev) {
				return nil
			}
		}
		surface.Draw()
	}
}

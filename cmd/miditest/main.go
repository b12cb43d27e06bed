package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"fractunes/audio"
	"fractunes/debug"
	"fractunes/midi"
	"fractunes/samples"
	"fractunes/slot"
	"fractunes/theme"
	"fractunes/tui"
	"fractunes/widgets"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listInputs()
	case "monitor":
		err = monitor(os.Args[2:])
	case "locate":
		err = locate(os.Args[2:])
	case "envelope":
		err = envelope(os.Args[2:])
	case "rules":
		printRules()
	case "keys":
		fmt.Println(widgets.RenderKeyHelp(tui.Help()))
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("fractunes MIDI test scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                      - List MIDI inputs")
	fmt.Println("  monitor [input] [secs]    - Print decoded note-on events")
	fmt.Println("  locate [mode] [slot]      - Print sample paths")
	fmt.Println("  envelope file.wav [width] - Draw a sample's waveform")
	fmt.Println("  rules                     - Print the default match rules")
	fmt.Println("  keys                      - Print the TUI key bindings")
}

func listInputs() error {
	host, err := midi.NewDriverHost()
	if err != nil {
		return err
	}
	defer host.Close()

	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ports []midi.Port
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		ports, err := host.Inputs()
		ch <- result{ports: ports, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return r.err
		}
		if len(r.ports) == 0 {
			fmt.Println("  (none)")
		}
		for i, p := range r.ports {
			fmt.Printf("  %d: %s\n", i, p.Label())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
	return nil
}

type printer struct{}

func (printer) Dispatch(ev midi.NoteOnEvent) int {
	fmt.Printf("%s  note %3d  vel %3d  ch %2d  %s\n",
		ev.Timestamp.Format("15:04:05.000"), ev.Note, ev.Velocity, int(ev.Channel)+1, midi.Describe(ev.Note))
	return 0
}

func monitor(args []string) error {
	host, err := midi.NewDriverHost()
	if err != nil {
		return err
	}
	defer host.Close()

	preferred := ""
	if len(args) > 0 {
		preferred = args[0]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if len(args) > 1 {
		secs, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad duration %q: %w", args[1], err)
		}
		ctx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		defer cancel()
	}

	debug.SetOutput(os.Stderr)
	im := midi.NewInputManager(host, printer{}, preferred)
	if err := im.Request(ctx); err != nil {
		return err
	}
	if im.Selected() == "" {
		return fmt.Errorf("no MIDI inputs")
	}
	fmt.Printf("Listening on %s (Ctrl-C to stop)\n", im.Selected())

	im.Run(ctx)
	return nil
}

func locate(args []string) error {
	modes := slot.Modes()
	if len(args) > 0 {
		modes = args[:1]
	}
	for _, mode := range modes {
		for _, pad := range slot.Layout {
			if len(args) > 1 && pad.Name != args[1] {
				continue
			}
			fmt.Printf("  %-9s %-8s %s\n", mode, pad.Name, samples.Locate(mode, pad.Name))
		}
	}
	return nil
}

func envelope(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("envelope needs a WAV file")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	buf, err := audio.Decode(data)
	if err != nil {
		return err
	}

	width := 64
	if len(args) > 1 {
		if width, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("bad width %q: %w", args[1], err)
		}
	}

	fmt.Printf("%s: %d Hz, %d channels, %d frames, %v\n",
		args[0], buf.SampleRate(), buf.NumChannels(), buf.Frames(), buf.Duration())
	fg := theme.New(nil).Accent()
	fmt.Println(widgets.RenderWaveform(buf.Envelope(width), 8, 0, false, fg, lipgloss.Color(theme.PlayheadHex)))
	return nil
}

func printRules() {
	for _, mode := range slot.Modes() {
		fmt.Printf("=== %s ===\n", mode)
		for _, pad := range slot.Layout {
			fmt.Printf("  %-8s %s\n", pad.Name, slot.DefaultRule(mode, pad.Name))
		}
	}
}

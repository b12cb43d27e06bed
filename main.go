package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"fractunes/audio"
	"fractunes/config"
	"fractunes/debug"
	"fractunes/midi"
	"fractunes/samples"
	"fractunes/slot"
	"fractunes/theme"
	"fractunes/tui"
	"fractunes/widgets"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/fractunes/config.json)")
	source := flag.String("samples", "", "sample root: directory or http(s) URL (overrides config)")
	mode := flag.String("mode", "", "start in this mode: "+fmt.Sprint(slot.Modes()))
	debugLog := flag.String("debug", "", "write a debug log to this file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output())
		fmt.Fprintln(flag.CommandLine.Output(), widgets.RenderKeyHelp(tui.Help()))
	}
	flag.Parse()

	if err := run(*configPath, *source, *mode, *debugLog); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, source, mode, debugLog string) error {
	if debugLog != "" {
		if err := debug.Enable(debugLog); err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		defer debug.Disable()
	}
	log := debug.For("main")

	// Load config
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if source == "" {
		source = cfg.Samples
	}
	if mode == "" {
		mode = cfg.Mode
	}

	// Load theme
	palette, err := theme.LoadOrBuiltin(cfg.Palette)
	if err != nil {
		log.Warn("using builtin palette", "err", err)
	}
	th := theme.New(palette)

	// Audio output. Without it the pads still load and render, silently.
	engine := audio.NewEngine(audio.DefaultSampleRate)
	if err := engine.Open(); err != nil {
		debug.Report("audio.output", err)
	}
	defer engine.Close()

	bank := slot.NewBank(slot.Layout, slot.Options{
		Player: engine,
		Loader: samples.NewLoader(samples.NewFetcher(source)),
		Store:  cfg,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MIDI input manager (handles hot-plug)
	var host midi.Host
	if h, err := midi.NewDriverHost(); err != nil {
		log.Warn("no MIDI driver", "err", err)
	} else {
		host = h
		defer h.Close()
	}
	inputs := midi.NewInputManager(host, bank, cfg.MIDIInput)
	inputs.OnSelect(func(id string) {
		if err := cfg.SetMIDIInput(id); err != nil {
			debug.Report("config.save", err)
		}
	})
	go func() {
		if err := inputs.Request(ctx); err != nil {
			log.Warn("MIDI access", "state", inputs.State(), "err", err)
			return
		}
		inputs.Run(ctx)
	}()

	m := tui.NewModel(tui.Options{
		Bank:          bank,
		Inputs:        inputs,
		Theme:         th,
		WaveformWidth: cfg.WaveformWidth,
		OnMode: func(mode string) {
			if err := cfg.SetMode(mode); err != nil {
				debug.Report("config.save", err)
			}
		},
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Samples load in the background; the pads show progress
	go func() {
		p.Send(tui.SwitchMode(bank, mode)())
	}()

	log.Info("starting", "mode", mode, "samples", source, "config", cfg.Path())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

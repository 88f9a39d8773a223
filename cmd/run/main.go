package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"
)

func main() {
	var (
		frames      = flag.Int("frames", 120, "Frames to run in scripted mode")
		samples     = flag.Int("samples", 735, "Samples rendered per frame (44100/60)")
		tone        = flag.Float64("tone", 440, "Tone frequency for scripted mode (Hz)")
		duration    = flag.Int("ms", 500, "Tone duration for scripted mode (ms)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*samples); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*frames, *samples, *tone, *duration); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(frames, samples int, tone float64, durationMs int) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	fmt.Printf("Mounted synth plugin on in-memory host\n")
	fmt.Printf("Playing %gHz for %dms over %d frames\n\n", tone, durationMs, frames)

	s.plugin.PlayTone(tone, durationMs)

	for i := 0; i < frames; i++ {
		s.step(samples)
	}

	fmt.Printf("Channels after %d frames:\n", frames)
	for _, line := range s.plugin.channels() {
		fmt.Printf("  #%d %s %gHz (%d frames left)\n", line.ID, line.State, line.Freq, line.Left)
	}

	fmt.Printf("\nHost log:\n")
	for _, line := range s.host.Logs() {
		fmt.Printf("  %s", line)
	}

	s.shutdown()
	return nil
}

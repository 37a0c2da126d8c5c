package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-synth/internal/wavio"
	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/synth"
	"github.com/cwbudde/algo-synth/tester"
)

func main() {
	// Command-line flags
	note := flag.Int("note", 69, "MIDI note number (69 = A4 = 440 Hz)")
	velocity := flag.Float64("velocity", 0.8, "Note velocity (0-1)")
	duration := flag.Float64("duration", 2.0, "Held-note duration in seconds")
	tail := flag.Float64("tail", 5.0, "Maximum release tail in seconds")
	oscName := flag.String("oscillator", "", "Oscillator override: sine, saw, square, triangle, wavetable, fm")
	filterName := flag.String("filter", "", "Filter override: lowpass, highpass, bandpass")
	cutoff := flag.Float64("cutoff", -1, "Normalized filter cutoff override (0-1)")
	resonance := flag.Float64("resonance", -1, "Normalized filter resonance override (0-1)")
	sampleRate := flag.Int("sample-rate", 44100, "Render sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	t := tester.New(*sampleRate)

	if *presetPath != "" {
		params, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		t.Params().CopyFrom(params)
	}

	if *oscName != "" {
		oscType, err := parseOscillator(*oscName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		t.SetOscillatorType(oscType)
	}
	if *filterName != "" {
		filterType, err := parseFilter(*filterName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		t.SetFilterType(filterType)
	}
	if *cutoff >= 0 {
		t.SetFilterCutoff(float32(*cutoff))
	}
	if *resonance >= 0 {
		t.SetFilterResonance(float32(*resonance))
	}

	fmt.Printf("Rendering note %d, velocity %.2f, for %.2f seconds at %d Hz...\n",
		*note, *velocity, *duration, *sampleRate)

	t.StartRecording()
	t.PlayNote(*note, float32(*velocity))
	t.Render(*duration)
	t.StopNote()
	t.RenderUntilSilent(*tail)
	samples := t.StopRecording()

	if err := wavio.WriteMono(*output, samples, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames, peak %.3f)\n", *output, len(samples), peak(samples))
}

func parseOscillator(name string) (synth.OscillatorType, error) {
	switch strings.ToLower(name) {
	case "sine":
		return synth.OscSine, nil
	case "square":
		return synth.OscSquare, nil
	case "saw", "sawtooth":
		return synth.OscSaw, nil
	case "triangle":
		return synth.OscTriangle, nil
	case "wavetable":
		return synth.OscWavetable, nil
	case "fm":
		return synth.OscFM, nil
	}
	return 0, fmt.Errorf("unknown oscillator %q", name)
}

func parseFilter(name string) (synth.FilterType, error) {
	switch strings.ToLower(name) {
	case "lowpass", "lp":
		return synth.LowPass, nil
	case "highpass", "hp":
		return synth.HighPass, nil
	case "bandpass", "bp":
		return synth.BandPass, nil
	}
	return 0, fmt.Errorf("unknown filter %q", name)
}

func peak(samples []float32) float64 {
	var p float32
	for _, s := range samples {
		if s > p {
			p = s
		} else if -s > p {
			p = -s
		}
	}
	return float64(p)
}

// synth-distance compares a rendered note (or an existing WAV) against a
// reference recording and prints the distance metrics.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-synth/analysis"
	"github.com/cwbudde/algo-synth/internal/wavio"
	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/tester"
)

func main() {
	referencePath := flag.String("reference", "reference/note.wav", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render the candidate")
	presetPath := flag.String("preset", "", "Preset JSON path for the rendered candidate (optional)")
	note := flag.Int("note", 60, "MIDI note for the rendered candidate")
	velocity := flag.Float64("velocity", 0.8, "Velocity (0-1) for the rendered candidate")
	releaseAfter := flag.Float64("release-after", 1.0, "Seconds before NoteOff for the rendered candidate")
	maxDuration := flag.Float64("max-duration", 6.0, "Maximum rendered duration in seconds")
	sampleRate := flag.Int("sample-rate", 44100, "Analysis sample rate in Hz")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write the rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	ref, refSR, err := wavio.ReadMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err = wavio.ResampleIfNeeded(ref, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		candRaw, candSR, err := wavio.ReadMono(*candidatePath)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
		cand, err = wavio.ResampleIfNeeded(candRaw, candSR, *sampleRate)
		if err != nil {
			die("failed to resample candidate: %v", err)
		}
	} else {
		rendered, err := renderCandidate(*presetPath, *note, float32(*velocity), *releaseAfter, *maxDuration, *sampleRate)
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		cand = make([]float64, len(rendered))
		for i, s := range rendered {
			cand[i] = float64(s)
		}
		if *writeCandidate != "" {
			if err := wavio.WriteMono(*writeCandidate, rendered, *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	fmt.Printf("Reference frames: %d\n", metrics.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", metrics.CandidateFrames)
	fmt.Printf("Envelope RMSE:    %.4f\n", metrics.EnvelopeRMSE)
	fmt.Printf("Spectral RMSE:    %.2f dB\n", metrics.SpectralRMSEDB)
	fmt.Printf("Pitch error:      %.2f Hz\n", metrics.PitchErrorHz)
	fmt.Printf("Score:            %.4f\n", metrics.Score)
}

func renderCandidate(presetPath string, note int, velocity float32, releaseAfter, maxDuration float64, sampleRate int) ([]float32, error) {
	t := tester.New(sampleRate)
	if presetPath != "" {
		params, err := preset.LoadJSON(presetPath)
		if err != nil {
			return nil, err
		}
		t.Params().CopyFrom(params)
	}

	t.StartRecording()
	t.PlayNote(note, velocity)
	t.Render(releaseAfter)
	t.StopNote()
	t.RenderUntilSilent(maxDuration - releaseAfter)
	return t.StopRecording(), nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// synth-fit fits a small set of synth knobs to a reference recording,
// scored by the analysis package. The optimizer works on normalized [0,1]
// knob values, which map one-to-one onto engine parameters, and writes the
// best candidate out as a preset JSON.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/algo-synth/analysis"
	"github.com/cwbudde/algo-synth/internal/wavio"
	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/synth"
	"github.com/cwbudde/algo-synth/tester"
	"github.com/cwbudde/mayfly"
)

// Knobs under optimization, in optimizer dimension order.
var fitParams = []synth.Param{
	synth.ParamAttack,
	synth.ParamDecay,
	synth.ParamSustain,
	synth.ParamRelease,
	synth.ParamFilterCutoff,
	synth.ParamFilterResonance,
	synth.ParamMasterGain,
}

func main() {
	referencePath := flag.String("reference", "reference/note.wav", "Reference WAV path")
	presetPath := flag.String("preset", "", "Base preset JSON path (optional)")
	outputPreset := flag.String("output-preset", "fitted.json", "Path to write best fitted preset JSON")
	note := flag.Int("note", 60, "MIDI note to fit")
	velocity := flag.Float64("velocity", 0.8, "Note velocity (0-1) for evaluation renders")
	releaseAfter := flag.Float64("release-after", 1.0, "Seconds before NoteOff for each evaluation render")
	maxDuration := flag.Float64("max-duration", 6.0, "Maximum evaluation render duration in seconds")
	sampleRate := flag.Int("sample-rate", 44100, "Render/analysis sample rate")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 25, "Print progress every N evaluations")
	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}
	if *reportEvery < 1 {
		*reportEvery = 1
	}

	baseParams := synth.NewParams()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		baseParams = loaded
	}

	refRaw, refSR, err := wavio.ReadMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	refSamples, err := wavio.ResampleIfNeeded(refRaw, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}
	if len(refSamples) < *sampleRate/10 {
		die("reference too short: %d samples", len(refSamples))
	}

	evaluate := func(knobs []float64) float64 {
		t := tester.New(*sampleRate)
		t.Params().CopyFrom(baseParams)
		for i, p := range fitParams {
			t.Params().Set(p, float32(knobs[i]))
		}

		t.StartRecording()
		t.PlayNote(*note, float32(*velocity))
		t.Render(*releaseAfter)
		t.StopNote()
		t.RenderUntilSilent(*maxDuration - *releaseAfter)
		rendered := t.StopRecording()

		cand := make([]float64, len(rendered))
		for i, s := range rendered {
			cand[i] = float64(s)
		}
		return analysis.Compare(refSamples, cand, *sampleRate).Score
	}

	fmt.Printf("Fitting %d knobs to %s (note %d, %d evals max, %.0fs budget)...\n",
		len(fitParams), *referencePath, *note, *maxEvals, *timeBudget)

	deadline := time.Now().Add(time.Duration(*timeBudget * float64(time.Second)))
	evals := 0
	bestScore := math.Inf(1)
	bestKnobs := make([]float64, len(fitParams))

	for round := 0; evals < *maxEvals && time.Now().Before(deadline); round++ {
		iters := maxInt(1, *mayflyRoundEvals/(2*(*mayflyPop)))

		cfg, err := newMayflyConfig(strings.ToLower(*mayflyVariant), *mayflyPop, len(fitParams), iters)
		if err != nil {
			die("invalid mayfly variant: %v", err)
		}
		cfg.Rand = rand.New(rand.NewSource(*seed + int64(round)*7919))

		cfg.ObjectiveFunc = func(pos []float64) float64 {
			if evals >= *maxEvals || time.Now().After(deadline) {
				return bestScore + 1.0
			}
			score := evaluate(pos)
			evals++
			if score < bestScore {
				bestScore = score
				copy(bestKnobs, pos)
				fmt.Printf("eval %d: new best %.6f (%s)\n", evals, score, formatKnobs(pos))
			} else if evals%*reportEvery == 0 {
				fmt.Printf("eval %d: score %.6f, best %.6f\n", evals, score, bestScore)
			}
			return score
		}

		if _, err := runMayfly(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
			break
		}
	}

	if math.IsInf(bestScore, 1) {
		die("no candidate evaluated")
	}

	fitted := synth.NewParams()
	fitted.CopyFrom(baseParams)
	for i, p := range fitParams {
		fitted.Set(p, float32(bestKnobs[i]))
	}
	if err := preset.SaveJSON(*outputPreset, fitted); err != nil {
		die("failed to write preset: %v", err)
	}

	fmt.Printf("Best score %.6f after %d evals; wrote %s\n", bestScore, evals, *outputPreset)
	for i, p := range fitParams {
		fmt.Printf("  %-20s %.4f (%s)\n", p.Key(), bestKnobs[i], p.Display(float32(bestKnobs[i])))
	}
}

func newMayflyConfig(variant string, pop, dims, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func formatKnobs(knobs []float64) string {
	var b strings.Builder
	for i, v := range knobs {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%.4f", v)
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

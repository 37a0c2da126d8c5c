// Package tester is a standalone harness that drives the synthesis engine
// without any plugin host: it feeds raw MIDI batches at block boundaries,
// pulls audio blocks, and can record the result to a WAV file. A test
// suite (or a human at a shell) talks to this instead of a DAW.
package tester

import (
	"github.com/cwbudde/algo-synth/internal/wavio"
	"github.com/cwbudde/algo-synth/synth"
)

const defaultBlockSize = 128

// Tester owns an engine plus the block plumbing around it: pending MIDI
// events, pre-allocated channel buffers, and an optional recording of the
// mono output.
type Tester struct {
	sampleRate int
	engine     *synth.Engine
	blockSize  int

	pending  [][3]byte
	lastNote int

	channels [][]float32

	recording bool
	recorded  []float32
}

// New creates a tester rendering stereo blocks at the given sample rate.
func New(sampleRate int) *Tester {
	t := &Tester{
		sampleRate: sampleRate,
		engine:     synth.NewEngine(float32(sampleRate), nil),
		blockSize:  defaultBlockSize,
		lastNote:   60,
	}
	t.channels = make([][]float32, 2)
	for c := range t.channels {
		t.channels[c] = make([]float32, t.blockSize)
	}
	return t
}

// Engine exposes the wrapped engine for direct inspection.
func (t *Tester) Engine() *synth.Engine {
	return t.engine
}

// Params exposes the shared parameter set.
func (t *Tester) Params() *synth.Params {
	return t.engine.Params()
}

// SampleRate returns the render sample rate in Hz.
func (t *Tester) SampleRate() int {
	return t.sampleRate
}

// PlayNote queues a Note On; it is applied at the next block boundary,
// exactly as a host would deliver it. Velocity is normalized [0,1].
func (t *Tester) PlayNote(note int, velocity float32) {
	t.lastNote = note
	vel := byte(clamp01(velocity)*126) + 1 // keep a nonzero on-velocity
	t.pending = append(t.pending, [3]byte{0x90, byte(note & 0x7F), vel})
}

// StopNote queues a Note Off for the most recently played note.
func (t *Tester) StopNote() {
	t.pending = append(t.pending, [3]byte{0x80, byte(t.lastNote & 0x7F), 0})
}

// SendMessage queues an arbitrary raw channel-voice message.
func (t *Tester) SendMessage(msg [3]byte) {
	t.pending = append(t.pending, msg)
}

// SetOscillatorType points the oscillator-type parameter at the middle of
// the value band for the given waveform.
func (t *Tester) SetOscillatorType(oscType synth.OscillatorType) {
	t.engine.Params().Set(synth.ParamOscillatorType, (float32(oscType)+0.5)/6)
}

// SetFilterType points the filter-type parameter at the given response.
func (t *Tester) SetFilterType(filterType synth.FilterType) {
	t.engine.Params().Set(synth.ParamFilterType, (float32(filterType)+0.5)/3)
}

// SetFilterCutoff sets the normalized cutoff (exponentially mapped over
// 20 Hz..20 kHz by the engine).
func (t *Tester) SetFilterCutoff(value float32) {
	t.engine.Params().Set(synth.ParamFilterCutoff, value)
}

// SetFilterResonance sets the normalized resonance.
func (t *Tester) SetFilterResonance(value float32) {
	t.engine.Params().Set(synth.ParamFilterResonance, value)
}

// StartRecording begins capturing the mono output of every rendered block.
func (t *Tester) StartRecording() {
	t.recording = true
	t.recorded = t.recorded[:0]
}

// StopRecording ends the capture and returns the recorded samples.
func (t *Tester) StopRecording() []float32 {
	t.recording = false
	return t.recorded
}

// SaveRecordingToFile writes the recorded samples as a 32-bit float WAV at
// the engine sample rate. Failure is the caller's problem, never fatal to
// the engine.
func (t *Tester) SaveRecordingToFile(path string) error {
	return wavio.WriteMonoFloat(path, t.recorded, t.sampleRate)
}

// RenderBlock renders one block of the given frame count and returns the
// mono output. Pending MIDI is drained and applied before the first sample.
func (t *Tester) RenderBlock(numFrames int) []float32 {
	if numFrames > len(t.channels[0]) {
		for c := range t.channels {
			t.channels[c] = make([]float32, numFrames)
		}
	}

	t.engine.ProcessEvents(t.pending)
	t.pending = t.pending[:0]

	block := make([][]float32, len(t.channels))
	for c := range t.channels {
		block[c] = t.channels[c][:numFrames]
	}
	t.engine.Process(block)

	mono := make([]float32, numFrames)
	copy(mono, block[0])
	if t.recording {
		t.recorded = append(t.recorded, mono...)
	}
	return mono
}

// Render renders for the given duration in seconds and returns the mono
// output.
func (t *Tester) Render(seconds float64) []float32 {
	total := int(float64(t.sampleRate) * seconds)
	out := make([]float32, 0, total)
	for rendered := 0; rendered < total; {
		n := t.blockSize
		if rendered+n > total {
			n = total - rendered
		}
		out = append(out, t.RenderBlock(n)...)
		rendered += n
	}
	return out
}

// RenderUntilSilent keeps rendering until every voice has self-deactivated
// or maxSeconds elapses, and returns the mono tail.
func (t *Tester) RenderUntilSilent(maxSeconds float64) []float32 {
	maxFrames := int(float64(t.sampleRate) * maxSeconds)
	out := make([]float32, 0, t.blockSize)
	for rendered := 0; rendered < maxFrames; rendered += t.blockSize {
		out = append(out, t.RenderBlock(t.blockSize)...)
		if t.engine.ActiveVoices() == 0 {
			break
		}
	}
	return out
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

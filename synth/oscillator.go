package synth

import "math"

// OscillatorType selects the waveform generated by an Oscillator.
type OscillatorType int

const (
	OscSine OscillatorType = iota
	OscSquare
	OscSaw
	OscTriangle
	OscWavetable
	OscFM
)

func (t OscillatorType) String() string {
	switch t {
	case OscSine:
		return "Sine"
	case OscSquare:
		return "Square"
	case OscSaw:
		return "Saw"
	case OscTriangle:
		return "Triangle"
	case OscWavetable:
		return "Wavetable"
	case OscFM:
		return "FM"
	default:
		return "Unknown"
	}
}

const (
	minFrequency = 0.1
	maxFrequency = 20000.0

	wavetableSize     = 2048
	defaultHarmonics  = 16
	maxHarmonics      = 32
	vibratoRateHz     = 5.0
	vibratoDepthScale = 0.05
)

// fmParams holds the state of the secondary (modulator) phase accumulator
// and the two frequency ratios of the FM pair.
type fmParams struct {
	carrierRatio   float32
	modulatorRatio float32
	modIndex       float32
	modulatorPhase float32
}

// Oscillator generates one waveform sample per NextSample call from a phase
// accumulator kept in [0,1). The square and saw shapes carry a PolyBLEP
// correction near their discontinuities.
type Oscillator struct {
	sampleRate float32
	frequency  float32
	phase      float32
	oscType    OscillatorType

	wavetable *Wavetable
	harmonics int
	fm        fmParams
}

// NewOscillator creates an oscillator at the given sample rate, defaulting
// to a 440 Hz sine.
func NewOscillator(sampleRate float32) *Oscillator {
	return &Oscillator{
		sampleRate: sampleRate,
		frequency:  440.0,
		oscType:    OscSine,
		wavetable:  NewWavetable(wavetableSize),
		harmonics:  defaultHarmonics,
		fm: fmParams{
			carrierRatio:   1.0,
			modulatorRatio: 2.0,
			modIndex:       3.0,
		},
	}
}

// SetFrequency clamps the frequency to the audible range.
func (o *Oscillator) SetFrequency(frequency float32) {
	o.frequency = clampf(frequency, minFrequency, maxFrequency)
}

// Frequency returns the current (clamped) frequency in Hz.
func (o *Oscillator) Frequency() float32 {
	return o.frequency
}

// SetSampleRate updates the sample rate used for phase increments.
func (o *Oscillator) SetSampleRate(sampleRate float32) {
	o.sampleRate = sampleRate
}

// SetType switches the waveform. Entering wavetable mode regenerates the
// harmonic-stacked table; this is the only place the table is rebuilt, so
// NextSample stays allocation- and regeneration-free.
func (o *Oscillator) SetType(oscType OscillatorType) {
	if oscType == OscWavetable && o.oscType != OscWavetable {
		o.wavetable.GenerateHarmonics(o.harmonics)
	}
	o.oscType = oscType
}

// Type returns the current waveform selection.
func (o *Oscillator) Type() OscillatorType {
	return o.oscType
}

// SetWavetableHarmonics sets the harmonic count used for the stacked
// wavetable. The table is rebuilt immediately only while in wavetable mode;
// otherwise the new count takes effect on the next transition into it.
func (o *Oscillator) SetWavetableHarmonics(n int) {
	if n < 1 {
		n = 1
	}
	if n > maxHarmonics {
		n = maxHarmonics
	}
	if n == o.harmonics {
		return
	}
	o.harmonics = n
	if o.oscType == OscWavetable {
		o.wavetable.GenerateHarmonics(n)
	}
}

// SetFMParams sets the carrier ratio, modulator ratio, and modulation index
// of the FM pair.
func (o *Oscillator) SetFMParams(carrierRatio, modulatorRatio, modIndex float32) {
	o.fm.carrierRatio = carrierRatio
	o.fm.modulatorRatio = modulatorRatio
	o.fm.modIndex = modIndex
}

// NextSample returns the waveform value for the current phase, then advances
// the phase by frequency/sampleRate (wrapped into [0,1)).
func (o *Oscillator) NextSample() float32 {
	var sample float32
	switch o.oscType {
	case OscSine:
		sample = float32(math.Sin(2 * math.Pi * float64(o.phase)))
	case OscSquare:
		sample = o.blSquare()
	case OscSaw:
		sample = o.blSaw()
	case OscTriangle:
		sample = triangleShape(o.phase)
	case OscWavetable:
		sample = o.wavetable.Sample(o.phase)
	case OscFM:
		// FM advances both of its phase accumulators itself.
		return o.processFM()
	}

	o.phase += o.frequency / o.sampleRate
	o.phase -= float32(math.Floor(float64(o.phase)))
	return sample
}

// polyBLEP returns the band-limited step correction for a discontinuity at
// phase 0 (and, wrapped, at 1). dt is the per-sample phase increment; the
// quadratic smooths the edge across roughly one sample.
func (o *Oscillator) polyBLEP(t float32) float32 {
	dt := o.frequency / o.sampleRate
	if t < dt {
		t /= dt
		return t*t*2 - t*4 + 2
	}
	if t > 1-dt {
		t = (t-1)/dt + 1
		return t*t*2 - t*4 + 2
	}
	return 0
}

func (o *Oscillator) blSaw() float32 {
	saw := 2*o.phase - 1
	return saw - o.polyBLEP(o.phase)
}

func (o *Oscillator) blSquare() float32 {
	var square float32 = 1
	if o.phase >= 0.5 {
		square = -1
	}
	shifted := o.phase + 0.5
	if shifted >= 1 {
		shifted -= 1
	}
	return square - o.polyBLEP(o.phase) + o.polyBLEP(shifted)
}

// triangleShape is the piecewise-linear ramp over four phase quadrants.
// Left uncorrected: the low harmonic content tolerates the aliasing.
func triangleShape(p float32) float32 {
	switch {
	case p < 0.25:
		return p * 4
	case p < 0.75:
		return 2 - p*4
	default:
		return p*4 - 4
	}
}

func (o *Oscillator) processFM() float32 {
	modFreq := o.frequency * o.fm.modulatorRatio
	carrierFreq := o.frequency * o.fm.carrierRatio

	o.fm.modulatorPhase += modFreq / o.sampleRate
	o.fm.modulatorPhase -= float32(math.Floor(float64(o.fm.modulatorPhase)))

	modAmount := o.fm.modIndex * float32(math.Sin(2*math.Pi*float64(o.fm.modulatorPhase)))
	carrierPhase := o.phase + modAmount/(2*math.Pi)
	out := float32(math.Sin(2 * math.Pi * float64(carrierPhase)))

	o.phase += carrierFreq / o.sampleRate
	o.phase -= float32(math.Floor(float64(o.phase)))
	return out
}

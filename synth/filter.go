package synth

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

// FilterType selects which output of the filter is returned.
type FilterType int

const (
	LowPass FilterType = iota
	HighPass
	BandPass
)

func (t FilterType) String() string {
	switch t {
	case LowPass:
		return "Low Pass"
	case HighPass:
		return "High Pass"
	case BandPass:
		return "Band Pass"
	}
	return "Unknown"
}

// FilterForm selects the filter topology.
type FilterForm int

const (
	// FormStateVariable is a 12 dB/octave state-variable topology deriving
	// low-, high-, and band-pass outputs from shared integrator state.
	FormStateVariable FilterForm = iota
	// FormBiquad is an RBJ cookbook biquad section per type.
	FormBiquad
)

const (
	minCutoffHz = 20.0
	maxCutoffHz = 20000.0
	// Resonance stays strictly below 1 so the state-variable damping term
	// never reaches zero and the biquad poles stay inside the unit circle.
	maxResonance = 0.99
	// Floor for the biquad Q derivation; alpha = sin(w)/(2*resonance) is
	// undefined at zero.
	minBiquadResonance = 0.01
)

// Filter is a per-sample resonant filter. Both topologies share the same
// contract; the form is chosen at construction/configuration time, never
// per sample.
type Filter struct {
	sampleRate float32
	cutoff     float32
	resonance  float32
	filterType FilterType
	form       FilterForm

	// State-variable integrator state.
	lp float32
	bp float32

	// Biquad section, rebuilt lazily on parameter changes.
	section biquad.Section
	dirty   bool
}

// NewFilter creates a state-variable low-pass at 1 kHz with 0.5 resonance.
func NewFilter(sampleRate float32) *Filter {
	return &Filter{
		sampleRate: sampleRate,
		cutoff:     1000.0,
		resonance:  0.5,
		filterType: LowPass,
		form:       FormStateVariable,
		dirty:      true,
	}
}

// SetSampleRate updates the sample rate and re-derives coefficients.
func (f *Filter) SetSampleRate(sampleRate float32) {
	f.sampleRate = sampleRate
	f.dirty = true
}

// SetCutoff clamps the cutoff to [20 Hz, 20 kHz].
func (f *Filter) SetCutoff(cutoff float32) {
	cutoff = clampf(cutoff, minCutoffHz, maxCutoffHz)
	if cutoff != f.cutoff {
		f.cutoff = cutoff
		f.dirty = true
	}
}

// SetResonance clamps the resonance to [0, 0.99].
func (f *Filter) SetResonance(resonance float32) {
	resonance = clampf(resonance, 0, maxResonance)
	if resonance != f.resonance {
		f.resonance = resonance
		f.dirty = true
	}
}

// SetType selects which response is returned.
func (f *Filter) SetType(filterType FilterType) {
	if filterType != f.filterType {
		f.filterType = filterType
		f.dirty = true
	}
}

// SetForm switches topology and clears all history state.
func (f *Filter) SetForm(form FilterForm) {
	if form != f.form {
		f.form = form
		f.Reset()
	}
}

// Reset clears the filter history.
func (f *Filter) Reset() {
	f.lp = 0
	f.bp = 0
	f.section.Reset()
}

// Process filters one sample.
func (f *Filter) Process(input float32) float32 {
	if f.form == FormBiquad {
		return f.processBiquad(input)
	}
	return f.processSVF(input)
}

// processSVF runs one step of the state-variable filter. The low-pass
// integrator is advanced before the high-pass node is formed; with the
// damping term q = 1 - resonance bounded away from zero the zero-input
// response stays inside the unit circle.
func (f *Filter) processSVF(input float32) float32 {
	fc := 2.0 * f.cutoff / f.sampleRate
	q := 1.0 - f.resonance

	f.lp += fc * f.bp
	hp := input - f.lp - q*f.bp
	f.bp += fc * hp

	f.lp = float32(dspcore.FlushDenormals(float64(f.lp)))
	f.bp = float32(dspcore.FlushDenormals(float64(f.bp)))

	switch f.filterType {
	case HighPass:
		return hp
	case BandPass:
		return f.bp
	default:
		return f.lp
	}
}

func (f *Filter) processBiquad(input float32) float32 {
	if f.dirty {
		f.rebuildSection()
	}
	return float32(f.section.ProcessSample(float64(input)))
}

// rebuildSection derives RBJ cookbook coefficients for the current type and
// swaps in a fresh biquad section. Parameter changes land at block
// boundaries, so the history reset this implies is inaudible.
func (f *Filter) rebuildSection() {
	omega := 2 * math.Pi * float64(f.cutoff) / float64(f.sampleRate)
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	res := float64(maxf(f.resonance, minBiquadResonance))
	alpha := sinOmega / (2 * res)

	var b0, b1, b2 float64
	switch f.filterType {
	case HighPass:
		b0 = (1 + cosOmega) / 2
		b1 = -(1 + cosOmega)
		b2 = (1 + cosOmega) / 2
	case BandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default: // LowPass
		b0 = (1 - cosOmega) / 2
		b1 = 1 - cosOmega
		b2 = (1 - cosOmega) / 2
	}
	a0 := 1 + alpha
	inv := 1.0 / a0

	coeffs := biquad.Coefficients{
		B0: b0 * inv,
		B1: b1 * inv,
		B2: b2 * inv,
		A1: (-2 * cosOmega) * inv,
		A2: (1 - alpha) * inv,
	}
	f.section = *biquad.NewSection(coeffs)
	f.dirty = false
}

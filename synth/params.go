package synth

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-approx"
)

// Param identifies one entry of the shared parameter set.
type Param int

const (
	ParamOscillatorType Param = iota

	ParamAttack
	ParamDecay
	ParamSustain
	ParamRelease

	ParamFilterType
	ParamFilterCutoff
	ParamFilterResonance

	ParamFMCarrierRatio
	ParamFMModulatorRatio
	ParamFMModIndex

	ParamWavetableHarmonics

	ParamMasterGain

	numParams
)

// NumParams is the size of the parameter surface.
const NumParams = int(numParams)

// envTimeScale maps a normalized envelope time to seconds.
const envTimeScale = 5.0

// Name returns the display name of the parameter.
func (p Param) Name() string {
	switch p {
	case ParamOscillatorType:
		return "Oscillator Type"
	case ParamAttack:
		return "Attack"
	case ParamDecay:
		return "Decay"
	case ParamSustain:
		return "Sustain"
	case ParamRelease:
		return "Release"
	case ParamFilterType:
		return "Filter Type"
	case ParamFilterCutoff:
		return "Filter Cutoff"
	case ParamFilterResonance:
		return "Filter Resonance"
	case ParamFMCarrierRatio:
		return "FM Carrier Ratio"
	case ParamFMModulatorRatio:
		return "FM Modulator Ratio"
	case ParamFMModIndex:
		return "FM Mod Index"
	case ParamWavetableHarmonics:
		return "Wavetable Harmonics"
	case ParamMasterGain:
		return "Master Gain"
	}
	return ""
}

// Key returns the snake_case identifier used by presets.
func (p Param) Key() string {
	switch p {
	case ParamOscillatorType:
		return "oscillator_type"
	case ParamAttack:
		return "attack"
	case ParamDecay:
		return "decay"
	case ParamSustain:
		return "sustain"
	case ParamRelease:
		return "release"
	case ParamFilterType:
		return "filter_type"
	case ParamFilterCutoff:
		return "filter_cutoff"
	case ParamFilterResonance:
		return "filter_resonance"
	case ParamFMCarrierRatio:
		return "fm_carrier_ratio"
	case ParamFMModulatorRatio:
		return "fm_modulator_ratio"
	case ParamFMModIndex:
		return "fm_mod_index"
	case ParamWavetableHarmonics:
		return "wavetable_harmonics"
	case ParamMasterGain:
		return "master_gain"
	}
	return ""
}

// Default returns the normalized default value.
func (p Param) Default() float32 {
	switch p {
	case ParamOscillatorType:
		return 0.0 // Sine
	case ParamAttack:
		return 0.01 / envTimeScale // 10 ms
	case ParamDecay:
		return 0.1 / envTimeScale // 100 ms
	case ParamSustain:
		return 0.7
	case ParamRelease:
		return 0.3 / envTimeScale // 300 ms
	case ParamFilterType:
		return 0.0 // Low pass
	case ParamFilterCutoff:
		return 1.0 // fully open
	case ParamFilterResonance:
		return 0.1
	case ParamFMCarrierRatio:
		return 0.5
	case ParamFMModulatorRatio:
		return 0.5
	case ParamFMModIndex:
		return 0.3
	case ParamWavetableHarmonics:
		return 0.5
	case ParamMasterGain:
		return 0.5
	}
	return 0
}

// Unit returns the display unit label.
func (p Param) Unit() string {
	switch p {
	case ParamAttack, ParamDecay, ParamRelease:
		return "s"
	case ParamFilterCutoff:
		return "Hz"
	case ParamFMCarrierRatio, ParamFMModulatorRatio:
		return "x"
	}
	return ""
}

// Display formats a normalized value the way a host control surface would
// show it.
func (p Param) Display(value float32) string {
	switch p {
	case ParamOscillatorType:
		return oscTypeFromValue(value).String()
	case ParamAttack, ParamDecay, ParamRelease:
		return fmt.Sprintf("%.2f s", envSeconds(value))
	case ParamSustain, ParamMasterGain:
		return fmt.Sprintf("%.0f%%", value*100)
	case ParamFilterType:
		return filterTypeFromValue(value).String()
	case ParamFilterCutoff:
		hz := 20.0 * math.Pow(1000.0, float64(value))
		if hz < 1000 {
			return fmt.Sprintf("%.0f Hz", hz)
		}
		return fmt.Sprintf("%.1f kHz", hz/1000)
	case ParamFilterResonance:
		return fmt.Sprintf("%.1f", value)
	case ParamFMCarrierRatio:
		return fmt.Sprintf("%.2fx", fmCarrierRatio(value))
	case ParamFMModulatorRatio:
		return fmt.Sprintf("%.2fx", fmModulatorRatio(value))
	case ParamFMModIndex:
		return fmt.Sprintf("%.1f", fmModIndex(value))
	case ParamWavetableHarmonics:
		return fmt.Sprintf("%d", wavetableHarmonicCount(value))
	}
	return ""
}

// atomicFloat32 is a single lock-free parameter cell. Loads and stores go
// through the float bit pattern, so a concurrent reader sees either the old
// or the new value, never a torn mix.
type atomicFloat32 struct {
	bits atomic.Uint32
}

func (a *atomicFloat32) Load() float32 {
	return math.Float32frombits(a.bits.Load())
}

func (a *atomicFloat32) Store(v float32) {
	a.bits.Store(math.Float32bits(v))
}

// Params is the shared parameter set: one independently readable/writable
// normalized cell per parameter. Written by the control path, read by the
// render path; no global lock anywhere.
type Params struct {
	values [NumParams]atomicFloat32
}

// NewParams creates a parameter set holding every default.
func NewParams() *Params {
	p := &Params{}
	for i := 0; i < NumParams; i++ {
		p.values[i].Store(Param(i).Default())
	}
	return p
}

// Get returns the current normalized value of the parameter.
func (p *Params) Get(param Param) float32 {
	if param < 0 || param >= numParams {
		return 0
	}
	return p.values[param].Load()
}

// Set stores a normalized value, clamped to [0,1].
func (p *Params) Set(param Param, value float32) {
	if param < 0 || param >= numParams {
		return
	}
	p.values[param].Store(clampf(value, 0, 1))
}

// CopyFrom copies every parameter value from src.
func (p *Params) CopyFrom(src *Params) {
	if src == nil {
		return
	}
	for i := 0; i < NumParams; i++ {
		p.values[i].Store(src.values[i].Load())
	}
}

// Control-curve mappings from normalized values to engine quantities.

func oscTypeFromValue(v float32) OscillatorType {
	switch {
	case v < 1.0/6:
		return OscSine
	case v < 2.0/6:
		return OscSquare
	case v < 3.0/6:
		return OscSaw
	case v < 4.0/6:
		return OscTriangle
	case v < 5.0/6:
		return OscWavetable
	default:
		return OscFM
	}
}

// oscTypeToValue returns the center of the value band that maps back to t.
func oscTypeToValue(t OscillatorType) float32 {
	return (float32(t) + 0.5) / 6
}

func filterTypeFromValue(v float32) FilterType {
	switch {
	case v < 1.0/3:
		return LowPass
	case v < 2.0/3:
		return HighPass
	default:
		return BandPass
	}
}

func filterTypeToValue(t FilterType) float32 {
	return (float32(t) + 0.5) / 3
}

// cutoffHz maps a normalized cutoff exponentially over 20 Hz..20 kHz.
// FastExp is accurate to well under a percent, which is far below the
// audible resolution of a cutoff control.
func cutoffHz(v float32) float32 {
	const ln1000 = 6.907755278982137
	return 20.0 * approx.FastExp(clampf(v, 0, 1)*ln1000)
}

func envSeconds(v float32) float32 {
	return v * envTimeScale
}

// fmCarrierRatio maps [0,1] linearly onto [0.5, 2.0].
func fmCarrierRatio(v float32) float32 {
	return 0.5 + v*1.5
}

// fmModulatorRatio maps [0,1] exponentially onto [0.5, 8.0].
func fmModulatorRatio(v float32) float32 {
	return 0.5 * float32(math.Pow(2, float64(4*v)))
}

func fmModIndex(v float32) float32 {
	return v * 10
}

// wavetableHarmonicCount maps [0,1] onto 1..32 harmonics.
func wavetableHarmonicCount(v float32) int {
	return int(math.Round(float64(1 + v*31)))
}

// Package preset serializes the engine parameter set to and from JSON. It
// is a pure collaborator: it only reads and writes normalized parameter
// values, never touching engine internals.
package preset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/algo-synth/synth"
)

// File is the JSON schema for synth presets. Every field is optional; a
// missing field leaves the parameter at its default.
type File struct {
	OscillatorType     *float32 `json:"oscillator_type,omitempty"`
	Attack             *float32 `json:"attack,omitempty"`
	Decay              *float32 `json:"decay,omitempty"`
	Sustain            *float32 `json:"sustain,omitempty"`
	Release            *float32 `json:"release,omitempty"`
	FilterType         *float32 `json:"filter_type,omitempty"`
	FilterCutoff       *float32 `json:"filter_cutoff,omitempty"`
	FilterResonance    *float32 `json:"filter_resonance,omitempty"`
	FMCarrierRatio     *float32 `json:"fm_carrier_ratio,omitempty"`
	FMModulatorRatio   *float32 `json:"fm_modulator_ratio,omitempty"`
	FMModIndex         *float32 `json:"fm_mod_index,omitempty"`
	WavetableHarmonics *float32 `json:"wavetable_harmonics,omitempty"`
	MasterGain         *float32 `json:"master_gain,omitempty"`
}

func (f *File) fields() map[synth.Param]*float32 {
	return map[synth.Param]*float32{
		synth.ParamOscillatorType:     f.OscillatorType,
		synth.ParamAttack:             f.Attack,
		synth.ParamDecay:              f.Decay,
		synth.ParamSustain:            f.Sustain,
		synth.ParamRelease:            f.Release,
		synth.ParamFilterType:         f.FilterType,
		synth.ParamFilterCutoff:       f.FilterCutoff,
		synth.ParamFilterResonance:    f.FilterResonance,
		synth.ParamFMCarrierRatio:     f.FMCarrierRatio,
		synth.ParamFMModulatorRatio:   f.FMModulatorRatio,
		synth.ParamFMModIndex:         f.FMModIndex,
		synth.ParamWavetableHarmonics: f.WavetableHarmonics,
		synth.ParamMasterGain:         f.MasterGain,
	}
}

// LoadJSON loads a preset file and applies it on top of default params.
func LoadJSON(path string) (*synth.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := synth.NewParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyFile applies a parsed preset onto an existing parameter set.
func ApplyFile(dst *synth.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}
	for param, value := range f.fields() {
		if value == nil {
			continue
		}
		if *value < 0 || *value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g", param.Key(), *value)
		}
		dst.Set(param, *value)
	}
	return nil
}

// Snapshot captures the current parameter values into a preset file
// structure.
func Snapshot(src *synth.Params) *File {
	f := &File{}
	capture := func(dst **float32, p synth.Param) {
		v := src.Get(p)
		*dst = &v
	}
	capture(&f.OscillatorType, synth.ParamOscillatorType)
	capture(&f.Attack, synth.ParamAttack)
	capture(&f.Decay, synth.ParamDecay)
	capture(&f.Sustain, synth.ParamSustain)
	capture(&f.Release, synth.ParamRelease)
	capture(&f.FilterType, synth.ParamFilterType)
	capture(&f.FilterCutoff, synth.ParamFilterCutoff)
	capture(&f.FilterResonance, synth.ParamFilterResonance)
	capture(&f.FMCarrierRatio, synth.ParamFMCarrierRatio)
	capture(&f.FMModulatorRatio, synth.ParamFMModulatorRatio)
	capture(&f.FMModIndex, synth.ParamFMModIndex)
	capture(&f.WavetableHarmonics, synth.ParamWavetableHarmonics)
	capture(&f.MasterGain, synth.ParamMasterGain)
	return f
}

// SaveJSON writes the current parameter values as an indented preset file.
func SaveJSON(path string, src *synth.Params) error {
	b, err := json.MarshalIndent(Snapshot(src), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

package synth

import "math"

// Voice binds one sounding (or idle) note to an oscillator/envelope pair.
// Voices are constructed once at engine startup and reused for every note;
// nothing here allocates after construction.
type Voice struct {
	sampleRate float32
	active     bool
	note       int
	velocity   float32
	pitchBend  float32 // normalized [-1,1]
	modulation float32 // normalized [0,1]

	oscillator *Oscillator
	envelope   *Envelope
}

// NewVoice creates an idle voice.
func NewVoice(sampleRate float32) *Voice {
	return &Voice{
		sampleRate: sampleRate,
		oscillator: NewOscillator(sampleRate),
		envelope:   NewEnvelope(sampleRate),
	}
}

// Start binds the voice to a note and triggers its envelope. The stored
// pitch-bend offset is applied immediately so a bent wheel affects notes
// started while it is held.
func (v *Voice) Start(note int, velocity float32) {
	v.active = true
	v.note = note
	v.velocity = clampf(velocity, 0, 1)
	v.applyFrequency()
	v.envelope.Trigger()
}

// Stop releases the envelope; the voice self-deactivates once the release
// tail reaches idle.
func (v *Voice) Stop() {
	v.envelope.Release()
}

// IsActive reports whether the voice still contributes to the mix.
func (v *Voice) IsActive() bool {
	return v.active && !v.envelope.IsIdle()
}

// Note returns the bound MIDI note number.
func (v *Voice) Note() int {
	return v.note
}

// SetPitchBend stores a normalized bend in [-1,1] and, for a sounding
// voice, recomputes the oscillator frequency immediately.
func (v *Voice) SetPitchBend(bend float32) {
	v.pitchBend = clampf(bend, -1, 1)
	if v.active {
		v.applyFrequency()
	}
}

// SetModulation stores the modulation wheel depth in [0,1].
func (v *Voice) SetModulation(depth float32) {
	v.modulation = clampf(depth, 0, 1)
}

// SetSampleRate propagates a sample-rate change to the owned components.
func (v *Voice) SetSampleRate(sampleRate float32) {
	v.sampleRate = sampleRate
	v.oscillator.SetSampleRate(sampleRate)
	v.envelope.SetSampleRate(sampleRate)
}

func (v *Voice) applyFrequency() {
	v.oscillator.SetFrequency(midiNoteToFreq(v.note) * pitchBendRatio(v.pitchBend))
}

// NextSample renders one sample of this voice: oscillator through envelope,
// scaled by velocity. Oscillator and envelope settings are pulled from the
// shared parameter set so control-path writes are picked up sample by
// sample. globalTime drives the vibrato LFO.
func (v *Voice) NextSample(params *Params, globalTime float32) float32 {
	if !v.IsActive() {
		v.active = false
		return 0
	}

	v.oscillator.SetType(oscTypeFromValue(params.Get(ParamOscillatorType)))
	v.oscillator.SetWavetableHarmonics(wavetableHarmonicCount(params.Get(ParamWavetableHarmonics)))
	v.oscillator.SetFMParams(
		fmCarrierRatio(params.Get(ParamFMCarrierRatio)),
		fmModulatorRatio(params.Get(ParamFMModulatorRatio)),
		fmModIndex(params.Get(ParamFMModIndex)),
	)

	var sample float32
	if v.modulation > 0 {
		// Vibrato: scale the frequency for exactly one sample, then put the
		// base frequency back so repeated modulation never drifts it.
		base := v.oscillator.Frequency()
		lfo := float32(math.Sin(2 * math.Pi * vibratoRateHz * float64(globalTime)))
		v.oscillator.SetFrequency(base * (1 + v.modulation*vibratoDepthScale*lfo))
		sample = v.oscillator.NextSample()
		v.oscillator.SetFrequency(base)
	} else {
		sample = v.oscillator.NextSample()
	}

	v.envelope.SetAttack(envSeconds(params.Get(ParamAttack)))
	v.envelope.SetDecay(envSeconds(params.Get(ParamDecay)))
	v.envelope.SetSustain(params.Get(ParamSustain))
	v.envelope.SetRelease(envSeconds(params.Get(ParamRelease)))

	return sample * v.envelope.NextValue() * v.velocity
}

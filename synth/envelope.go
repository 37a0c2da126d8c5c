package synth

// EnvelopeState is the current ADSR stage.
type EnvelopeState int

const (
	EnvIdle EnvelopeState = iota
	EnvAttack
	EnvDecay
	EnvSustain
	EnvRelease
)

func (s EnvelopeState) String() string {
	switch s {
	case EnvIdle:
		return "Idle"
	case EnvAttack:
		return "Attack"
	case EnvDecay:
		return "Decay"
	case EnvSustain:
		return "Sustain"
	case EnvRelease:
		return "Release"
	default:
		return "Unknown"
	}
}

// minEnvelopeSeconds keeps the per-sample rate derivations away from a
// division by zero.
const minEnvelopeSeconds = 0.001

// Envelope is a linear-segment ADSR generator producing one gain value in
// [0,1] per NextValue call.
type Envelope struct {
	sampleRate float32
	state      EnvelopeState
	value      float32

	attack  float32 // seconds
	decay   float32
	sustain float32 // level
	release float32

	attackRate  float32 // value change per sample
	decayRate   float32
	releaseRate float32

	// Level at the moment Release was called. The release rate is derived
	// from the sustain level, not from this, so release duration stays
	// constant regardless of where the release started. Kept for callers
	// that want to inspect the release start point.
	releaseLevel float32
}

// NewEnvelope creates an envelope with 10 ms attack, 100 ms decay, 0.7
// sustain, and 300 ms release.
func NewEnvelope(sampleRate float32) *Envelope {
	e := &Envelope{
		sampleRate: sampleRate,
		state:      EnvIdle,
		attack:     0.01,
		decay:      0.1,
		sustain:    0.7,
		release:    0.3,
	}
	e.recalculateRates()
	return e
}

// SetSampleRate re-derives the per-sample rates for a new sample rate.
func (e *Envelope) SetSampleRate(sampleRate float32) {
	e.sampleRate = sampleRate
	e.recalculateRates()
}

// SetAttack sets the attack time in seconds (minimum 1 ms).
func (e *Envelope) SetAttack(seconds float32) {
	e.attack = maxf(seconds, minEnvelopeSeconds)
	e.recalculateRates()
}

// SetDecay sets the decay time in seconds (minimum 1 ms).
func (e *Envelope) SetDecay(seconds float32) {
	e.decay = maxf(seconds, minEnvelopeSeconds)
	e.recalculateRates()
}

// SetSustain sets the sustain level in [0,1].
func (e *Envelope) SetSustain(level float32) {
	e.sustain = clampf(level, 0, 1)
	e.recalculateRates()
}

// SetRelease sets the release time in seconds (minimum 1 ms).
func (e *Envelope) SetRelease(seconds float32) {
	e.release = maxf(seconds, minEnvelopeSeconds)
	e.recalculateRates()
}

func (e *Envelope) recalculateRates() {
	e.attackRate = 1.0 / (e.attack * e.sampleRate)
	e.decayRate = (1.0 - e.sustain) / (e.decay * e.sampleRate)
	e.releaseRate = e.sustain / (e.release * e.sampleRate)
}

// Trigger starts (or retriggers) the attack stage. The value is left
// unchanged so a retrigger climbs from the current level instead of
// snapping to zero, which would click.
func (e *Envelope) Trigger() {
	e.state = EnvAttack
}

// Release moves any non-idle stage into the release stage.
func (e *Envelope) Release() {
	if e.state != EnvIdle {
		e.releaseLevel = e.value
		e.state = EnvRelease
	}
}

// IsIdle reports whether the envelope has fully decayed.
func (e *Envelope) IsIdle() bool {
	return e.state == EnvIdle
}

// State returns the current stage.
func (e *Envelope) State() EnvelopeState {
	return e.state
}

// Value returns the current level without advancing the envelope.
func (e *Envelope) Value() float32 {
	return e.value
}

// NextValue advances the envelope by one sample and returns the new level.
func (e *Envelope) NextValue() float32 {
	switch e.state {
	case EnvIdle:
		e.value = 0

	case EnvAttack:
		e.value += e.attackRate
		if e.value >= 1.0 {
			e.value = 1.0
			e.state = EnvDecay
		}

	case EnvDecay:
		e.value -= e.decayRate
		if e.value <= e.sustain {
			e.value = e.sustain
			e.state = EnvSustain
		}

	case EnvSustain:
		e.value = e.sustain

	case EnvRelease:
		e.value -= e.releaseRate
		if e.value <= 0 {
			e.value = 0
			e.state = EnvIdle
		}
	}
	return e.value
}

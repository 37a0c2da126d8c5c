package synth

import (
	"math"
	"testing"
)

func TestMidiNoteToFreq(t *testing.T) {
	tests := []struct {
		note      int
		want      float32
		tolerance float32
	}{
		{69, 440.0, 0.001},
		{81, 880.0, 0.01},
		{57, 220.0, 0.01},
		{60, 261.626, 0.01},
	}
	for _, tt := range tests {
		if got := midiNoteToFreq(tt.note); absf(got-tt.want) > tt.tolerance {
			t.Errorf("note %d = %.3f Hz, want %.3f", tt.note, got, tt.want)
		}
	}
}

func TestPitchBendRatio(t *testing.T) {
	// Full-scale bend is two semitones either way.
	up := float64(pitchBendRatio(1))
	down := float64(pitchBendRatio(-1))
	semitone2 := math.Pow(2, 2.0/12.0)
	if math.Abs(up-semitone2) > 1e-5 {
		t.Errorf("bend +1 ratio = %f, want %f", up, semitone2)
	}
	if math.Abs(down-1/semitone2) > 1e-5 {
		t.Errorf("bend -1 ratio = %f, want %f", down, 1/semitone2)
	}
	if got := pitchBendRatio(0); got != 1.0 {
		t.Errorf("bend 0 ratio = %f, want 1", got)
	}
}

func TestVoiceLifecycle(t *testing.T) {
	const sampleRate = 44100
	params := NewParams()
	v := NewVoice(sampleRate)

	if v.IsActive() {
		t.Fatal("new voice should be inactive")
	}

	v.Start(69, 0.8)
	if !v.IsActive() {
		t.Fatal("voice inactive after Start")
	}
	if v.Note() != 69 {
		t.Errorf("note = %d, want 69", v.Note())
	}
	if got := v.oscillator.Frequency(); absf(got-440) > 0.01 {
		t.Errorf("frequency = %f, want 440", got)
	}

	// Run past the attack, then release.
	for i := 0; i < sampleRate/10; i++ {
		v.NextSample(params, 0)
	}
	v.Stop()

	// The release tail eventually self-deactivates the voice.
	for i := 0; i < sampleRate && v.IsActive(); i++ {
		v.NextSample(params, 0)
	}
	if v.IsActive() {
		t.Error("voice never self-deactivated after Stop")
	}
	if got := v.NextSample(params, 0); got != 0 {
		t.Errorf("inactive voice output = %f, want 0", got)
	}
}

func TestVoicePitchBendAppliesImmediately(t *testing.T) {
	v := NewVoice(44100)
	v.Start(69, 1.0)

	v.SetPitchBend(1.0)
	want := 440 * float32(math.Pow(2, 2.0/12.0))
	if got := v.oscillator.Frequency(); absf(got-want) > 0.05 {
		t.Errorf("bent frequency = %f, want %f", got, want)
	}

	v.SetPitchBend(0)
	if got := v.oscillator.Frequency(); absf(got-440) > 0.01 {
		t.Errorf("recentred frequency = %f, want 440", got)
	}
}

func TestVoiceBendHeldBeforeStart(t *testing.T) {
	v := NewVoice(44100)
	v.SetPitchBend(1.0)
	v.Start(69, 1.0)

	want := 440 * float32(math.Pow(2, 2.0/12.0))
	if got := v.oscillator.Frequency(); absf(got-want) > 0.05 {
		t.Errorf("note started under bend = %f Hz, want %f", got, want)
	}
}

// TestVoiceVibratoDoesNotDriftFrequency renders with the modulation wheel
// engaged; the stored base frequency must be identical afterwards.
func TestVoiceVibratoDoesNotDriftFrequency(t *testing.T) {
	const sampleRate = 44100
	params := NewParams()
	v := NewVoice(sampleRate)
	v.Start(69, 1.0)
	v.SetModulation(1.0)

	base := v.oscillator.Frequency()
	gt := float32(0)
	for i := 0; i < sampleRate; i++ {
		gt += 1.0 / sampleRate
		v.NextSample(params, gt)
	}
	if got := v.oscillator.Frequency(); got != base {
		t.Errorf("frequency drifted from %f to %f under vibrato", base, got)
	}
}

func TestVoiceVelocityScalesOutput(t *testing.T) {
	const sampleRate = 44100
	params := NewParams()
	params.Set(ParamSustain, 1.0)

	peakAt := func(velocity float32) float32 {
		v := NewVoice(sampleRate)
		v.Start(69, velocity)
		var peak float32
		for i := 0; i < sampleRate/5; i++ {
			if a := absf(v.NextSample(params, 0)); a > peak {
				peak = a
			}
		}
		return peak
	}

	full := peakAt(1.0)
	half := peakAt(0.5)
	if math.Abs(float64(half/full)-0.5) > 0.02 {
		t.Errorf("velocity scaling off: full=%f half=%f", full, half)
	}
}

package synth

import (
	"math"
	"testing"
)

func TestMidiNoteOnOff(t *testing.T) {
	e := NewEngine(44100, nil)

	e.HandleMessage([3]byte{0x90, 60, 100})
	if got := e.ActiveVoices(); got != 1 {
		t.Fatalf("active voices after Note On = %d, want 1", got)
	}

	e.HandleMessage([3]byte{0x80, 60, 0})
	if _, ok := e.noteToVoice[60]; ok {
		t.Error("Note Off left the note mapped")
	}
}

func TestMidiNoteOnVelocityZeroIsNoteOff(t *testing.T) {
	e := NewEngine(44100, nil)
	e.HandleMessage([3]byte{0x90, 60, 100})
	e.HandleMessage([3]byte{0x90, 60, 0})
	if _, ok := e.noteToVoice[60]; ok {
		t.Error("zero-velocity Note On did not release the note")
	}
}

func TestMidiVelocityScaling(t *testing.T) {
	e := NewEngine(44100, nil)
	e.HandleMessage([3]byte{0x90, 60, 127})
	idx := e.noteToVoice[60]
	if got := e.voices[idx].velocity; got != 1.0 {
		t.Errorf("velocity 127 = %f, want 1.0", got)
	}

	e2 := NewEngine(44100, nil)
	e2.HandleMessage([3]byte{0x90, 60, 64})
	idx = e2.noteToVoice[60]
	want := float32(64) / 127
	if got := e2.voices[idx].velocity; absf(got-want) > 1e-6 {
		t.Errorf("velocity 64 = %f, want %f", got, want)
	}
}

func TestMidiModWheelBroadcast(t *testing.T) {
	e := NewEngine(44100, nil)
	e.HandleMessage([3]byte{0x90, 60, 100})
	e.HandleMessage([3]byte{0x90, 64, 100})

	e.HandleMessage([3]byte{0xB0, 1, 127})
	for note, idx := range e.noteToVoice {
		if got := e.voices[idx].modulation; got != 1.0 {
			t.Errorf("note %d modulation = %f, want 1.0", note, got)
		}
	}
}

func TestMidiUnrelatedCCIgnored(t *testing.T) {
	e := NewEngine(44100, nil)
	e.HandleMessage([3]byte{0x90, 60, 100})
	e.HandleMessage([3]byte{0xB0, 7, 127}) // channel volume, unhandled
	idx := e.noteToVoice[60]
	if got := e.voices[idx].modulation; got != 0 {
		t.Errorf("unrelated CC changed modulation to %f", got)
	}
}

func TestMidiPitchBendDecoding(t *testing.T) {
	tests := []struct {
		name     string
		lsb, msb byte
		want     float32
	}{
		{"centre", 0x00, 0x40, 0.0},
		{"max up", 0x7F, 0x7F, 1.0},
		{"max down", 0x00, 0x00, -1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(44100, nil)
			e.HandleMessage([3]byte{0x90, 69, 100})
			e.HandleMessage([3]byte{0xE0, tt.lsb, tt.msb})

			idx := e.noteToVoice[69]
			got := e.voices[idx].pitchBend
			if math.Abs(float64(got-tt.want)) > 0.001 {
				t.Errorf("bend = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMidiPitchBendRetunesSoundingNote(t *testing.T) {
	e := NewEngine(44100, nil)
	e.HandleMessage([3]byte{0x90, 69, 100})
	e.HandleMessage([3]byte{0xE0, 0x7F, 0x7F})

	idx := e.noteToVoice[69]
	want := 440 * float32(math.Pow(2, 2.0/12.0))
	if got := e.voices[idx].oscillator.Frequency(); absf(got-want) > 0.1 {
		t.Errorf("bent frequency = %f, want ~%f", got, want)
	}
}

func TestMidiStatusChannelMasked(t *testing.T) {
	e := NewEngine(44100, nil)
	// Note On on channel 5 is still a Note On.
	e.HandleMessage([3]byte{0x95, 60, 100})
	if got := e.ActiveVoices(); got != 1 {
		t.Errorf("active voices = %d, want 1", got)
	}
}

func TestMidiUnknownStatusIgnored(t *testing.T) {
	e := NewEngine(44100, nil)
	e.HandleMessage([3]byte{0xA0, 60, 100}) // polyphonic aftertouch, unhandled
	e.HandleMessage([3]byte{0xF0, 0, 0})
	if got := e.ActiveVoices(); got != 0 {
		t.Errorf("active voices = %d, want 0", got)
	}
}

func TestProcessEventsAppliesInOrder(t *testing.T) {
	e := NewEngine(44100, nil)
	e.ProcessEvents([][3]byte{
		{0x90, 60, 100},
		{0x90, 64, 100},
		{0x80, 60, 0},
	})
	if _, ok := e.noteToVoice[60]; ok {
		t.Error("note 60 should have been released")
	}
	if _, ok := e.noteToVoice[64]; !ok {
		t.Error("note 64 should still be mapped")
	}
}

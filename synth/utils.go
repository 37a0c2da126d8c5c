package synth

import "math"

// midiNoteToFreq converts a MIDI note number to frequency in Hz
// (A4 = note 69 = 440 Hz).
func midiNoteToFreq(note int) float32 {
	const a4Freq = 440.0
	const a4Note = 69
	return float32(a4Freq * math.Pow(2, float64(note-a4Note)/12.0))
}

// pitchBendRange is the bend span in semitones for a full-scale bend.
const pitchBendRange = 2.0

// pitchBendRatio converts a normalized bend in [-1,1] to a frequency ratio.
func pitchBendRatio(bend float32) float32 {
	return float32(math.Pow(2, float64(bend)*pitchBendRange/12.0))
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

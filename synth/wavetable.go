package synth

import "math"

// Wavetable is a fixed-length single-cycle table with interpolated lookup.
type Wavetable struct {
	table []float32
}

// NewWavetable creates a table of the given size filled with one sine cycle.
func NewWavetable(size int) *Wavetable {
	if size < 2 {
		size = 2
	}
	w := &Wavetable{table: make([]float32, size)}
	for i := range w.table {
		phase := float64(i) / float64(size)
		w.table[i] = float32(math.Sin(2 * math.Pi * phase))
	}
	return w
}

// Size returns the table length in samples.
func (w *Wavetable) Size() int {
	return len(w.table)
}

// Sample returns the linearly interpolated table value at phase in [0,1).
func (w *Wavetable) Sample(phase float32) float32 {
	phase -= float32(math.Floor(float64(phase)))
	pos := phase * float32(len(w.table))
	i := int(pos) % len(w.table)
	frac := pos - float32(int(pos))
	s1 := w.table[i]
	s2 := w.table[(i+1)%len(w.table)]
	return s1 + frac*(s2-s1)
}

// GenerateHarmonics fills the table with a stack of n sine harmonics at 1/n
// amplitude roll-off and normalizes the result so the peak magnitude is 1.0.
// This is the non-trivial work confined to oscillator type transitions.
func (w *Wavetable) GenerateHarmonics(n int) {
	if n < 1 {
		n = 1
	}
	for i := range w.table {
		w.table[i] = 0
	}
	size := float64(len(w.table))
	for h := 1; h <= n; h++ {
		amp := 1.0 / float64(h)
		for i := range w.table {
			phase := float64(i) / size * float64(h)
			w.table[i] += float32(amp * math.Sin(2*math.Pi*phase))
		}
	}

	var peak float32
	for _, s := range w.table {
		if a := absf(s); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		inv := 1.0 / peak
		for i := range w.table {
			w.table[i] *= inv
		}
	}
}

package synth

import (
	"math"
	"testing"
)

var filterForms = []struct {
	name string
	form FilterForm
}{
	{"StateVariable", FormStateVariable},
	{"Biquad", FormBiquad},
}

// TestFilterLowPassPassesDC feeds a constant signal; a low-pass must settle
// near unity gain regardless of topology.
func TestFilterLowPassPassesDC(t *testing.T) {
	for _, ff := range filterForms {
		t.Run(ff.name, func(t *testing.T) {
			f := NewFilter(44100)
			f.SetForm(ff.form)
			f.SetType(LowPass)
			f.SetCutoff(1000)
			f.SetResonance(0.5)

			var out float32
			for i := 0; i < 44100; i++ {
				out = f.Process(1.0)
			}
			if math.Abs(float64(out)-1.0) > 0.01 {
				t.Errorf("DC gain = %f, want ~1.0", out)
			}
		})
	}
}

func TestFilterHighPassBlocksDC(t *testing.T) {
	for _, ff := range filterForms {
		t.Run(ff.name, func(t *testing.T) {
			f := NewFilter(44100)
			f.SetForm(ff.form)
			f.SetType(HighPass)
			f.SetCutoff(1000)
			f.SetResonance(0.5)

			var out float32
			for i := 0; i < 44100; i++ {
				out = f.Process(1.0)
			}
			if math.Abs(float64(out)) > 0.01 {
				t.Errorf("high-pass DC leak = %f, want ~0", out)
			}
		})
	}
}

func TestFilterBandPassBlocksDC(t *testing.T) {
	for _, ff := range filterForms {
		t.Run(ff.name, func(t *testing.T) {
			f := NewFilter(44100)
			f.SetForm(ff.form)
			f.SetType(BandPass)
			f.SetCutoff(1000)
			f.SetResonance(0.5)

			var out float32
			for i := 0; i < 44100; i++ {
				out = f.Process(1.0)
			}
			if math.Abs(float64(out)) > 0.01 {
				t.Errorf("band-pass DC leak = %f, want ~0", out)
			}
		})
	}
}

// TestFilterImpulseBounded drives an impulse at maximum resonance and high
// cutoff. The response must ring but never diverge.
func TestFilterImpulseBounded(t *testing.T) {
	for _, ff := range filterForms {
		for _, ft := range []FilterType{LowPass, HighPass, BandPass} {
			t.Run(ff.name+"/"+ft.String(), func(t *testing.T) {
				f := NewFilter(44100)
				f.SetForm(ff.form)
				f.SetType(ft)
				f.SetCutoff(18000)
				f.SetResonance(maxResonance)

				out := f.Process(1.0)
				peak := absf(out)
				for i := 0; i < 10000; i++ {
					out = f.Process(0)
					if a := absf(out); a > peak {
						peak = a
					}
					if math.IsNaN(float64(out)) || math.IsInf(float64(out), 0) {
						t.Fatalf("impulse response blew up at sample %d", i)
					}
				}
				if peak > 100 {
					t.Errorf("impulse response peaked at %f", peak)
				}
			})
		}
	}
}

// TestFilterLowPassAttenuatesAboveCutoff compares sine amplitudes well
// below and well above the cutoff.
func TestFilterLowPassAttenuatesAboveCutoff(t *testing.T) {
	const sampleRate = 44100
	for _, ff := range filterForms {
		t.Run(ff.name, func(t *testing.T) {
			low := sineResponse(t, ff.form, LowPass, 500, 100, sampleRate)
			high := sineResponse(t, ff.form, LowPass, 500, 8000, sampleRate)
			if high > low*0.2 {
				t.Errorf("poor attenuation: pass=%.3f stop=%.3f", low, high)
			}
		})
	}
}

func TestFilterCutoffClamped(t *testing.T) {
	f := NewFilter(44100)
	f.SetCutoff(5)
	if f.cutoff != minCutoffHz {
		t.Errorf("cutoff = %f, want clamp to %f", f.cutoff, float32(minCutoffHz))
	}
	f.SetCutoff(1e6)
	if f.cutoff != maxCutoffHz {
		t.Errorf("cutoff = %f, want clamp to %f", f.cutoff, float32(maxCutoffHz))
	}
	f.SetResonance(2)
	if f.resonance != maxResonance {
		t.Errorf("resonance = %f, want clamp to %f", f.resonance, float32(maxResonance))
	}
}

func TestFilterResetClearsState(t *testing.T) {
	for _, ff := range filterForms {
		t.Run(ff.name, func(t *testing.T) {
			f := NewFilter(44100)
			f.SetForm(ff.form)
			for i := 0; i < 100; i++ {
				f.Process(1.0)
			}
			f.Reset()
			if out := f.Process(0); out != 0 {
				t.Errorf("output after reset = %f, want 0", out)
			}
		})
	}
}

// sineResponse returns the steady-state peak amplitude of a sine pushed
// through a freshly configured filter.
func sineResponse(t *testing.T, form FilterForm, ft FilterType, cutoff, freq float32, sampleRate int) float32 {
	t.Helper()
	f := NewFilter(float32(sampleRate))
	f.SetForm(form)
	f.SetType(ft)
	f.SetCutoff(cutoff)
	f.SetResonance(0.2)

	n := sampleRate / 2
	var peak float32
	for i := 0; i < n; i++ {
		in := float32(math.Sin(2 * math.Pi * float64(freq) * float64(i) / float64(sampleRate)))
		out := f.Process(in)
		// Skip the transient before measuring.
		if i > n/2 {
			if a := absf(out); a > peak {
				peak = a
			}
		}
	}
	return peak
}

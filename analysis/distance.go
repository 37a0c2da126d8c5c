// Package analysis measures how closely a rendered note matches a
// reference recording. The combined score drives the parameter-fitting
// tool; the individual metrics are reported for diagnosis.
package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

const (
	envelopeWindow = 512
	fftSize        = 4096
)

// Metrics contains distance measurements between two mono signals.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`

	EnvelopeRMSE   float64 `json:"envelope_rmse"`
	SpectralRMSEDB float64 `json:"spectral_rmse_db"`
	PitchErrorHz   float64 `json:"pitch_error_hz"`

	Score float64 `json:"score"`
}

// Compare returns distance metrics and a combined score; zero is a perfect
// match, larger is worse. Degenerate input scores 1.0.
func Compare(reference, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
	}
	if sampleRate <= 0 || len(reference) == 0 || len(candidate) == 0 {
		m.Score = 1.0
		return m
	}

	ref := normalizePeak(reference)
	cand := normalizePeak(candidate)

	m.EnvelopeRMSE = envelopeRMSE(rmsEnvelope(ref, envelopeWindow), rmsEnvelope(cand, envelopeWindow))

	refSpec := averageSpectrum(ref)
	candSpec := averageSpectrum(cand)
	if refSpec != nil && candSpec != nil {
		m.SpectralRMSEDB = spectralRMSEDB(refSpec, candSpec)
		m.PitchErrorHz = math.Abs(peakBinHz(refSpec, sampleRate) - peakBinHz(candSpec, sampleRate))
	}

	// Envelope mismatch saturates around 0.5 RMSE, spectral mismatch around
	// 30 dB, pitch error around a semitone at A4.
	envNorm := clamp01(m.EnvelopeRMSE / 0.5)
	specNorm := clamp01(m.SpectralRMSEDB / 30.0)
	pitchNorm := clamp01(m.PitchErrorHz / 26.0)
	m.Score = 0.5*envNorm + 0.3*specNorm + 0.2*pitchNorm
	return m
}

func normalizePeak(x []float64) []float64 {
	var peak float64
	for _, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return x
	}
	out := make([]float64, len(x))
	inv := 1.0 / peak
	for i, v := range x {
		out[i] = v * inv
	}
	return out
}

// rmsEnvelope reduces a signal to per-window RMS values.
func rmsEnvelope(x []float64, window int) []float64 {
	n := len(x) / window
	env := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for _, s := range x[i*window : (i+1)*window] {
			sum += s * s
		}
		env[i] = math.Sqrt(sum / float64(window))
	}
	return env
}

// envelopeRMSE compares two envelopes over the longer of the two; the
// shorter one counts as silent past its end, so a render that dies early
// or rings too long both pay for it.
func envelopeRMSE(ref, cand []float64) float64 {
	n := len(ref)
	if len(cand) > n {
		n = len(cand)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		var r, c float64
		if i < len(ref) {
			r = ref[i]
		}
		if i < len(cand) {
			c = cand[i]
		}
		d := r - c
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// averageSpectrum returns the magnitude spectrum averaged over Hann-windowed
// frames, or nil when the signal is shorter than one frame.
func averageSpectrum(x []float64) []float64 {
	if len(x) < fftSize {
		return nil
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil
	}

	hann := make([]float64, fftSize)
	for i := range hann {
		hann[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	nBins := fftSize/2 + 1
	spec := make([]complex128, nBins)
	buf := make([]float64, fftSize)
	avg := make([]float64, nBins)

	hop := fftSize / 2
	frames := 0
	for pos := 0; pos+fftSize <= len(x); pos += hop {
		for i := 0; i < fftSize; i++ {
			buf[i] = x[pos+i] * hann[i]
		}
		plan.Forward(spec, buf)
		for k := range avg {
			avg[k] += cmplx.Abs(spec[k])
		}
		frames++
	}
	if frames == 0 {
		return nil
	}
	for k := range avg {
		avg[k] /= float64(frames)
	}
	return avg
}

func spectralRMSEDB(a, b []float64) float64 {
	const floor = 1e-9
	var sum float64
	n := 0
	for k := 1; k < len(a) && k < len(b); k++ {
		da := 20 * math.Log10(math.Max(a[k], floor))
		db := 20 * math.Log10(math.Max(b[k], floor))
		d := da - db
		sum += d * d
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

// peakBinHz returns the frequency of the strongest non-DC bin.
func peakBinHz(spec []float64, sampleRate int) float64 {
	best := 1
	for k := 2; k < len(spec); k++ {
		if spec[k] > spec[best] {
			best = k
		}
	}
	return float64(best) * float64(sampleRate) / float64(fftSize)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

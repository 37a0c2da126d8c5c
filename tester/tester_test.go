package tester

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-synth/internal/wavio"
	"github.com/cwbudde/algo-synth/synth"
)

func TestRenderProducesAudio(t *testing.T) {
	tst := New(44100)
	tst.PlayNote(69, 0.8)
	out := tst.Render(0.5)

	if len(out) != 22050 {
		t.Fatalf("rendered %d samples, want 22050", len(out))
	}
	if rms := wavio.RMS(out); rms < 0.01 {
		t.Errorf("output nearly silent: RMS %f", rms)
	}
}

func TestRenderSilentWithoutNotes(t *testing.T) {
	tst := New(44100)
	for i, s := range tst.Render(0.25) {
		if s != 0 {
			t.Fatalf("silent render produced %f at sample %d", s, i)
		}
	}
}

func TestMidiAppliedAtBlockBoundary(t *testing.T) {
	tst := New(44100)
	tst.PlayNote(60, 0.8)
	if tst.Engine().ActiveVoices() != 0 {
		t.Fatal("note applied before any block was rendered")
	}
	tst.RenderBlock(64)
	if tst.Engine().ActiveVoices() != 1 {
		t.Fatal("note not applied at block boundary")
	}
}

func TestStopNoteReleasesLastNote(t *testing.T) {
	tst := New(44100)
	tst.PlayNote(72, 0.9)
	tst.RenderBlock(64)
	tst.StopNote()
	tst.RenderBlock(64)

	// Default release is 300 ms; the voice must die within a second.
	out := tst.RenderUntilSilent(1.0)
	if tst.Engine().ActiveVoices() != 0 {
		t.Error("voice still active after release tail")
	}
	if len(out) == 0 {
		t.Error("release tail rendered no samples")
	}
}

func TestOscillatorAndFilterSelection(t *testing.T) {
	tst := New(44100)
	tst.SetOscillatorType(synth.OscSaw)
	tst.SetFilterType(synth.HighPass)
	tst.SetFilterCutoff(0.3)
	tst.SetFilterResonance(0.5)

	tst.PlayNote(60, 0.8)
	out := tst.Render(0.25)
	if rms := wavio.RMS(out); rms == 0 {
		t.Error("configured render is silent")
	}
}

func TestRecordingCapturesRender(t *testing.T) {
	tst := New(44100)
	tst.StartRecording()
	tst.PlayNote(69, 0.8)
	tst.Render(0.3)
	recorded := tst.StopRecording()

	if len(recorded) != 13230 {
		t.Fatalf("recorded %d samples, want 13230", len(recorded))
	}
	if rms := wavio.RMS(recorded); rms < 0.01 {
		t.Errorf("recording nearly silent: RMS %f", rms)
	}
}

// TestRecordingRoundTrip saves a take and reads it back: same sample count,
// same sample rate, and amplitudes preserved by the float export.
func TestRecordingRoundTrip(t *testing.T) {
	tst := New(44100)
	tst.StartRecording()
	tst.PlayNote(69, 0.8)
	tst.Render(0.1)
	recorded := tst.StopRecording()
	if rms := wavio.RMS(recorded); rms < 0.01 {
		t.Fatalf("take nearly silent: RMS %f", rms)
	}

	path := filepath.Join(t.TempDir(), "take.wav")
	if err := tst.SaveRecordingToFile(path); err != nil {
		t.Fatalf("save recording: %v", err)
	}

	samples, sr, err := wavio.ReadMono(path)
	if err != nil {
		t.Fatalf("read recording: %v", err)
	}
	if sr != 44100 {
		t.Errorf("sample rate = %d, want 44100", sr)
	}
	if len(samples) != len(recorded) {
		t.Fatalf("file holds %d samples, want %d", len(samples), len(recorded))
	}
	for i := range samples {
		if math.Abs(samples[i]-float64(recorded[i])) > 1e-4 {
			t.Fatalf("sample %d: read %f, recorded %f", i, samples[i], recorded[i])
		}
	}
}

func TestRecordingRestartsClean(t *testing.T) {
	tst := New(44100)
	tst.StartRecording()
	tst.PlayNote(60, 0.8)
	tst.Render(0.1)
	first := tst.StopRecording()
	if len(first) == 0 {
		t.Fatal("first take empty")
	}

	tst.StartRecording()
	tst.Render(0.05)
	second := tst.StopRecording()
	if len(second) != 2205 {
		t.Errorf("second take holds %d samples, want 2205", len(second))
	}
}

func TestLargeBlockGrowsBuffers(t *testing.T) {
	tst := New(44100)
	tst.PlayNote(60, 0.8)
	out := tst.RenderBlock(4096)
	if len(out) != 4096 {
		t.Fatalf("rendered %d samples, want 4096", len(out))
	}
	var nonZero bool
	for _, s := range out {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("large block rendered silence for an active note")
	}
}

func TestPlayNoteVelocityMapping(t *testing.T) {
	// Full velocity must not overflow the 7-bit field and zero must still
	// trigger (the harness always sends a nonzero on-velocity).
	tst := New(44100)
	tst.PlayNote(60, 1.0)
	tst.RenderBlock(32)
	if tst.Engine().ActiveVoices() != 1 {
		t.Error("full-velocity note did not start")
	}

	tst2 := New(44100)
	tst2.PlayNote(60, 0.0)
	tst2.RenderBlock(32)
	if tst2.Engine().ActiveVoices() != 1 {
		t.Error("zero-velocity PlayNote should still start a quiet note")
	}
}

func TestRenderUntilSilentStopsAtDeadline(t *testing.T) {
	tst := New(44100)
	// Long release: the deadline, not silence, ends the render.
	tst.Params().Set(synth.ParamRelease, 1.0) // 5 s release
	tst.PlayNote(60, 0.8)
	tst.Render(0.1)
	tst.StopNote()

	out := tst.RenderUntilSilent(0.2)
	maxFrames := int(0.2*44100) + 128
	if len(out) > maxFrames {
		t.Errorf("rendered %d frames past the %d-frame deadline", len(out), maxFrames)
	}
	if math.IsNaN(float64(wavio.RMS(out))) {
		t.Error("tail contains NaN")
	}
}

package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-synth/preset"
	"github.com/cwbudde/algo-synth/tester"
	"github.com/ebitengine/oto/v3"
)

const playBlockFrames = 128

func main() {
	notesFlag := flag.String("notes", "60,64,67", "Comma-separated MIDI notes to play as a chord")
	velocity := flag.Float64("velocity", 0.8, "Note velocity (0-1)")
	duration := flag.Float64("duration", 1.5, "Held-note duration in seconds")
	tail := flag.Float64("tail", 5.0, "Maximum release tail in seconds")
	sampleRate := flag.Int("sample-rate", 44100, "Playback sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	flag.Parse()

	notes, err := parseNotes(*notesFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	t := tester.New(*sampleRate)
	if *presetPath != "" {
		params, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		t.Params().CopyFrom(params)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audio device: %v\n", err)
		os.Exit(1)
	}
	<-ready

	src := &streamReader{
		tester:        t,
		notes:         notes,
		velocity:      float32(*velocity),
		releaseFrame:  int(float64(*sampleRate) * (*duration)),
		maxTailFrames: int(float64(*sampleRate) * (*tail)),
	}

	fmt.Printf("Playing notes %v for %.2f seconds at %d Hz...\n", notes, *duration, *sampleRate)

	player := ctx.NewPlayer(src)
	player.Play()
	for !src.done.Load() {
		time.Sleep(20 * time.Millisecond)
	}
	// Let the device buffer drain before closing.
	time.Sleep(100 * time.Millisecond)
	if err := player.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing player: %v\n", err)
		os.Exit(1)
	}
}

// streamReader renders engine blocks on demand and serves them to the audio
// device as little-endian float32 bytes. All MIDI is injected at block
// boundaries, the same way the offline harness does it.
type streamReader struct {
	tester        *tester.Tester
	notes         []int
	velocity      float32
	releaseFrame  int
	maxTailFrames int

	frame    int
	started  bool
	released bool
	done     atomic.Bool

	leftover []byte
}

func (s *streamReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.leftover) == 0 {
			if s.done.Load() {
				// Keep feeding silence; playback stop is handled by main.
				for i := n; i < len(p); i++ {
					p[i] = 0
				}
				return len(p), nil
			}
			s.leftover = s.renderBlock()
		}
		c := copy(p[n:], s.leftover)
		s.leftover = s.leftover[c:]
		n += c
	}
	return n, nil
}

func (s *streamReader) renderBlock() []byte {
	if !s.started {
		s.started = true
		for _, note := range s.notes {
			s.tester.PlayNote(note, s.velocity)
		}
	}
	if !s.released && s.frame >= s.releaseFrame {
		s.released = true
		for _, note := range s.notes {
			s.tester.SendMessage([3]byte{0x80, byte(note & 0x7F), 0})
		}
	}

	mono := s.tester.RenderBlock(playBlockFrames)
	s.frame += len(mono)

	if s.released {
		tail := s.frame - s.releaseFrame
		if s.tester.Engine().ActiveVoices() == 0 || tail >= s.maxTailFrames {
			s.done.Store(true)
		}
	}

	out := make([]byte, len(mono)*4)
	for i, v := range mono {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func parseNotes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	notes := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var note int
		if _, err := fmt.Sscanf(part, "%d", &note); err != nil {
			return nil, fmt.Errorf("invalid note %q", part)
		}
		if note < 0 || note > 127 {
			return nil, fmt.Errorf("note %d out of MIDI range", note)
		}
		notes = append(notes, note)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return notes, nil
}

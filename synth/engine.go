package synth

// MaxVoices is the polyphony limit of the engine.
const MaxVoices = 16

// globalTimeWrap bounds the modulation clock so single-precision phase
// arithmetic never loses sample-level resolution.
const globalTimeWrap = 1000.0

// Engine is the polyphonic render core: a fixed voice pool, a note→voice
// index map, the single filter instance, and the modulation clock. It is
// driven identically by a plugin shell or the standalone tester: feed MIDI
// batches at block boundaries, pull audio blocks.
type Engine struct {
	sampleRate  float32
	params      *Params
	voices      [MaxVoices]*Voice
	noteToVoice map[int]int
	filter      *Filter
	time        float32
}

// NewEngine creates an engine with every voice pre-allocated. A nil params
// gets a fresh default parameter set.
func NewEngine(sampleRate float32, params *Params) *Engine {
	if params == nil {
		params = NewParams()
	}
	e := &Engine{
		sampleRate:  sampleRate,
		params:      params,
		noteToVoice: make(map[int]int, MaxVoices),
		filter:      NewFilter(sampleRate),
	}
	for i := range e.voices {
		e.voices[i] = NewVoice(sampleRate)
	}
	return e
}

// Params returns the shared parameter set.
func (e *Engine) Params() *Params {
	return e.params
}

// SampleRate returns the current render sample rate.
func (e *Engine) SampleRate() float32 {
	return e.sampleRate
}

// SetFilterForm selects the filter topology.
func (e *Engine) SetFilterForm(form FilterForm) {
	e.filter.SetForm(form)
}

// SetSampleRate propagates a new sample rate to every voice and the filter.
// Must not run concurrently with Process.
func (e *Engine) SetSampleRate(sampleRate float32) {
	e.sampleRate = sampleRate
	for _, v := range e.voices {
		v.SetSampleRate(sampleRate)
	}
	e.filter.SetSampleRate(sampleRate)
}

// NoteOn allocates a voice for the note. A retrigger of an already-sounding
// note releases the old voice first so a note never sounds twice. With the
// pool exhausted, voice 0 is stolen unconditionally; the deterministic
// policy keeps behavior reproducible under load.
func (e *Engine) NoteOn(note int, velocity float32) {
	if note < 0 || note > 127 {
		return
	}

	if idx, ok := e.noteToVoice[note]; ok {
		e.voices[idx].Stop()
		delete(e.noteToVoice, note)
	}

	for i, v := range e.voices {
		if !v.IsActive() {
			v.Start(note, velocity)
			e.noteToVoice[note] = i
			return
		}
	}

	// Steal voice 0. Drop the stale map entry so the map never points a
	// different note at the reassigned voice.
	for n, idx := range e.noteToVoice {
		if idx == 0 {
			delete(e.noteToVoice, n)
		}
	}
	e.voices[0].Start(note, velocity)
	e.noteToVoice[note] = 0
}

// NoteOff releases the note. Unknown notes are a no-op.
func (e *Engine) NoteOff(note int) {
	if idx, ok := e.noteToVoice[note]; ok {
		e.voices[idx].Stop()
		delete(e.noteToVoice, note)
	}
}

// ActiveVoices counts the voices still contributing to the mix.
func (e *Engine) ActiveVoices() int {
	n := 0
	for _, v := range e.voices {
		if v.IsActive() {
			n++
		}
	}
	return n
}

// Process renders one block into the caller-supplied channel buffers, all
// of equal length. The mono mix is replicated to every channel. Filter
// parameters are committed once per block; everything else is read per
// sample. Nothing in here allocates or blocks.
func (e *Engine) Process(outputs [][]float32) {
	if len(outputs) == 0 {
		return
	}
	numFrames := len(outputs[0])

	e.filter.SetCutoff(cutoffHz(e.params.Get(ParamFilterCutoff)))
	e.filter.SetResonance(e.params.Get(ParamFilterResonance) * maxResonance)
	e.filter.SetType(filterTypeFromValue(e.params.Get(ParamFilterType)))

	dt := 1.0 / e.sampleRate
	gain := e.params.Get(ParamMasterGain)

	for i := 0; i < numFrames; i++ {
		e.time += dt
		if e.time >= globalTimeWrap {
			e.time -= globalTimeWrap
		}

		var mix float32
		for _, v := range e.voices {
			if v.IsActive() {
				mix += v.NextSample(e.params, e.time)
			}
		}

		out := e.filter.Process(mix * gain)
		for c := range outputs {
			outputs[c][i] = out
		}
	}

	// Voices whose release tail finished during the block self-deactivated;
	// drop their map entries so the map never references an inactive voice.
	for n, idx := range e.noteToVoice {
		if !e.voices[idx].IsActive() {
			delete(e.noteToVoice, n)
		}
	}
}

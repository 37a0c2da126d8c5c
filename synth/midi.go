package synth

// Channel-voice status nibbles and controller numbers handled by the
// interpreter. Everything else is deliberately ignored, never an error: a
// malformed or unknown message must not interrupt playback.
const (
	statusNoteOff       = 0x80
	statusNoteOn        = 0x90
	statusControlChange = 0xB0
	statusPitchBend     = 0xE0

	ccModWheel = 1
)

// HandleMessage decodes one raw 3-byte channel-voice message and applies it
// to the voice pool.
func (e *Engine) HandleMessage(msg [3]byte) {
	switch msg[0] & 0xF0 {
	case statusNoteOn:
		velocity := float32(msg[2]&0x7F) / 127.0
		note := int(msg[1] & 0x7F)
		// Note On with velocity 0 is a Note Off by convention.
		if velocity > 0 {
			e.NoteOn(note, velocity)
		} else {
			e.NoteOff(note)
		}

	case statusNoteOff:
		e.NoteOff(int(msg[1] & 0x7F))

	case statusControlChange:
		if msg[1]&0x7F == ccModWheel {
			depth := float32(msg[2]&0x7F) / 127.0
			for _, v := range e.voices {
				if v.IsActive() {
					v.SetModulation(depth)
				}
			}
		}

	case statusPitchBend:
		// 14-bit value, LSB first, recentred to [-1,1].
		raw := int(msg[2]&0x7F)<<7 | int(msg[1]&0x7F)
		bend := float32(raw)/8192.0 - 1.0
		for _, v := range e.voices {
			if v.IsActive() {
				v.SetPitchBend(bend)
			}
		}
	}
}

// ProcessEvents applies a batch of raw MIDI messages. Callers invoke this
// at a block boundary, before Process, so events are never concurrent with
// the per-sample loop.
func (e *Engine) ProcessEvents(messages [][3]byte) {
	for _, msg := range messages {
		e.HandleMessage(msg)
	}
}

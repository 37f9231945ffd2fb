package polyvoice

import (
	"gitlab.com/gomidi/midi/v2"
)

// MessageHandler routes in-memory MIDI messages to a pool: note starts
// become attacks, note ends become releases. The MIDI key number is the
// note identity, so a later note-off for the same key releases the
// voice its note-on claimed. Channel information is ignored; a pool is
// one instrument.
type MessageHandler struct {
	pool *Pool
}

// NewMessageHandler wraps a pool for MIDI message routing.
func NewMessageHandler(pool *Pool) *MessageHandler {
	return &MessageHandler{pool: pool}
}

// Handle processes one MIDI message at time at (at <= 0 means now).
// Messages other than note starts and note ends are ignored. A note-on
// with velocity 0 counts as a note end, per the MIDI convention.
func (h *MessageHandler) Handle(msg midi.Message, at float64) error {
	var channel, key, velocity uint8

	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		return h.pool.Attack(at, float64(velocity)/127, key)
	case msg.GetNoteEnd(&channel, &key):
		return h.pool.Release(at, key)
	}
	return nil
}

package polyvoice_test

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/shaban/polyvoice"
)

func TestMessageHandlerNoteOnOff(t *testing.T) {
	pool, bank, _ := newTestPool(t, 2)
	defer pool.Dispose()
	h := polyvoice.NewMessageHandler(pool)

	if err := h.Handle(midi.NoteOn(0, 60, 127), 1); err != nil {
		t.Fatalf("note on failed: %v", err)
	}
	if got := pool.ActiveCount(); got != 1 {
		t.Fatalf("active bindings = %d, want 1", got)
	}
	call, ok := bank.Voices[0].LastAttack()
	if !ok {
		t.Fatal("voice received no attack")
	}
	if call.Velocity != 1.0 {
		t.Errorf("velocity = %g, want 1.0 for MIDI 127", call.Velocity)
	}

	if err := h.Handle(midi.NoteOff(0, 60), 2); err != nil {
		t.Fatalf("note off failed: %v", err)
	}
	if got := pool.ActiveCount(); got != 0 {
		t.Errorf("active bindings = %d after note off, want 0", got)
	}
	if len(bank.Voices[0].Releases) != 1 {
		t.Error("voice was not released")
	}
}

func TestMessageHandlerNoteOnVelocityZeroReleases(t *testing.T) {
	pool, _, _ := newTestPool(t, 2)
	defer pool.Dispose()
	h := polyvoice.NewMessageHandler(pool)

	if err := h.Handle(midi.NoteOn(0, 64, 100), 1); err != nil {
		t.Fatalf("note on failed: %v", err)
	}
	// Running-status style note off: note on with velocity 0.
	if err := h.Handle(midi.NoteOn(0, 64, 0), 2); err != nil {
		t.Fatalf("zero-velocity note on failed: %v", err)
	}
	if got := pool.ActiveCount(); got != 0 {
		t.Errorf("active bindings = %d, want 0", got)
	}
}

func TestMessageHandlerIgnoresOtherMessages(t *testing.T) {
	pool, bank, _ := newTestPool(t, 2)
	defer pool.Dispose()
	h := polyvoice.NewMessageHandler(pool)

	if err := h.Handle(midi.ControlChange(0, 1, 64), 1); err != nil {
		t.Fatalf("control change should be ignored, got %v", err)
	}
	if err := h.Handle(midi.Pitchbend(0, 1024), 1); err != nil {
		t.Fatalf("pitch bend should be ignored, got %v", err)
	}
	if pool.ActiveCount() != 0 {
		t.Error("non-note messages changed pool state")
	}
	for i, v := range bank.Voices {
		if len(v.Attacks) != 0 || len(v.Releases) != 0 {
			t.Errorf("voice %d received calls for non-note messages", i)
		}
	}
}

func TestMessageHandlerKeyMatchesNumericIdentity(t *testing.T) {
	pool, _, _ := newTestPool(t, 2)
	defer pool.Dispose()
	h := polyvoice.NewMessageHandler(pool)

	if err := h.Handle(midi.NoteOn(0, 60, 100), 1); err != nil {
		t.Fatalf("note on failed: %v", err)
	}
	// A direct numeric release addresses the same binding the MIDI
	// message created: both canonicalize to "60".
	if err := pool.Release(2, 60); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if got := pool.ActiveCount(); got != 0 {
		t.Errorf("active bindings = %d, want 0", got)
	}
}

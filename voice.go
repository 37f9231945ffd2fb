package polyvoice

import "time"

// Identity is the value a caller uses to name one sounding note: a MIDI
// key number, a note name like "A4", or any JSON-serializable composite
// descriptor. Two identities with the same structure address the same
// note regardless of value instance (see KeyFunc).
type Identity = any

// Params is an opaque parameter bundle forwarded to voices unchanged.
// The pool never interprets its contents.
type Params map[string]any

// Voice is a single monophonic sound-producing unit owned by a Pool.
// The pool only decides which voice handles which note when; everything
// audible happens behind this interface in the external audio engine.
type Voice interface {
	// Attack starts (or restarts) the note named by id at the given
	// time, with velocity in [0, 1].
	Attack(id Identity, at, velocity float64) error

	// Release ends the current note at the given time. The timestamp
	// may lie in the future; the voice's scheduler honors it.
	Release(at float64) error

	// Set applies a parameter bundle to the voice.
	Set(params Params) error

	// SetPreset applies a named preset to the voice.
	SetPreset(name string) error

	// Connect routes the voice's output into a destination node.
	// Called once, when the owning pool is constructed.
	Connect(sink AudioNode) error

	// Dispose releases the voice's engine resources.
	Dispose()
}

// VoiceFactory builds one pool member. The same opts value is passed
// for every voice of a pool.
type VoiceFactory func(opts VoiceOptions) (Voice, error)

// VoiceOptions is the shared construction bundle forwarded identically
// to every voice's factory call.
type VoiceOptions map[string]any

// AudioNode is an opaque node in the external audio graph. The pool and
// the feedback router only ever connect and disconnect nodes; they
// never touch samples.
type AudioNode interface {
	ConnectTo(target AudioNode) error
	DisconnectFrom(target AudioNode) error
}

// Param is a smoothed control signal on the external engine, e.g. the
// gain of a GainStage. RampTo schedules a transition; it never blocks.
type Param interface {
	Value() float64
	SetValue(v float64)
	RampTo(target, seconds float64)
}

// Clock reports the external audio clock's current time in seconds.
// Attack/release timestamps are expressed on this timeline.
type Clock interface {
	Now() float64
}

// SystemClock is a Clock counting monotonic seconds since construction.
// It stands in when no engine clock is injected.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock whose zero point is now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns seconds elapsed since the clock was created.
func (c *SystemClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

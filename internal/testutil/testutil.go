// Package testutil provides recording fakes for the external audio
// collaborators, so pool and router behavior can be asserted without an
// audio engine.
package testutil

import (
	"fmt"
	"sync"

	"github.com/shaban/polyvoice"
)

// AttackCall records one forwarded attack.
type AttackCall struct {
	ID       polyvoice.Identity
	At       float64
	Velocity float64
}

// FakeVoice records every call a pool forwards to it. The error fields
// let tests inject voice-level failures.
type FakeVoice struct {
	mu sync.Mutex

	Name     string
	Attacks  []AttackCall
	Releases []float64
	Sets     []polyvoice.Params
	Presets  []string
	Sink     polyvoice.AudioNode
	Disposed bool

	AttackErr  error
	ReleaseErr error
	SetErr     error
	PresetErr  error
	ConnectErr error
}

// Attack implements polyvoice.Voice.
func (v *FakeVoice) Attack(id polyvoice.Identity, at, velocity float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.AttackErr != nil {
		return v.AttackErr
	}
	v.Attacks = append(v.Attacks, AttackCall{ID: id, At: at, Velocity: velocity})
	return nil
}

// Release implements polyvoice.Voice.
func (v *FakeVoice) Release(at float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ReleaseErr != nil {
		return v.ReleaseErr
	}
	v.Releases = append(v.Releases, at)
	return nil
}

// Set implements polyvoice.Voice.
func (v *FakeVoice) Set(params polyvoice.Params) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.SetErr != nil {
		return v.SetErr
	}
	v.Sets = append(v.Sets, params)
	return nil
}

// SetPreset implements polyvoice.Voice.
func (v *FakeVoice) SetPreset(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.PresetErr != nil {
		return v.PresetErr
	}
	v.Presets = append(v.Presets, name)
	return nil
}

// Connect implements polyvoice.Voice.
func (v *FakeVoice) Connect(sink polyvoice.AudioNode) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ConnectErr != nil {
		return v.ConnectErr
	}
	v.Sink = sink
	return nil
}

// Dispose implements polyvoice.Voice.
func (v *FakeVoice) Dispose() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Disposed = true
}

// LastAttack returns the most recent attack, or false when none
// occurred.
func (v *FakeVoice) LastAttack() (AttackCall, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.Attacks) == 0 {
		return AttackCall{}, false
	}
	return v.Attacks[len(v.Attacks)-1], true
}

// LastSet returns the most recent parameter bundle, or false when none
// was applied.
func (v *FakeVoice) LastSet() (polyvoice.Params, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.Sets) == 0 {
		return nil, false
	}
	return v.Sets[len(v.Sets)-1], true
}

// VoiceBank creates numbered fake voices and a factory handing them out
// in order, so tests can identify which pool slot served which note.
type VoiceBank struct {
	mu     sync.Mutex
	Voices []*FakeVoice
}

// Factory returns a polyvoice.VoiceFactory backed by the bank.
func (b *VoiceBank) Factory() polyvoice.VoiceFactory {
	return func(opts polyvoice.VoiceOptions) (polyvoice.Voice, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		v := &FakeVoice{Name: fmt.Sprintf("voice-%d", len(b.Voices))}
		b.Voices = append(b.Voices, v)
		return v, nil
	}
}

// FakeNode is an AudioNode recording its connections.
type FakeNode struct {
	mu            sync.Mutex
	Name          string
	Connected     []polyvoice.AudioNode
	Disconnected  []polyvoice.AudioNode
	ConnectErr    error
	DisconnectErr error
}

// ConnectTo implements polyvoice.AudioNode.
func (n *FakeNode) ConnectTo(target polyvoice.AudioNode) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ConnectErr != nil {
		return n.ConnectErr
	}
	n.Connected = append(n.Connected, target)
	return nil
}

// DisconnectFrom implements polyvoice.AudioNode.
func (n *FakeNode) DisconnectFrom(target polyvoice.AudioNode) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.DisconnectErr != nil {
		return n.DisconnectErr
	}
	n.Disconnected = append(n.Disconnected, target)
	return nil
}

// FakeParam is a Param recording values and ramps.
type FakeParam struct {
	mu    sync.Mutex
	value float64
	Ramps []Ramp
}

// Ramp records one scheduled transition.
type Ramp struct {
	Target  float64
	Seconds float64
}

// Value implements polyvoice.Param.
func (p *FakeParam) Value() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// SetValue implements polyvoice.Param.
func (p *FakeParam) SetValue(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = v
}

// RampTo implements polyvoice.Param. The fake jumps to the target
// immediately and records the ramp.
func (p *FakeParam) RampTo(target, seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Ramps = append(p.Ramps, Ramp{Target: target, Seconds: seconds})
	p.value = target
}

// FakeGain is a GainStage over a FakeNode and FakeParam.
type FakeGain struct {
	FakeNode
	GainParam FakeParam
	Disposed  bool
}

// Gain implements polyvoice.GainStage.
func (g *FakeGain) Gain() polyvoice.Param {
	return &g.GainParam
}

// Dispose implements polyvoice.GainStage.
func (g *FakeGain) Dispose() {
	g.Disposed = true
}

// FakeEffect is an Effect whose send and return sides are fake nodes.
type FakeEffect struct {
	SendNode   FakeNode
	ReturnNode FakeNode
	Disposed   bool
}

// Send implements polyvoice.Effect.
func (e *FakeEffect) Send() polyvoice.AudioNode { return &e.SendNode }

// Return implements polyvoice.Effect.
func (e *FakeEffect) Return() polyvoice.AudioNode { return &e.ReturnNode }

// Dispose implements polyvoice.Effect.
func (e *FakeEffect) Dispose() { e.Disposed = true }

// FakeClock is a Clock reporting a settable instant.
type FakeClock struct {
	mu  sync.Mutex
	now float64
}

// Now implements polyvoice.Clock.
func (c *FakeClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by the given number of seconds.
func (c *FakeClock) Advance(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
}

// SetNow pins the clock to an absolute instant.
func (c *FakeClock) SetNow(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = seconds
}

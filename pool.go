package polyvoice

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// DefaultPolyphony is the pool size used when PoolConfig.Polyphony is
// left zero.
const DefaultPolyphony = 4

// DefaultVelocity is the full-scale velocity used when a caller passes
// velocity <= 0.
const DefaultVelocity = 1.0

// PoolConfig holds configuration for pool construction.
type PoolConfig struct {
	Polyphony    int          // number of voices; immutable after construction
	Voice        VoiceFactory // builds each voice; required
	VoiceOptions VoiceOptions // forwarded identically to every factory call
	Sink         AudioNode    // every voice's output destination; required
	Clock        Clock        // scheduling timeline; defaults to a SystemClock
	Key          KeyFunc      // identity canonicalization; defaults to StructuralKey
	ErrorHandler ErrorHandler // optional; defaults to DefaultErrorHandler
	Name         string       // optional diagnostic name
}

// PoolStats counts pool activity since construction. DroppedAttacks
// observes the exhaustion policy without changing it: dropped attacks
// surface no error anywhere else.
type PoolStats struct {
	Attacks        uint64
	Retriggers     uint64
	Releases       uint64
	DroppedAttacks uint64
}

// Pool multiplexes a fixed set of monophonic voices across concurrently
// sounding notes. Each attack request is resolved to a concrete voice;
// the voice itself renders the sound. All methods serialize through one
// mutex so the pool's bookkeeping stays consistent in multi-threaded
// hosts.
//
// A disposed pool must not be used again; the behavior of any call
// after Dispose is undefined.
type Pool struct {
	id   uuid.UUID
	name string

	mu     sync.Mutex
	voices []Voice          // all N members, creation order, fixed
	free   []Voice          // idle voices; allocate front, return back
	active map[string]Voice // canonical key -> bound voice

	clock        Clock
	key          KeyFunc
	errorHandler ErrorHandler
	stats        PoolStats
}

// NewPool creates the pool and all of its voices, connecting each
// voice's output to the configured sink. No voice starts bound to a
// note.
func NewPool(config PoolConfig) (*Pool, error) {
	if config.Polyphony == 0 {
		config.Polyphony = DefaultPolyphony
	}
	if config.Polyphony < 0 {
		return nil, fmt.Errorf("polyphony must be positive, got %d", config.Polyphony)
	}
	if config.Voice == nil {
		return nil, fmt.Errorf("voice factory is required in PoolConfig")
	}
	if config.Sink == nil {
		return nil, fmt.Errorf("sink is required in PoolConfig")
	}
	if config.Clock == nil {
		config.Clock = NewSystemClock()
	}
	if config.Key == nil {
		config.Key = StructuralKey
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = &DefaultErrorHandler{}
	}
	if config.Name == "" {
		config.Name = "polyvoice pool"
	}

	p := &Pool{
		id:           uuid.New(),
		name:         config.Name,
		voices:       make([]Voice, 0, config.Polyphony),
		free:         make([]Voice, 0, config.Polyphony),
		active:       make(map[string]Voice),
		clock:        config.Clock,
		key:          config.Key,
		errorHandler: config.ErrorHandler,
	}

	for i := 0; i < config.Polyphony; i++ {
		v, err := config.Voice(config.VoiceOptions)
		if err != nil {
			p.disposeVoicesLocked()
			return nil, fmt.Errorf("failed to create voice %d: %w", i, err)
		}
		if err := v.Connect(config.Sink); err != nil {
			v.Dispose()
			p.disposeVoicesLocked()
			return nil, fmt.Errorf("failed to connect voice %d: %w", i, err)
		}
		p.voices = append(p.voices, v)
		p.free = append(p.free, v)
	}

	return p, nil
}

// GetID returns the pool's UUID.
func (p *Pool) GetID() uuid.UUID {
	return p.id
}

// GetIDString returns the pool's UUID as string.
func (p *Pool) GetIDString() string {
	return p.id.String()
}

// GetName returns the pool's diagnostic name.
func (p *Pool) GetName() string {
	return p.name
}

// Polyphony returns the fixed voice count N.
func (p *Pool) Polyphony() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.voices)
}

// FreeCount returns the number of currently idle voices.
func (p *Pool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// ActiveCount returns the number of currently bound notes.
func (p *Pool) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// ActiveKeys returns the canonical keys of all currently bound notes.
func (p *Pool) ActiveKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.active))
	for k := range p.active {
		keys = append(keys, k)
	}
	return keys
}

// Stats returns a snapshot of the pool's activity counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Attack begins sounding the given identities at time at (at <= 0 means
// now). Velocity <= 0 selects full scale. Identities are processed
// independently, in order: an identity already sounding is retriggered
// on its existing voice, a new identity takes the front voice of the
// free list, and when the pool is exhausted the identity is dropped
// silently — no error, no stealing — while later identities in the
// batch are still processed.
func (p *Pool) Attack(at, velocity float64, ids ...Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	at, velocity = p.resolve(at, velocity)
	return p.attackLocked(at, velocity, ids)
}

func (p *Pool) attackLocked(at, velocity float64, ids []Identity) error {
	for _, id := range ids {
		key, err := p.key(id)
		if err != nil {
			return err
		}
		if v, ok := p.active[key]; ok {
			// Retrigger: same voice restarts its envelope, the free
			// list is untouched.
			if err := v.Attack(id, at, velocity); err != nil {
				return err
			}
			p.stats.Retriggers++
			continue
		}
		if len(p.free) == 0 {
			p.stats.DroppedAttacks++
			continue
		}
		v := p.free[0]
		if err := v.Attack(id, at, velocity); err != nil {
			return err
		}
		p.free = p.free[1:]
		p.active[key] = v
		p.stats.Attacks++
	}
	return nil
}

// Release ends the given identities at time at (at <= 0 means now). A
// bound voice is released and returned to the back of the free list;
// an unknown or already-released identity is a no-op.
func (p *Pool) Release(at float64, ids ...Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if at <= 0 {
		at = p.clock.Now()
	}
	return p.releaseLocked(at, ids)
}

func (p *Pool) releaseLocked(at float64, ids []Identity) error {
	for _, id := range ids {
		key, err := p.key(id)
		if err != nil {
			return err
		}
		v, ok := p.active[key]
		if !ok {
			continue
		}
		if err := v.Release(at); err != nil {
			return err
		}
		delete(p.active, key)
		p.free = append(p.free, v)
		p.stats.Releases++
	}
	return nil
}

// AttackRelease attacks the identities at time at (resolved against the
// clock when at <= 0) and schedules their release at at + duration. The
// release is forwarded immediately with the future timestamp; nothing
// blocks and, once scheduled, the release cannot be retracted.
func (p *Pool) AttackRelease(duration, at, velocity float64, ids ...Identity) error {
	if duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %g", duration)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	at, velocity = p.resolve(at, velocity)
	if err := p.attackLocked(at, velocity, ids); err != nil {
		return err
	}
	return p.releaseLocked(at+duration, ids)
}

// Set forwards a parameter bundle to every voice, free and active
// alike. The first voice error aborts the sweep and propagates.
func (p *Pool) Set(params Params) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range p.voices {
		if err := v.Set(params); err != nil {
			return err
		}
	}
	return nil
}

// SetPreset forwards a preset name to every voice, free and active
// alike.
func (p *Pool) SetPreset(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range p.voices {
		if err := v.SetPreset(name); err != nil {
			return err
		}
	}
	return nil
}

// Dispose disposes every voice and clears the pool's bookkeeping. The
// pool must not be used afterwards.
func (p *Pool) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disposeVoicesLocked()
	p.voices = nil
	p.free = nil
	p.active = nil
}

func (p *Pool) disposeVoicesLocked() {
	for _, v := range p.voices {
		v.Dispose()
	}
}

// resolve applies the "now" and full-scale defaults.
func (p *Pool) resolve(at, velocity float64) (float64, float64) {
	if at <= 0 {
		at = p.clock.Now()
	}
	if velocity <= 0 {
		velocity = DefaultVelocity
	}
	return at, velocity
}

package polyvoice

import (
	"fmt"
	"sync"
	"time"
)

// OperationType represents the type of dispatcher operation.
type OperationType string

const (
	OpAttack        OperationType = "attack"
	OpRelease       OperationType = "release"
	OpAttackRelease OperationType = "attack_release"
	OpSet           OperationType = "set"
	OpSetPreset     OperationType = "set_preset"
)

// DispatcherOperation represents one queued pool operation.
type DispatcherOperation struct {
	Type     OperationType
	Data     interface{}
	Response chan DispatcherResult
}

// DispatcherResult represents the result of a dispatcher operation.
type DispatcherResult struct {
	Success bool
	Error   error
}

// Data structures for dispatcher operations.

type AttackData struct {
	At       float64
	Velocity float64
	IDs      []Identity
}

type ReleaseData struct {
	At  float64
	IDs []Identity
}

type AttackReleaseData struct {
	Duration float64
	At       float64
	Velocity float64
	IDs      []Identity
}

// Dispatcher funnels pool operations from concurrently producing
// sources through one consumer goroutine, so every operation runs to
// completion before the next begins. Hosts driving a pool from a
// single goroutine can call the pool directly instead.
type Dispatcher struct {
	pool       *Pool
	mu         sync.RWMutex
	isRunning  bool
	operations chan DispatcherOperation
	stopChan   chan struct{}

	// Performance tracking
	lastOperationDuration time.Duration
	maxOperationDuration  time.Duration
}

// NewDispatcher creates a dispatcher for the given pool.
func NewDispatcher(pool *Pool) *Dispatcher {
	return &Dispatcher{
		pool:                 pool,
		operations:           make(chan DispatcherOperation, 100),
		stopChan:             make(chan struct{}),
		maxOperationDuration: 10 * time.Millisecond, // attack/release are scheduling calls, they should be cheap
	}
}

// Start begins the dispatch loop.
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return fmt.Errorf("dispatcher is already running")
	}

	d.isRunning = true
	go d.dispatchLoop()

	return nil
}

// Stop halts the dispatcher. Queued operations that have not started
// are abandoned.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning {
		return nil // Already stopped
	}

	close(d.stopChan)
	d.isRunning = false

	return nil
}

// IsRunning returns whether the dispatcher is active.
func (d *Dispatcher) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.isRunning
}

// GetPerformanceStats returns the duration of the last operation and
// the slow-op threshold.
func (d *Dispatcher) GetPerformanceStats() (lastDuration, maxDuration time.Duration) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastOperationDuration, d.maxOperationDuration
}

func (d *Dispatcher) dispatchLoop() {
	for {
		select {
		case <-d.stopChan:
			return
		case op := <-d.operations:
			start := time.Now()
			result := d.executeOperation(op)
			duration := time.Since(start)

			d.mu.Lock()
			d.lastOperationDuration = duration
			if duration > d.maxOperationDuration {
				d.pool.errorHandler.HandleError(
					fmt.Errorf("%s took %v, voices should schedule and return immediately", op.Type, duration))
			}
			d.mu.Unlock()

			op.Response <- result
		}
	}
}

func (d *Dispatcher) executeOperation(op DispatcherOperation) DispatcherResult {
	switch op.Type {
	case OpAttack:
		data := op.Data.(AttackData)
		err := d.pool.Attack(data.At, data.Velocity, data.IDs...)
		return DispatcherResult{Success: err == nil, Error: err}

	case OpRelease:
		data := op.Data.(ReleaseData)
		err := d.pool.Release(data.At, data.IDs...)
		return DispatcherResult{Success: err == nil, Error: err}

	case OpAttackRelease:
		data := op.Data.(AttackReleaseData)
		err := d.pool.AttackRelease(data.Duration, data.At, data.Velocity, data.IDs...)
		return DispatcherResult{Success: err == nil, Error: err}

	case OpSet:
		params := op.Data.(Params)
		err := d.pool.Set(params)
		return DispatcherResult{Success: err == nil, Error: err}

	case OpSetPreset:
		name := op.Data.(string)
		err := d.pool.SetPreset(name)
		return DispatcherResult{Success: err == nil, Error: err}

	default:
		return DispatcherResult{
			Success: false,
			Error:   fmt.Errorf("unknown operation type: %s", op.Type),
		}
	}
}

// submit queues an operation and waits for its result.
func (d *Dispatcher) submit(opType OperationType, data interface{}) error {
	response := make(chan DispatcherResult, 1)

	op := DispatcherOperation{
		Type:     opType,
		Data:     data,
		Response: response,
	}

	d.operations <- op
	result := <-response

	return result.Error
}

// Attack queues an attack via the dispatcher.
func (d *Dispatcher) Attack(at, velocity float64, ids ...Identity) error {
	return d.submit(OpAttack, AttackData{At: at, Velocity: velocity, IDs: ids})
}

// Release queues a release via the dispatcher.
func (d *Dispatcher) Release(at float64, ids ...Identity) error {
	return d.submit(OpRelease, ReleaseData{At: at, IDs: ids})
}

// AttackRelease queues an attack with a scheduled release via the
// dispatcher.
func (d *Dispatcher) AttackRelease(duration, at, velocity float64, ids ...Identity) error {
	return d.submit(OpAttackRelease, AttackReleaseData{Duration: duration, At: at, Velocity: velocity, IDs: ids})
}

// Set queues a bulk parameter update via the dispatcher.
func (d *Dispatcher) Set(params Params) error {
	return d.submit(OpSet, params)
}

// SetPreset queues a bulk preset change via the dispatcher.
func (d *Dispatcher) SetPreset(name string) error {
	return d.submit(OpSetPreset, name)
}

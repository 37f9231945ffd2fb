package polyvoice

import "fmt"

// maxFeedback keeps the loop gain below unity so the feedback path
// cannot run away.
const maxFeedback = 0.999

// Effect is a processing node with a send (input) side and a return
// (output) side, both living in the external audio graph.
type Effect interface {
	Send() AudioNode
	Return() AudioNode
	Dispose()
}

// GainStage is a gain node in the external graph with a smoothed gain
// control.
type GainStage interface {
	AudioNode
	Gain() Param
	Dispose()
}

// FeedbackRouter wires an effect's return path back into its own send
// path through a gain stage, exposing the loop gain as one control:
//
//	effect return -> gain -> effect send
//
// The router owns the gain stage; the effect stays caller-owned and is
// left connected to whatever else the caller wired it to.
type FeedbackRouter struct {
	effect Effect
	gain   GainStage
}

// NewFeedbackRouter connects the loop and sets the initial feedback
// amount. Amount is clamped to [0, maxFeedback].
func NewFeedbackRouter(effect Effect, gain GainStage, amount float64) (*FeedbackRouter, error) {
	if effect == nil {
		return nil, fmt.Errorf("effect is required")
	}
	if gain == nil {
		return nil, fmt.Errorf("gain stage is required")
	}
	if err := effect.Return().ConnectTo(gain); err != nil {
		return nil, fmt.Errorf("failed to connect effect return to feedback gain: %w", err)
	}
	if err := gain.ConnectTo(effect.Send()); err != nil {
		return nil, fmt.Errorf("failed to connect feedback gain to effect send: %w", err)
	}
	r := &FeedbackRouter{effect: effect, gain: gain}
	r.SetFeedback(amount)
	return r, nil
}

// Feedback returns the current loop gain.
func (r *FeedbackRouter) Feedback() float64 {
	return r.gain.Gain().Value()
}

// SetFeedback sets the loop gain immediately.
func (r *FeedbackRouter) SetFeedback(amount float64) {
	r.gain.Gain().SetValue(clampFeedback(amount))
}

// RampFeedback transitions the loop gain to amount over the given
// number of seconds. The ramp is scheduled on the engine's control
// signal; the call returns immediately.
func (r *FeedbackRouter) RampFeedback(amount, seconds float64) {
	if seconds <= 0 {
		r.SetFeedback(amount)
		return
	}
	r.gain.Gain().RampTo(clampFeedback(amount), seconds)
}

// Dispose breaks the loop and releases the gain stage. The effect
// itself is not disposed; it belongs to the caller.
func (r *FeedbackRouter) Dispose() {
	if r.gain == nil {
		return
	}
	// Disconnect errors are ignored: the graph may already have torn
	// these edges down.
	_ = r.effect.Return().DisconnectFrom(r.gain)
	_ = r.gain.DisconnectFrom(r.effect.Send())
	r.gain.Dispose()
	r.gain = nil
	r.effect = nil
}

func clampFeedback(amount float64) float64 {
	if amount < 0 {
		return 0
	}
	if amount > maxFeedback {
		return maxFeedback
	}
	return amount
}

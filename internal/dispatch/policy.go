package dispatch

import "github.com/danmuck/ticd/internal/protocol"

// Policy holds the application collaborators consulted during dispatch.
type Policy struct {
	// ApplicationReady reports whether gated tasks may run.
	ApplicationReady func() bool
	// CanBypassReady exempts application task ids from the ready gate.
	CanBypassReady func(id protocol.TaskID) bool
	// ResetAction runs after a reset response is built. It may not return.
	ResetAction func()
}

type PolicyOption func(*Policy)

// DefaultPolicy is always ready, never bypasses, and resets as a no-op.
func DefaultPolicy() Policy {
	return Policy{
		ApplicationReady: func() bool { return true },
		CanBypassReady:   func(protocol.TaskID) bool { return false },
		ResetAction:      func() {},
	}
}

func NewPolicy(opts ...PolicyOption) Policy {
	p := DefaultPolicy()
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}
	return p.withDefaults()
}

func WithApplicationReady(fn func() bool) PolicyOption {
	return func(p *Policy) { p.ApplicationReady = fn }
}

func WithBypassReady(fn func(id protocol.TaskID) bool) PolicyOption {
	return func(p *Policy) { p.CanBypassReady = fn }
}

// WithBypassTaskIDs exempts a fixed set of identifiers from the ready gate.
func WithBypassTaskIDs(ids ...protocol.TaskID) PolicyOption {
	var set [TableSize]bool
	for _, id := range ids {
		set[id] = true
	}
	return WithBypassReady(func(id protocol.TaskID) bool { return set[id] })
}

func WithResetAction(fn func()) PolicyOption {
	return func(p *Policy) { p.ResetAction = fn }
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.ApplicationReady == nil {
		p.ApplicationReady = def.ApplicationReady
	}
	if p.CanBypassReady == nil {
		p.CanBypassReady = def.CanBypassReady
	}
	if p.ResetAction == nil {
		p.ResetAction = def.ResetAction
	}
	return p
}

// exemptFromReady reports whether id skips the ready gate.
func (p Policy) exemptFromReady(id protocol.TaskID) bool {
	switch id {
	case protocol.TaskBootStatus, protocol.TaskReset, protocol.TaskInitializationData:
		return true
	}
	return p.CanBypassReady(id)
}

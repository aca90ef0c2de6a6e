package dispatch

import (
	"context"
	"time"

	"github.com/danmuck/ticd/internal/protocol"
	"github.com/danmuck/ticd/internal/protocol/header"
	"github.com/danmuck/ticd/internal/protocol/task"
	"github.com/rs/zerolog"
)

// DefaultIdleInterval is how long Run waits after a cycle with no message.
const DefaultIdleInterval = 5 * time.Millisecond

// maxPathLen is the longest stage path: received through sent via execution.
const maxPathLen = 6

// Outcome describes one DispatchOnce call.
type Outcome struct {
	Stage     Stage
	path      [maxPathLen]Stage
	pathLen   int
	Received  int
	TaskID    protocol.TaskID
	SeqID     uint16
	Status    protocol.Status
	Executed  bool
	Rejection Rejection
}

func (o *Outcome) advance(to Stage) {
	o.Stage = to
	o.path[o.pathLen] = to
	o.pathLen++
}

// Path lists the stages the message passed through after idle.
func (o Outcome) Path() []Stage {
	return o.path[:o.pathLen]
}

// Observer is told about every message the engine processes.
type Observer interface {
	Dispatched(out Outcome, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) Dispatched(Outcome, time.Duration) {}

// Engine owns the task table and the inbound/outbound message buffers.
type Engine struct {
	limits   task.Limits
	policy   Policy
	table    Table
	taskMsg  *task.Message
	respMsg  *task.Message
	logger   zerolog.Logger
	observer Observer
	idle     time.Duration
}

type Option func(*Engine)

func WithLimits(l task.Limits) Option {
	return func(e *Engine) { e.limits = l }
}

func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p.withDefaults() }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

func WithIdleInterval(d time.Duration) Option {
	return func(e *Engine) { e.idle = d }
}

// NewEngine builds and initializes an engine.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		limits:   task.DefaultLimits(),
		policy:   DefaultPolicy(),
		logger:   zerolog.Nop(),
		observer: nopObserver{},
		idle:     DefaultIdleInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if err := e.limits.Validate(); err != nil {
		return nil, err
	}
	e.taskMsg = task.NewMessage(e.limits)
	e.respMsg = task.NewMessage(e.limits)
	e.Initialize()
	return e, nil
}

// Initialize clears both buffers and the table, then installs the standard
// tasks. Application tasks must be registered again afterwards.
func (e *Engine) Initialize() {
	e.taskMsg.Reset()
	e.respMsg.Reset()
	e.table.Clear()
	e.Register(protocol.TaskBootStatus, Entry{Handler: StatusProbeHandler(e.applicationReady)})
	e.Register(protocol.TaskReset, Entry{Handler: ResetHandler(e.resetAction)})
	e.logger.Debug().Msg("dispatch initialized")
}

// Register installs entry at id, replacing standard tasks when asked to.
func (e *Engine) Register(id protocol.TaskID, entry Entry) {
	e.table.Register(id, entry)
	e.logger.Debug().
		Uint8("task_id", uint8(id)).
		Bool("handler", entry.Handler != nil).
		Msg("task registered")
}

func (e *Engine) Lookup(id protocol.TaskID) (Entry, bool) {
	return e.table.Lookup(id)
}

func (e *Engine) Registered() []protocol.TaskID {
	return e.table.Registered()
}

func (e *Engine) Limits() task.Limits {
	return e.limits
}

// ApplicationReady reports the policy's ready state.
func (e *Engine) ApplicationReady() bool {
	return e.applicationReady()
}

func (e *Engine) applicationReady() bool {
	return e.policy.ApplicationReady()
}

func (e *Engine) resetAction() {
	e.policy.ResetAction()
}

// DispatchOnce receives at most one message, processes it to completion, and
// sends exactly one response for it.
func (e *Engine) DispatchOnce(tr Transport) Outcome {
	out := Outcome{Stage: StageIdle}

	e.taskMsg.Reset()
	n := tr.Receive(e.taskMsg)
	out.Received = n
	if n <= 0 {
		return out
	}
	start := time.Now()
	out.advance(StageReceived)

	e.respMsg.Reset()
	e.respMsg.CopyMeta(e.taskMsg)

	req := e.taskMsg.Task()
	resp := e.respMsg.Task()
	h := req.Header()
	out.TaskID = h.TaskID
	out.SeqID = h.SeqID

	if status, rejection := e.admit(h, n, &out); rejection != RejectNone {
		resp.SetHeader(header.StandardResponse(h, status))
		out.Rejection = rejection
		out.advance(StageRejected)
	} else {
		e.execute(h.TaskID, req, resp)
		out.Executed = true
		out.advance(StageExecuted)
	}

	tr.Send(e.respMsg)
	out.advance(StageSent)
	out.Status = resp.Header().Status

	e.logger.Debug().
		Uint8("task_id", uint8(out.TaskID)).
		Uint16("seq_id", out.SeqID).
		Int("bytes", n).
		Str("status", out.Status.String()).
		Str("rejection", string(out.Rejection)).
		Msg("task dispatched")
	e.observer.Dispatched(out, time.Since(start))
	return out
}

// admit runs the ordered length, identifier, and ready gate checks.
func (e *Engine) admit(h header.Header, received int, out *Outcome) (protocol.Status, Rejection) {
	if received < header.Size || received > e.limits.TaskBytes() || uint32(received) != h.LenBytes {
		return protocol.StatusHeaderLenError, RejectLength
	}
	out.advance(StageLengthChecked)

	if _, ok := e.table.Lookup(h.TaskID); !ok {
		return protocol.StatusHeaderIDError, RejectIdentifier
	}
	out.advance(StageIdentifierChecked)

	if !e.policy.exemptFromReady(h.TaskID) && !e.applicationReady() {
		return protocol.StatusNotReady, RejectGate
	}
	out.advance(StageGateChecked)
	return protocol.StatusOK, RejectNone
}

func (e *Engine) execute(id protocol.TaskID, req *task.Task, resp *task.Task) {
	entry, _ := e.table.Lookup(id)
	if entry.TaskSwap != nil {
		entry.TaskSwap(req.UsedPayload())
	}
	entry.Handler.HandleTask(req, resp)
	if entry.RespSwap != nil {
		entry.RespSwap(resp.UsedPayload())
	}
}

// Run dispatches until ctx is done. ctx is only checked between messages.
func (e *Engine) Run(ctx context.Context, tr Transport) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		out := e.DispatchOnce(tr)
		if out.Stage != StageIdle || e.idle <= 0 {
			continue
		}
		timer := time.NewTimer(e.idle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

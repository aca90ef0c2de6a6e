package commands

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/danmuck/ticd/internal/dispatch"
	"github.com/danmuck/ticd/internal/protocol"
	"github.com/danmuck/ticd/internal/protocol/header"
	"github.com/danmuck/ticd/internal/protocol/payload"
	"github.com/danmuck/ticd/internal/protocol/task"
	"github.com/rs/zerolog"
)

const (
	bankEntryBytes = 8
	outPayloadLen  = 4
)

// Application tracks readiness and turns tasks into command words.
type Application struct {
	sink        Sink
	requireInit bool
	ready       atomic.Bool
	logger      zerolog.Logger

	mu       sync.Mutex
	initData []uint32
}

type Option func(*Application)

// WithRequireInitData keeps the application not ready until an
// initialization-data task arrives.
func WithRequireInitData(v bool) Option {
	return func(a *Application) { a.requireInit = v }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Application) { a.logger = logger }
}

func New(sink Sink, opts ...Option) *Application {
	a := &Application{
		sink:   sink,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.ready.Store(!a.requireInit)
	return a
}

func (a *Application) Ready() bool {
	return a.ready.Load()
}

func (a *Application) InitData() []uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.initData)
}

// Reset returns the application to its boot state.
func (a *Application) Reset() {
	a.mu.Lock()
	a.initData = nil
	a.mu.Unlock()
	a.ready.Store(!a.requireInit)
	a.logger.Warn().Bool("ready", a.Ready()).Msg("application reset")
}

// Policy wires the application's ready state and reset into a dispatch policy.
func (a *Application) Policy(opts ...dispatch.PolicyOption) dispatch.Policy {
	base := []dispatch.PolicyOption{
		dispatch.WithApplicationReady(a.Ready),
		dispatch.WithResetAction(a.Reset),
	}
	return dispatch.NewPolicy(append(base, opts...)...)
}

// Register installs the application's tasks. Call it after every
// engine Initialize.
func (a *Application) Register(e *dispatch.Engine) {
	e.Register(protocol.TaskInitializationData, dispatch.Entry{
		Handler:  dispatch.HandlerFunc(a.handleInitData),
		TaskSwap: payload.Swap32,
	})
	e.Register(TaskBank, dispatch.Entry{
		Handler:  dispatch.HandlerFunc(a.handleBank),
		TaskSwap: payload.Swap32,
	})
	e.Register(TaskOut, dispatch.Entry{
		Handler:  dispatch.HandlerFunc(a.handleOut),
		TaskSwap: payload.Swap32,
	})
}

func (a *Application) handleInitData(req *task.Task, resp *task.Task) {
	h := req.Header()
	n := h.PayloadLen()
	status := protocol.StatusOK
	switch {
	case n == 0 || n%4 != 0:
		status = protocol.StatusHeaderLenError
	case h.SubTaskID != 0:
		status = protocol.StatusHeaderSubIDError
	}
	if status == protocol.StatusOK {
		p := req.UsedPayload()
		words := make([]uint32, 0, payload.Words(p))
		for i := 0; i < payload.Words(p); i++ {
			w, _ := payload.Word32(p, i)
			words = append(words, w)
		}
		a.mu.Lock()
		a.initData = words
		a.mu.Unlock()
		a.ready.Store(true)
		a.logger.Info().Int("words", len(words)).Msg("initialization data accepted")
	}
	resp.SetHeader(header.StandardResponse(h, status))
}

func (a *Application) handleOut(req *task.Task, resp *task.Task) {
	h := req.Header()
	resp.SetHeader(header.StandardResponse(h, a.out(h, req.UsedPayload())))
}

func (a *Application) out(h header.Header, p []byte) protocol.Status {
	if h.PayloadLen() != outPayloadLen {
		return protocol.StatusHeaderLenError
	}
	if h.SubTaskID != 0 {
		return protocol.StatusHeaderSubIDError
	}
	out, _ := payload.Word32(p, 0)
	if out > OutMax {
		return protocol.StatusPayloadError
	}
	if err := a.sink.Emit(OutCommand(out)); err != nil {
		a.logger.Error().Err(err).Uint32("out", out).Msg("output command failed")
		return protocol.StatusExecutionError
	}
	return protocol.StatusOK
}

func (a *Application) handleBank(req *task.Task, resp *task.Task) {
	h := req.Header()
	resp.SetHeader(header.StandardResponse(h, a.bank(h, req.UsedPayload())))
}

func (a *Application) bank(h header.Header, p []byte) protocol.Status {
	n := h.PayloadLen()
	entries := n / bankEntryBytes
	if n%bankEntryBytes != 0 || entries < 1 || entries > BankMaxEntries {
		return protocol.StatusHeaderLenError
	}
	if h.SubTaskID != 0 {
		return protocol.StatusHeaderSubIDError
	}
	words := make([]uint32, 0, entries)
	for i := 0; i < entries; i++ {
		enable, _ := payload.Word32(p, 2*i)
		value, _ := payload.Word32(p, 2*i+1)
		if enable > BankEnableMax || value > BankValueMax {
			return protocol.StatusPayloadError
		}
		words = append(words, BankCommand(enable, value))
	}
	for _, w := range words {
		if err := a.sink.Emit(w); err != nil {
			a.logger.Error().Err(err).Msg("bank command failed")
			return protocol.StatusExecutionError
		}
	}
	return protocol.StatusOK
}

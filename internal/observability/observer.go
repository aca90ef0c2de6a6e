package observability

import (
	"time"

	"github.com/danmuck/ticd/internal/commands"
	"github.com/danmuck/ticd/internal/dispatch"
	"github.com/rs/zerolog"
)

// DispatchObserver records metrics for every processed task and logs
// rejections.
type DispatchObserver struct {
	node   string
	logger zerolog.Logger
}

var _ dispatch.Observer = (*DispatchObserver)(nil)

func NewDispatchObserver(node string, logger zerolog.Logger) *DispatchObserver {
	RegisterMetrics()
	return &DispatchObserver{node: node, logger: logger}
}

func (o *DispatchObserver) Dispatched(out dispatch.Outcome, elapsed time.Duration) {
	RecordDispatch(o.node, uint8(out.TaskID), out.Status.String(), string(out.Rejection), elapsed)
	if out.Rejection == dispatch.RejectNone {
		return
	}
	o.logger.Warn().
		Str("task", out.TaskID.String()).
		Uint16("seq_id", out.SeqID).
		Int("bytes", out.Received).
		Str("check", string(out.Rejection)).
		Str("status", out.Status.String()).
		Msg("task rejected")
}

// CommandMetrics counts command words on their way to next.
type CommandMetrics struct {
	node string
	next commands.Sink
}

var _ commands.Sink = (*CommandMetrics)(nil)

func NewCommandMetrics(node string, next commands.Sink) *CommandMetrics {
	RegisterMetrics()
	return &CommandMetrics{node: node, next: next}
}

func (c *CommandMetrics) Emit(word uint32) error {
	err := c.next.Emit(word)
	RecordCommand(c.node, commands.Kind(word), err == nil)
	return err
}

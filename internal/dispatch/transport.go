package dispatch

import "github.com/danmuck/ticd/internal/protocol/task"

// Transport moves envelopes for the engine.
//
// Receive fills msg's meta and task storage and returns the number of task
// bytes received. Zero or a negative value skips the cycle; the engine does
// not tell "no data" from "error".
//
// Send transmits msg's task toward the party identified by msg's meta.
// Send owns every transmission failure.
type Transport interface {
	Receive(msg *task.Message) int
	Send(msg *task.Message)
}

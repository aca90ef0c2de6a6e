package dispatch

import (
	"github.com/danmuck/ticd/internal/protocol"
	"github.com/danmuck/ticd/internal/protocol/payload"
	"github.com/danmuck/ticd/internal/protocol/task"
)

// TableSize covers every task identifier.
const TableSize = 256

// Handler executes one task. req is in host order and must be treated as
// read-only; the handler populates resp, including its header.
type Handler interface {
	HandleTask(req *task.Task, resp *task.Task)
}

type HandlerFunc func(req *task.Task, resp *task.Task)

func (f HandlerFunc) HandleTask(req *task.Task, resp *task.Task) {
	f(req, resp)
}

// Entry is one task table slot. A nil Handler leaves the identifier
// unregistered.
type Entry struct {
	Handler  Handler
	TaskSwap payload.Converter
	RespSwap payload.Converter
}

// Table maps task identifiers to entries.
type Table struct {
	entries [TableSize]Entry
}

// Register installs e at id, replacing any existing entry.
func (t *Table) Register(id protocol.TaskID, e Entry) {
	t.entries[id] = e
}

// Lookup returns the entry for id when a handler is present.
func (t *Table) Lookup(id protocol.TaskID) (Entry, bool) {
	e := t.entries[id]
	if e.Handler == nil {
		return Entry{}, false
	}
	return e, true
}

func (t *Table) Clear() {
	t.entries = [TableSize]Entry{}
}

// Registered lists identifiers with a handler in ascending order.
func (t *Table) Registered() []protocol.TaskID {
	out := make([]protocol.TaskID, 0, 8)
	for i := range t.entries {
		if t.entries[i].Handler != nil {
			out = append(out, protocol.TaskID(i))
		}
	}
	return out
}

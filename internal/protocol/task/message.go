package task

import (
	"fmt"

	"github.com/danmuck/ticd/internal/protocol"
)

// Message is the transport envelope: routing meta plus task bytes.
// Meta is owned by the transport collaborators and is never interpreted here.
type Message struct {
	meta []byte
	task *Task
}

func NewMessage(l Limits) *Message {
	meta := l.MetaBytes
	if meta < 0 {
		meta = 0
	}
	return &Message{
		meta: make([]byte, meta),
		task: New(l.PayloadBytes),
	}
}

func (m *Message) Meta() []byte {
	return m.meta
}

func (m *Message) Task() *Task {
	return m.task
}

// PopulateMeta copies b into the meta storage. Nothing is written on failure.
func (m *Message) PopulateMeta(b []byte) error {
	if len(b) > len(m.meta) {
		return fmt.Errorf("%w: %d > %d", protocol.ErrMetaTooLarge, len(b), len(m.meta))
	}
	copy(m.meta, b)
	return nil
}

// PopulateTask copies b into the task storage. Nothing is written on failure.
func (m *Message) PopulateTask(b []byte) error {
	if len(b) > len(m.task.buf) {
		return fmt.Errorf("%w: %d > %d", protocol.ErrTaskTooLarge, len(b), len(m.task.buf))
	}
	copy(m.task.buf, b)
	return nil
}

// CopyMeta copies src's meta verbatim.
func (m *Message) CopyMeta(src *Message) {
	copy(m.meta, src.meta)
}

func (m *Message) Reset() {
	clear(m.meta)
	m.task.Reset()
}

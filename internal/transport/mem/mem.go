package mem

import (
	"errors"
	"sync/atomic"

	"github.com/danmuck/ticd/internal/protocol/task"
)

var ErrInboxFull = errors.New("mem: inbox full")

// Datagram is one envelope as it crosses the in-process link.
type Datagram struct {
	Meta []byte
	Task []byte
}

// Transport is an in-process transport. Deliver feeds the engine, and
// responses are read from Responses.
type Transport struct {
	inbox   chan Datagram
	outbox  chan Datagram
	dropped atomic.Uint64
}

func New(depth int) *Transport {
	if depth <= 0 {
		depth = 1
	}
	return &Transport{
		inbox:  make(chan Datagram, depth),
		outbox: make(chan Datagram, depth),
	}
}

// Deliver queues one inbound task without blocking.
func (t *Transport) Deliver(meta []byte, b []byte) error {
	d := Datagram{
		Meta: append([]byte(nil), meta...),
		Task: append([]byte(nil), b...),
	}
	select {
	case t.inbox <- d:
		return nil
	default:
		return ErrInboxFull
	}
}

func (t *Transport) Responses() <-chan Datagram {
	return t.outbox
}

// Dropped counts responses discarded because nobody drained Responses.
func (t *Transport) Dropped() uint64 {
	return t.dropped.Load()
}

func (t *Transport) Receive(msg *task.Message) int {
	select {
	case d := <-t.inbox:
		if err := msg.PopulateMeta(d.Meta); err != nil {
			return -1
		}
		n := len(d.Task)
		_ = msg.PopulateTask(d.Task[:min(n, len(msg.Task().Bytes()))])
		return n
	default:
		return 0
	}
}

func (t *Transport) Send(msg *task.Message) {
	d := Datagram{
		Meta: append([]byte(nil), msg.Meta()...),
		Task: append([]byte(nil), msg.Task().Wire()...),
	}
	select {
	case t.outbox <- d:
	default:
		t.dropped.Add(1)
	}
}

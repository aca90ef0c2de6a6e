package task

import (
	"fmt"

	"github.com/danmuck/ticd/internal/protocol"
	"github.com/danmuck/ticd/internal/protocol/header"
)

const (
	DefaultPayloadBytes = 32
	DefaultMetaBytes    = 80
)

// Limits fixes the storage sizes of tasks and envelopes.
type Limits struct {
	PayloadBytes int
	MetaBytes    int
}

func DefaultLimits() Limits {
	return Limits{
		PayloadBytes: DefaultPayloadBytes,
		MetaBytes:    DefaultMetaBytes,
	}
}

// TaskBytes is the fixed storage size of one task.
func (l Limits) TaskBytes() int {
	return header.Size + l.PayloadBytes
}

// Validate keeps tasks a whole number of 32-bit words.
func (l Limits) Validate() error {
	if l.PayloadBytes < 0 || l.PayloadBytes%4 != 0 {
		return fmt.Errorf("%w: payload_bytes=%d must be a non-negative multiple of 4", protocol.ErrInvalidLimits, l.PayloadBytes)
	}
	if l.MetaBytes <= 0 {
		return fmt.Errorf("%w: meta_bytes=%d must be positive", protocol.ErrInvalidLimits, l.MetaBytes)
	}
	return nil
}

// Task is a header followed by a fixed capacity payload, stored in wire form.
// Header and SetHeader convert byte order at the boundary.
type Task struct {
	buf []byte
}

func New(payloadBytes int) *Task {
	if payloadBytes < 0 {
		payloadBytes = 0
	}
	return &Task{buf: make([]byte, header.Size+payloadBytes)}
}

// Header returns the header in host order.
func (t *Task) Header() header.Header {
	h, _ := header.Decode(t.buf)
	return h
}

// SetHeader stores h in network order.
func (t *Task) SetHeader(h header.Header) {
	header.Put(t.buf, h)
}

// Payload is the full payload storage. Only the first Header().PayloadLen()
// bytes are meaningful.
func (t *Task) Payload() []byte {
	return t.buf[header.Size:]
}

// UsedPayload is the payload prefix declared by the header, clamped to storage.
func (t *Task) UsedPayload() []byte {
	n := t.Header().PayloadLen()
	p := t.Payload()
	if n > len(p) {
		n = len(p)
	}
	return p[:n]
}

// Wire is the meaningful prefix of the task: header plus used payload.
func (t *Task) Wire() []byte {
	return t.buf[:header.Size+len(t.UsedPayload())]
}

// Bytes is the full task storage.
func (t *Task) Bytes() []byte {
	return t.buf
}

// Capacity is the payload capacity in bytes.
func (t *Task) Capacity() int {
	return len(t.buf) - header.Size
}

func (t *Task) Reset() {
	clear(t.buf)
}

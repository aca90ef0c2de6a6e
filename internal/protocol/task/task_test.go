package task

import (
	"bytes"
	"errors"
	"testing"

	"github.com/danmuck/ticd/internal/protocol"
	"github.com/danmuck/ticd/internal/protocol/header"
)

func TestLimitsValidate(t *testing.T) {
	if err := DefaultLimits().Validate(); err != nil {
		t.Fatalf("default limits invalid: %v", err)
	}
	if got := DefaultLimits().TaskBytes(); got != header.Size+32 {
		t.Fatalf("unexpected task size: %d", got)
	}
	if err := (Limits{PayloadBytes: 30, MetaBytes: 8}).Validate(); !errors.Is(err, protocol.ErrInvalidLimits) {
		t.Fatalf("expected ErrInvalidLimits for unaligned payload, got %v", err)
	}
	if err := (Limits{PayloadBytes: 32, MetaBytes: 0}).Validate(); !errors.Is(err, protocol.ErrInvalidLimits) {
		t.Fatalf("expected ErrInvalidLimits for empty meta, got %v", err)
	}
}

func TestTaskHeaderStoredInNetworkOrder(t *testing.T) {
	tk := New(8)
	tk.SetHeader(header.Header{LenBytes: header.Size + 4, SeqID: 0x0102, TaskID: 100})
	if !bytes.Equal(tk.Bytes()[:6], []byte{0, 0, 0, 16, 1, 2}) {
		t.Fatalf("header not stored big endian: % x", tk.Bytes()[:header.Size])
	}
	h := tk.Header()
	if h.LenBytes != header.Size+4 || h.SeqID != 0x0102 || h.TaskID != 100 {
		t.Fatalf("unexpected header: %+v", h)
	}
	if len(tk.UsedPayload()) != 4 || len(tk.Wire()) != header.Size+4 {
		t.Fatalf("unexpected used sizes: payload=%d wire=%d", len(tk.UsedPayload()), len(tk.Wire()))
	}
	if tk.Capacity() != 8 {
		t.Fatalf("unexpected capacity: %d", tk.Capacity())
	}
}

func TestUsedPayloadClampsToStorage(t *testing.T) {
	tk := New(4)
	tk.SetHeader(header.Header{LenBytes: 1000})
	if len(tk.UsedPayload()) != 4 {
		t.Fatalf("expected clamp to capacity, got %d", len(tk.UsedPayload()))
	}
	tk.SetHeader(header.Header{LenBytes: 2})
	if len(tk.UsedPayload()) != 0 || len(tk.Wire()) != header.Size {
		t.Fatalf("expected empty payload for short length")
	}
}

func TestPopulateMetaBounds(t *testing.T) {
	msg := NewMessage(Limits{PayloadBytes: 4, MetaBytes: 4})
	if err := msg.PopulateMeta([]byte{1, 2, 3}); err != nil {
		t.Fatalf("populate meta: %v", err)
	}
	if !bytes.Equal(msg.Meta(), []byte{1, 2, 3, 0}) {
		t.Fatalf("unexpected meta: % x", msg.Meta())
	}
	err := msg.PopulateMeta([]byte{9, 9, 9, 9, 9})
	if !errors.Is(err, protocol.ErrMetaTooLarge) {
		t.Fatalf("expected ErrMetaTooLarge, got %v", err)
	}
	if !bytes.Equal(msg.Meta(), []byte{1, 2, 3, 0}) {
		t.Fatalf("failed populate must not write: % x", msg.Meta())
	}
}

func TestPopulateTaskBounds(t *testing.T) {
	msg := NewMessage(Limits{PayloadBytes: 4, MetaBytes: 4})
	in := header.Encode(header.Header{LenBytes: header.Size})
	if err := msg.PopulateTask(in); err != nil {
		t.Fatalf("populate task: %v", err)
	}
	before := append([]byte(nil), msg.Task().Bytes()...)
	err := msg.PopulateTask(make([]byte, header.Size+5))
	if !errors.Is(err, protocol.ErrTaskTooLarge) {
		t.Fatalf("expected ErrTaskTooLarge, got %v", err)
	}
	if !bytes.Equal(before, msg.Task().Bytes()) {
		t.Fatalf("failed populate must not write")
	}
}

func TestCopyMetaAndReset(t *testing.T) {
	l := Limits{PayloadBytes: 0, MetaBytes: 3}
	src, dst := NewMessage(l), NewMessage(l)
	_ = src.PopulateMeta([]byte{7, 8, 9})
	dst.CopyMeta(src)
	if !bytes.Equal(dst.Meta(), src.Meta()) {
		t.Fatalf("meta not copied")
	}
	dst.Reset()
	if !bytes.Equal(dst.Meta(), []byte{0, 0, 0}) {
		t.Fatalf("meta not cleared")
	}
}

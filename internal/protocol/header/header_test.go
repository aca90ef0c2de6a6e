package header

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/danmuck/ticd/internal/protocol"
)

func sampleHeaders() []Header {
	return []Header{
		{},
		{LenBytes: Size, SeqID: 7, SubTaskID: 0, TaskID: protocol.TaskBootStatus},
		{LenBytes: 0x01020304, SeqID: 0xA1B2, SubTaskID: 0xEE, TaskID: 200, Status: 0xDEADBEEF},
		{LenBytes: ^uint32(0), SeqID: ^uint16(0), SubTaskID: 0xFF, TaskID: 0xFF, Status: protocol.Status(^uint32(0))},
	}
}

func TestSwapIsItsOwnInverseOnBothByteOrders(t *testing.T) {
	for _, bigEndianHost := range []bool{false, true} {
		for _, h := range sampleHeaders() {
			if got := swap(swap(h, bigEndianHost), bigEndianHost); got != h {
				t.Fatalf("swap round trip mismatch (big=%v): got=%+v want=%+v", bigEndianHost, got, h)
			}
		}
	}
	for _, h := range sampleHeaders() {
		if got := ToNetwork(ToHost(h)); got != h {
			t.Fatalf("hton(ntoh(x)) mismatch: got=%+v want=%+v", got, h)
		}
		if got := ToHost(ToNetwork(h)); got != h {
			t.Fatalf("ntoh(hton(x)) mismatch: got=%+v want=%+v", got, h)
		}
	}
}

func TestSwapLeavesSingleByteFields(t *testing.T) {
	h := Header{LenBytes: 0x0000000C, SeqID: 0x0102, SubTaskID: 3, TaskID: 4, Status: 0x05}
	s := swap(h, false)
	if s.LenBytes != 0x0C000000 || s.SeqID != 0x0201 || s.Status != 0x05000000 {
		t.Fatalf("unexpected swapped multi-byte fields: %+v", s)
	}
	if s.SubTaskID != 3 || s.TaskID != 4 {
		t.Fatalf("single byte fields changed: %+v", s)
	}
	if got := swap(h, true); got != h {
		t.Fatalf("big endian host swap must be identity: %+v", got)
	}
}

func TestEncodeIsNetworkOrder(t *testing.T) {
	h := Header{LenBytes: 16, SeqID: 0x1234, SubTaskID: 9, TaskID: 101, Status: protocol.StatusPayloadError}
	b := Encode(h)
	if len(b) != Size {
		t.Fatalf("unexpected encoded size: %d", len(b))
	}
	if binary.BigEndian.Uint32(b[0:4]) != 16 || binary.BigEndian.Uint16(b[4:6]) != 0x1234 {
		t.Fatalf("len/seq not big endian: % x", b)
	}
	if b[6] != 9 || b[7] != 101 {
		t.Fatalf("sub/task id misplaced: % x", b)
	}
	if binary.BigEndian.Uint32(b[8:12]) != uint32(protocol.StatusPayloadError) {
		t.Fatalf("status not big endian: % x", b)
	}

	out, err := Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != h {
		t.Fatalf("decode mismatch: got=%+v want=%+v", out, h)
	}
}

func TestDecodeShortHeader(t *testing.T) {
	_, err := Decode([]byte{0, 0, 0, 12, 0})
	if !errors.Is(err, protocol.ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestStandardResponseCopiesRoutingFields(t *testing.T) {
	task := Header{LenBytes: 40, SeqID: 77, SubTaskID: 2, TaskID: 100, Status: 12345}
	resp := StandardResponse(task, protocol.StatusHeaderLenError)
	if resp.LenBytes != Size {
		t.Fatalf("standard response must be header only, got len=%d", resp.LenBytes)
	}
	if resp.SeqID != task.SeqID || resp.SubTaskID != task.SubTaskID || resp.TaskID != task.TaskID {
		t.Fatalf("routing fields not copied: %+v", resp)
	}
	if resp.Status != protocol.StatusHeaderLenError {
		t.Fatalf("unexpected status: %v", resp.Status)
	}
}

func TestPayloadLen(t *testing.T) {
	if got := (Header{LenBytes: Size + 8}).PayloadLen(); got != 8 {
		t.Fatalf("expected 8 payload bytes, got %d", got)
	}
	if got := (Header{LenBytes: 3}).PayloadLen(); got != 0 {
		t.Fatalf("short length must clamp to 0, got %d", got)
	}
}

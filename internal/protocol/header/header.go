package header

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/danmuck/ticd/internal/protocol"
)

// Size is the fixed wire header length in bytes.
const Size = 12

// Size must stay a whole number of 32-bit words.
var _ [0]struct{} = [Size % 4]struct{}{}

// Header is the fixed task/response header.
type Header struct {
	LenBytes  uint32
	SeqID     uint16
	SubTaskID uint8
	TaskID    protocol.TaskID
	Status    protocol.Status
}

var hostIsBigEndian = func() bool {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 1)
	return probe[1] == 1
}()

// ToHost converts a header loaded byte-for-byte from the wire into host order.
// It is the same operation as ToNetwork.
func ToHost(h Header) Header {
	return swap(h, hostIsBigEndian)
}

// ToNetwork converts a host order header into the layout transmitted on the wire.
func ToNetwork(h Header) Header {
	return swap(h, hostIsBigEndian)
}

func swap(h Header, bigEndianHost bool) Header {
	if bigEndianHost {
		return h
	}
	return Header{
		LenBytes:  bits.ReverseBytes32(h.LenBytes),
		SeqID:     bits.ReverseBytes16(h.SeqID),
		SubTaskID: h.SubTaskID,
		TaskID:    h.TaskID,
		Status:    protocol.Status(bits.ReverseBytes32(uint32(h.Status))),
	}
}

// Raw loads b as a header without any byte order conversion.
func Raw(b []byte) Header {
	return Header{
		LenBytes:  binary.NativeEndian.Uint32(b[0:4]),
		SeqID:     binary.NativeEndian.Uint16(b[4:6]),
		SubTaskID: b[6],
		TaskID:    protocol.TaskID(b[7]),
		Status:    protocol.Status(binary.NativeEndian.Uint32(b[8:12])),
	}
}

// PutRaw stores h into b without any byte order conversion.
func PutRaw(b []byte, h Header) {
	binary.NativeEndian.PutUint32(b[0:4], h.LenBytes)
	binary.NativeEndian.PutUint16(b[4:6], h.SeqID)
	b[6] = h.SubTaskID
	b[7] = uint8(h.TaskID)
	binary.NativeEndian.PutUint32(b[8:12], uint32(h.Status))
}

// Decode reads a network order header from the first Size bytes of b.
func Decode(b []byte) (Header, error) {
	if len(b) < Size {
		return Header{}, fmt.Errorf("%w: %d bytes", protocol.ErrShortHeader, len(b))
	}
	return ToHost(Raw(b)), nil
}

// Put writes h in network order into the first Size bytes of b.
func Put(b []byte, h Header) {
	PutRaw(b[:Size], ToNetwork(h))
}

// Encode returns h in network order.
func Encode(h Header) []byte {
	buf := make([]byte, Size)
	Put(buf, h)
	return buf
}

// StandardResponse builds a header-only response for task carrying status.
func StandardResponse(task Header, status protocol.Status) Header {
	return Header{
		LenBytes:  Size,
		SeqID:     task.SeqID,
		SubTaskID: task.SubTaskID,
		TaskID:    task.TaskID,
		Status:    status,
	}
}

// PayloadLen is the number of payload bytes the header declares.
func (h Header) PayloadLen() int {
	if h.LenBytes < Size {
		return 0
	}
	return int(h.LenBytes) - Size
}

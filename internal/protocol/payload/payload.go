package payload

import (
	"encoding/binary"
	"errors"
	"math/bits"
)

var ErrWordOutOfRange = errors.New("payload: word index out of range")

// Converter normalizes payload byte order in place. The same converter serves
// both directions.
type Converter func(p []byte)

var hostIsBigEndian = func() bool {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 1)
	return probe[1] == 1
}()

// Swap32 converts every whole 32-bit word of p between network and host order.
// Trailing bytes that do not form a word are left alone.
func Swap32(p []byte) {
	if hostIsBigEndian {
		return
	}
	for i := 0; i+4 <= len(p); i += 4 {
		w := binary.NativeEndian.Uint32(p[i : i+4])
		binary.NativeEndian.PutUint32(p[i:i+4], bits.ReverseBytes32(w))
	}
}

// Swap16 converts every whole 16-bit word of p between network and host order.
func Swap16(p []byte) {
	if hostIsBigEndian {
		return
	}
	for i := 0; i+2 <= len(p); i += 2 {
		w := binary.NativeEndian.Uint16(p[i : i+2])
		binary.NativeEndian.PutUint16(p[i:i+2], bits.ReverseBytes16(w))
	}
}

// Words is the number of whole 32-bit words in p.
func Words(p []byte) int {
	return len(p) / 4
}

// Word32 reads the i-th 32-bit word of a host order payload.
func Word32(p []byte, i int) (uint32, error) {
	if i < 0 || (i+1)*4 > len(p) {
		return 0, ErrWordOutOfRange
	}
	return binary.NativeEndian.Uint32(p[i*4 : i*4+4]), nil
}

// PutWord32 writes the i-th 32-bit word of a host order payload.
func PutWord32(p []byte, i int, v uint32) error {
	if i < 0 || (i+1)*4 > len(p) {
		return ErrWordOutOfRange
	}
	binary.NativeEndian.PutUint32(p[i*4:i*4+4], v)
	return nil
}

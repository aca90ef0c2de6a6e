package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/danmuck/ticd/internal/protocol/task"
	"github.com/rs/zerolog"
)

// DefaultPollTimeout bounds one Receive so a dispatch loop can observe
// cancellation between messages.
const DefaultPollTimeout = 100 * time.Millisecond

// MinMetaBytes holds a length prefix plus an unzoned IPv6 address and port.
const MinMetaBytes = 1 + 16 + 2

var (
	ErrMetaTooSmall = errors.New("udp: meta storage too small for peer address")
	ErrInvalidMeta  = errors.New("udp: meta does not hold a peer address")
)

// Transport serves one task per datagram. The sender address is stored in
// the envelope meta so the response goes back to it.
type Transport struct {
	conn        *net.UDPConn
	buf         []byte
	pollTimeout time.Duration
	logger      zerolog.Logger
}

type Option func(*Transport)

func WithPollTimeout(d time.Duration) Option {
	return func(t *Transport) { t.pollTimeout = d }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) { t.logger = logger }
}

// Listen binds addr and sizes its read buffer for limits.
func Listen(addr string, limits task.Limits, opts ...Option) (*Transport, error) {
	if limits.MetaBytes < MinMetaBytes {
		return nil, fmt.Errorf("%w: meta_bytes=%d, need at least %d", ErrMetaTooSmall, limits.MetaBytes, MinMetaBytes)
	}
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("udp: resolve %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("udp: listen %q: %w", addr, err)
	}
	t := &Transport{
		conn:        conn,
		buf:         make([]byte, limits.TaskBytes()+1),
		pollTimeout: DefaultPollTimeout,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

func (t *Transport) Addr() net.Addr {
	return t.conn.LocalAddr()
}

func (t *Transport) Close() error {
	return t.conn.Close()
}

// Receive reads one datagram. It returns 0 when the poll timeout passes with
// no data and -1 on socket or meta errors. A datagram larger than task
// storage is truncated, and a length beyond task storage is returned.
func (t *Transport) Receive(msg *task.Message) int {
	if t.pollTimeout > 0 {
		_ = t.conn.SetReadDeadline(time.Now().Add(t.pollTimeout))
	}
	n, from, err := t.conn.ReadFromUDPAddrPort(t.buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0
		}
		t.logger.Debug().Err(err).Msg("udp receive failed")
		return -1
	}
	meta, err := EncodeMeta(from, len(msg.Meta()))
	if err != nil {
		t.logger.Warn().Err(err).Str("peer", from.String()).Msg("udp meta encode failed")
		return -1
	}
	_ = msg.PopulateMeta(meta)

	stored := min(n, len(msg.Task().Bytes()))
	_ = msg.PopulateTask(t.buf[:stored])
	return n
}

// Send writes the meaningful task bytes back to the peer held in meta.
func (t *Transport) Send(msg *task.Message) {
	to, err := DecodeMeta(msg.Meta())
	if err != nil {
		t.logger.Warn().Err(err).Msg("udp send skipped")
		return
	}
	if _, err := t.conn.WriteToUDPAddrPort(msg.Task().Wire(), to); err != nil {
		t.logger.Warn().Err(err).Str("peer", to.String()).Msg("udp send failed")
	}
}

// EncodeMeta stores addr as a length-prefixed binary address.
func EncodeMeta(addr netip.AddrPort, size int) ([]byte, error) {
	raw, err := addr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if len(raw)+1 > size || len(raw) > 0xFF {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrMetaTooSmall, len(raw)+1, size)
	}
	out := make([]byte, len(raw)+1)
	out[0] = byte(len(raw))
	copy(out[1:], raw)
	return out, nil
}

func DecodeMeta(meta []byte) (netip.AddrPort, error) {
	if len(meta) == 0 || meta[0] == 0 || int(meta[0])+1 > len(meta) {
		return netip.AddrPort{}, ErrInvalidMeta
	}
	var addr netip.AddrPort
	if err := addr.UnmarshalBinary(meta[1 : 1+int(meta[0])]); err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: %v", ErrInvalidMeta, err)
	}
	return addr, nil
}

// Exchange sends one task to addr and waits for a single response datagram.
func Exchange(ctx context.Context, addr string, b []byte, timeout time.Duration) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("udp: dial %q: %w", addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)

	if _, err := conn.Write(b); err != nil {
		return nil, fmt.Errorf("udp: write: %w", err)
	}
	buf := make([]byte, 64*1024)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("udp: read: %w", err)
	}
	return buf[:n], nil
}

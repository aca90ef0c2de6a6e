package udp

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/danmuck/ticd/internal/dispatch"
	"github.com/danmuck/ticd/internal/protocol"
	"github.com/danmuck/ticd/internal/protocol/header"
	"github.com/danmuck/ticd/internal/protocol/task"
)

var _ dispatch.Transport = (*Transport)(nil)

func TestMetaRoundTrip(t *testing.T) {
	for _, s := range []string{"127.0.0.1:7400", "[::1]:9000", "[fe80::1%eth0]:53"} {
		addr := netip.MustParseAddrPort(s)
		meta, err := EncodeMeta(addr, task.DefaultMetaBytes)
		if err != nil {
			t.Fatalf("encode %s: %v", s, err)
		}
		padded := make([]byte, task.DefaultMetaBytes)
		copy(padded, meta)
		got, err := DecodeMeta(padded)
		if err != nil {
			t.Fatalf("decode %s: %v", s, err)
		}
		if got != addr {
			t.Fatalf("round trip mismatch: got=%s want=%s", got, addr)
		}
	}
}

func TestMetaErrors(t *testing.T) {
	if _, err := EncodeMeta(netip.MustParseAddrPort("[::1]:1"), 4); !errors.Is(err, ErrMetaTooSmall) {
		t.Fatalf("expected ErrMetaTooSmall, got %v", err)
	}
	if _, err := DecodeMeta(make([]byte, 8)); !errors.Is(err, ErrInvalidMeta) {
		t.Fatalf("expected ErrInvalidMeta, got %v", err)
	}
	if _, err := DecodeMeta([]byte{40, 1, 2}); !errors.Is(err, ErrInvalidMeta) {
		t.Fatalf("expected ErrInvalidMeta for overlong prefix, got %v", err)
	}
}

func TestExchangeAgainstEngine(t *testing.T) {
	e, err := dispatch.NewEngine(dispatch.WithIdleInterval(0))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	tr, err := Listen("127.0.0.1:0", e.Limits(), WithPollTimeout(10*time.Millisecond))
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, tr) }()
	defer func() {
		cancel()
		<-done
	}()

	probe := header.Encode(header.Header{LenBytes: header.Size, SeqID: 77, TaskID: protocol.TaskBootStatus})
	raw, err := Exchange(context.Background(), tr.Addr().String(), probe, 2*time.Second)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	h, err := header.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Status != protocol.StatusOK || h.SeqID != 77 || len(raw) != header.Size {
		t.Fatalf("unexpected response: %+v len=%d", h, len(raw))
	}

	oversized := make([]byte, e.Limits().TaskBytes()+8)
	copy(oversized, header.Encode(header.Header{LenBytes: uint32(len(oversized)), SeqID: 78, TaskID: protocol.TaskBootStatus}))
	raw, err = Exchange(context.Background(), tr.Addr().String(), oversized, 2*time.Second)
	if err != nil {
		t.Fatalf("exchange oversized: %v", err)
	}
	h, _ = header.Decode(raw)
	if h.Status != protocol.StatusHeaderLenError || h.SeqID != 78 {
		t.Fatalf("expected HEADER_LEN_ERROR for oversized datagram: %+v", h)
	}
}

func TestListenRejectsMetaTooSmallForPeer(t *testing.T) {
	limits := task.DefaultLimits()
	limits.MetaBytes = 4
	if _, err := Listen("127.0.0.1:0", limits); !errors.Is(err, ErrMetaTooSmall) {
		t.Fatalf("expected ErrMetaTooSmall, got %v", err)
	}

	limits.MetaBytes = MinMetaBytes
	tr, err := Listen("127.0.0.1:0", limits)
	if err != nil {
		t.Fatalf("listen with minimum meta: %v", err)
	}
	defer tr.Close()

	meta, err := EncodeMeta(netip.MustParseAddrPort("[2001:db8::1]:65535"), MinMetaBytes)
	if err != nil || len(meta) != MinMetaBytes {
		t.Fatalf("ipv6 peer should fit minimum meta exactly: len=%d err=%v", len(meta), err)
	}
}

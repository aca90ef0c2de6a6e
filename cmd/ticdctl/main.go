package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danmuck/ticd/internal/config"
	"github.com/danmuck/ticd/internal/protocol/header"
	"github.com/danmuck/ticd/internal/transport/udp"
)

const usage = `usage: ticdctl [flags] <command>

commands:
  probe                 query boot status (task 1)
  reset                 reset the application (task 2)
  init WORD...          send initialization data words (task 3)
  out N                 emit output command N, 0-31 (task 101)
  bank EN=VAL...        emit 1-4 bank commands (task 100)
`

func main() {
	addr := flag.String("addr", config.DefaultListenAddr, "ticdd UDP address")
	timeout := flag.Duration("timeout", 2*time.Second, "response timeout")
	seq := flag.Uint("seq", 1, "sequence id for the request")
	expect := flag.String("expect", "OK", "status name or code that counts as success")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *seq > 0xFFFF {
		fmt.Fprintf(os.Stderr, "ticdctl: seq %d out of range\n", *seq)
		os.Exit(2)
	}
	want, err := parseExpect(*expect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ticdctl: %v\n", err)
		os.Exit(2)
	}
	req, err := buildRequest(flag.Args(), uint16(*seq))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ticdctl: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	raw, err := udp.Exchange(context.Background(), *addr, req, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ticdctl: %v\n", err)
		os.Exit(1)
	}
	resp, err := header.Decode(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ticdctl: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(describe(resp))
	if resp.Status != want {
		os.Exit(1)
	}
}

func describe(h header.Header) string {
	return fmt.Sprintf("task=%s sub=%d seq=%d len=%d status=%s",
		h.TaskID, h.SubTaskID, h.SeqID, h.LenBytes, h.Status)
}

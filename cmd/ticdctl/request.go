package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/ticd/internal/commands"
	"github.com/danmuck/ticd/internal/protocol"
	"github.com/danmuck/ticd/internal/protocol/header"
)

var errUsage = errors.New("missing or unknown command")

// buildRequest encodes one task in network byte order from command line args.
func buildRequest(args []string, seq uint16) ([]byte, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	var (
		id    protocol.TaskID
		words []uint32
	)
	switch cmd, rest := args[0], args[1:]; cmd {
	case "probe":
		id = protocol.TaskBootStatus
	case "reset":
		id = protocol.TaskReset
	case "init":
		if len(rest) == 0 {
			return nil, fmt.Errorf("init: at least one word required")
		}
		for _, arg := range rest {
			w, err := parseWord(arg, 0xFFFFFFFF)
			if err != nil {
				return nil, fmt.Errorf("init: %w", err)
			}
			words = append(words, w)
		}
		id = protocol.TaskInitializationData
	case "out":
		if len(rest) != 1 {
			return nil, fmt.Errorf("out: exactly one value required")
		}
		w, err := parseWord(rest[0], commands.OutMax)
		if err != nil {
			return nil, fmt.Errorf("out: %w", err)
		}
		words = []uint32{w}
		id = commands.TaskOut
	case "bank":
		if len(rest) == 0 || len(rest) > commands.BankMaxEntries {
			return nil, fmt.Errorf("bank: 1-%d EN=VAL entries required", commands.BankMaxEntries)
		}
		for _, arg := range rest {
			en, val, ok := strings.Cut(arg, "=")
			if !ok {
				return nil, fmt.Errorf("bank: entry %q is not EN=VAL", arg)
			}
			enable, err := parseWord(en, commands.BankEnableMax)
			if err != nil {
				return nil, fmt.Errorf("bank: enable: %w", err)
			}
			value, err := parseWord(val, commands.BankValueMax)
			if err != nil {
				return nil, fmt.Errorf("bank: value: %w", err)
			}
			words = append(words, enable, value)
		}
		id = commands.TaskBank
	default:
		return nil, fmt.Errorf("%w: %q", errUsage, cmd)
	}

	out := header.Encode(header.Header{
		LenBytes: uint32(header.Size + 4*len(words)),
		SeqID:    seq,
		TaskID:   id,
	})
	for _, w := range words {
		out = binary.BigEndian.AppendUint32(out, w)
	}
	return out, nil
}

func parseWord(s string, max uint64) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, err
	}
	if v > max {
		return 0, fmt.Errorf("%d exceeds %d", v, max)
	}
	return uint32(v), nil
}

// parseExpect resolves the -expect flag to the status that counts as success.
func parseExpect(s string) (protocol.Status, error) {
	status, ok := protocol.ParseStatus(s)
	if !ok {
		return 0, fmt.Errorf("unknown status %q", s)
	}
	return status, nil
}

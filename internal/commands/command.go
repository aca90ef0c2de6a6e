package commands

import (
	"fmt"

	"github.com/danmuck/ticd/internal/protocol"
	"github.com/rs/zerolog"
)

const (
	TaskBank protocol.TaskID = 100
	TaskOut  protocol.TaskID = 101
)

// Command ids stored in bits 28-31 of a command word.
const (
	CommandIDBank uint32 = 0b0000
	CommandIDOut  uint32 = 0b0001

	commandIDShift = 28
)

// Field limits.
const (
	OutMax         = 31
	BankEnableMax  = 15
	BankValueMax   = 255
	BankMaxEntries = 4

	outMask        = 0x1F
	bankEnableMask = 0x0F
	bankValueMask  = 0xFF
	bankValueShift = 8
)

func OutCommand(out uint32) uint32 {
	return CommandIDOut<<commandIDShift | out&outMask
}

func BankCommand(enable, value uint32) uint32 {
	return CommandIDBank<<commandIDShift | enable&bankEnableMask | (value&bankValueMask)<<bankValueShift
}

// Kind names the command encoded in word.
func Kind(word uint32) string {
	switch word >> commandIDShift {
	case CommandIDBank:
		return "bank"
	case CommandIDOut:
		return "out"
	default:
		return fmt.Sprintf("cmd%d", word>>commandIDShift)
	}
}

// Sink receives command words.
type Sink interface {
	Emit(word uint32) error
}

type SinkFunc func(word uint32) error

func (f SinkFunc) Emit(word uint32) error {
	return f(word)
}

// LogSink writes each command word to a logger.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Emit(word uint32) error {
	s.Logger.Info().
		Str("kind", Kind(word)).
		Str("word", fmt.Sprintf("0x%08X", word)).
		Msg("command emitted")
	return nil
}

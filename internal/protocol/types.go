package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the outcome code carried in a response header.
type Status uint32

// Standard status codes. Values are ordinal; 9-15 are reserved.
const (
	StatusOK Status = iota
	StatusResetting
	StatusTaskInvalid
	StatusNotReady
	StatusHeaderLenError
	StatusHeaderIDError
	StatusHeaderSubIDError
	StatusPayloadError
	StatusExecutionError
)

// StatusApplicationBase is the first status code free for application use.
const StatusApplicationBase Status = 16

var statusNames = map[Status]string{
	StatusOK:               "OK",
	StatusResetting:        "RESETTING",
	StatusTaskInvalid:      "TASK_INVALID",
	StatusNotReady:         "NOT_READY",
	StatusHeaderLenError:   "HEADER_LEN_ERROR",
	StatusHeaderIDError:    "HEADER_ID_ERROR",
	StatusHeaderSubIDError: "HEADER_SUB_ID_ERROR",
	StatusPayloadError:     "PAYLOAD_ERROR",
	StatusExecutionError:   "EXECUTION_ERROR",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	if s.Reserved() {
		return fmt.Sprintf("RESERVED%d", uint32(s))
	}
	return fmt.Sprintf("APP%d", uint32(s))
}

// Reserved reports whether s is in the reserved standard range.
func (s Status) Reserved() bool {
	return s > StatusExecutionError && s < StatusApplicationBase
}

// ParseStatus resolves a standard status name, case-insensitively, or a
// decimal code.
func ParseStatus(name string) (Status, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for code, n := range statusNames {
		if n == name {
			return code, true
		}
	}
	if v, err := strconv.ParseUint(name, 10, 32); err == nil {
		return Status(v), true
	}
	return 0, false
}

// TaskID is the primary routing key into the task table.
type TaskID uint8

// Standard task identifiers. 0 and 4-15 are reserved.
const (
	TaskReserved0          TaskID = 0
	TaskBootStatus         TaskID = 1
	TaskReset              TaskID = 2
	TaskInitializationData TaskID = 3
)

// TaskApplicationBase is the first task identifier free for application use.
const TaskApplicationBase TaskID = 16

func (id TaskID) String() string {
	switch id {
	case TaskBootStatus:
		return "boot-status"
	case TaskReset:
		return "reset"
	case TaskInitializationData:
		return "initialization-data"
	}
	if id.Reserved() {
		return fmt.Sprintf("reserved%d", uint8(id))
	}
	return fmt.Sprintf("task%d", uint8(id))
}

// Reserved reports whether id is held back for future standard tasks.
func (id TaskID) Reserved() bool {
	return id == TaskReserved0 || (id > TaskInitializationData && id < TaskApplicationBase)
}

// Standard reports whether id is one of the framework-defined tasks.
func (id TaskID) Standard() bool {
	return id == TaskBootStatus || id == TaskReset || id == TaskInitializationData
}

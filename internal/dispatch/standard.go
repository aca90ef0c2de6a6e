package dispatch

import (
	"github.com/danmuck/ticd/internal/protocol"
	"github.com/danmuck/ticd/internal/protocol/header"
	"github.com/danmuck/ticd/internal/protocol/task"
)

// Standard tasks are header only with sub-task id 0.
const (
	standardTaskLen   = header.Size
	standardSubTaskID = 0
)

func validateStandardHeader(h header.Header) protocol.Status {
	if h.LenBytes != standardTaskLen {
		return protocol.StatusHeaderLenError
	}
	if h.SubTaskID != standardSubTaskID {
		return protocol.StatusHeaderSubIDError
	}
	return protocol.StatusOK
}

// StatusProbeHandler answers boot-status probes with OK or NOT_READY.
func StatusProbeHandler(ready func() bool) Handler {
	return HandlerFunc(func(req *task.Task, resp *task.Task) {
		h := req.Header()
		status := validateStandardHeader(h)
		if status == protocol.StatusOK && !ready() {
			status = protocol.StatusNotReady
		}
		resp.SetHeader(header.StandardResponse(h, status))
	})
}

// ResetHandler builds the reset response and then runs reset, which may not
// return. The response is complete before reset is called.
func ResetHandler(reset func()) Handler {
	return HandlerFunc(func(req *task.Task, resp *task.Task) {
		h := req.Header()
		resp.SetHeader(header.StandardResponse(h, validateStandardHeader(h)))
		reset()
	})
}

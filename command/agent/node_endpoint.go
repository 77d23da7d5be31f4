package agent

import (
	"net/http"
	"time"

	"github.com/ugorji/go/codec"
)

// nodeTerminatedRequest is the request body accepted by the node-terminated
// endpoint, allowing external lifecycle hooks to report terminations the
// provider poll has not yet observed.
type nodeTerminatedRequest struct {
	CreationTime time.Time `json:"creation_time"`
	InstanceType string    `json:"instance_type"`
}

// NodeTerminatedRequest reports a terminated node to the running scaling
// policy so that its lifetime and spend are accounted for.
func (s *HTTPServer) NodeTerminatedRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != "POST" && req.Method != "PUT" {
		return nil, CodedError(405, ErrInvalidMethod)
	}

	if s.agent.terminationHandler == nil {
		return nil, CodedError(501, "the active scaling policy does not track node terminations")
	}

	var body nodeTerminatedRequest
	dec := codec.NewDecoder(req.Body, JSONHandle)
	if err := dec.Decode(&body); err != nil {
		return nil, CodedError(400, err.Error())
	}
	if body.InstanceType == "" {
		return nil, CodedError(400, "instance_type is required")
	}
	if body.CreationTime.IsZero() {
		return nil, CodedError(400, "creation_time is required")
	}

	s.agent.terminationHandler(body.CreationTime, body.InstanceType)
	resp.WriteHeader(http.StatusNoContent)
	return nil, nil
}

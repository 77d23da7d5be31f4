package agent

import (
	"net/http"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
)

// StatusRequest is used to perform the Status.Status API request.
func (s *HTTPServer) StatusRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != "GET" {
		return nil, CodedError(405, ErrInvalidMethod)
	}

	var status structs.StatusResponse
	if err := s.agent.RPC("Status.Status", &status); err != nil {
		return nil, err
	}
	return status, nil
}

// PolicyRequest is used to perform the Status.Policy API request.
func (s *HTTPServer) PolicyRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != "GET" {
		return nil, CodedError(405, ErrInvalidMethod)
	}

	var policy structs.PolicyStatus
	if err := s.agent.RPC("Status.Policy", &policy); err != nil {
		return nil, err
	}
	return policy, nil
}

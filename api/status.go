package api

import "github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"

// Status is used to query all status related endpoints.
type Status struct {
	client *Client
}

// Status returns a handle on the status related endpoints.
func (c *Client) Status() *Status {
	return &Status{client: c}
}

// Status is used to query general information regarding the running agent,
// including its version, leadership and failsafe state.
func (s *Status) Status() (structs.StatusResponse, error) {
	var resp structs.StatusResponse

	err := s.client.query("/v1/status", &resp)
	if err != nil {
		return resp, err
	}

	return resp, nil
}

// Policy is used to query the state of the active scaling policy.
func (s *Status) Policy() (structs.PolicyStatus, error) {
	var resp structs.PolicyStatus

	err := s.client.query("/v1/policy", &resp)
	if err != nil {
		return resp, err
	}

	return resp, nil
}

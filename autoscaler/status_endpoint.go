package autoscaler

import (
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/version"
)

// Status endpoint is used to get information on the server status.
type Status struct {
	srv *Server
}

// Status returns the daemon-wide status view.
func (s *Status) Status(args interface{}, reply *structs.StatusResponse) error {
	reply.Version = version.Get()
	reply.Leader = s.srv.candidate.isLeader()
	reply.Failsafe = s.srv.runner.state.FailsafeMode
	return nil
}

// Policy returns the point-in-time view of the active scaling policy.
func (s *Status) Policy(args interface{}, reply *structs.PolicyStatus) error {
	*reply = s.srv.runner.Status()
	return nil
}

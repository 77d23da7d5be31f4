package autoscaler

import (
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"reflect"
	"time"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

var (
	// DefaultRPCAddr is the default bind address and port for the RPC
	// listener.
	DefaultRPCAddr = &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1314}
)

// Server is responsible for running the RPC layer, the leader election and
// the scaling runner.
type Server struct {
	// candidate is our LeaderCandidate for the runner instance.
	candidate *LeaderCandidate

	// config is the Config that created this Server. It is used internally
	// to construct other objects and pass data.
	config *structs.Config

	runner *Runner

	// endpoints represents the API endpoints.
	endpoints endpoints

	rpcAdvertise net.Addr
	rpcListener  net.Listener
	rpcServer    *rpc.Server

	shutdown     bool
	shutdownChan chan struct{}
}

// endpoints represents the API endpoints.
type endpoints struct {
	Status *Status
}

type inmemCodec struct {
	method string
	args   interface{}
	reply  interface{}
	err    error
}

// NewServer is the main entry point into the daemon and launches processes
// based on the configuration.
func NewServer(config *structs.Config, runner *Runner) (*Server, error) {

	s := &Server{
		config:       config,
		runner:       runner,
		rpcServer:    rpc.NewServer(),
		shutdownChan: make(chan struct{}),
	}

	// Setup our LeaderCandidate object for leader elections and session
	// renewal.
	leaderKey := s.config.ConsulKeyRoot + "/" + "leader"
	s.candidate = newLeaderCandidate(s.config.ConsulClient, leaderKey,
		leaderLockTimeout)
	go s.leaderTicker()

	// Launch our scaling main ticker function.
	go s.scalingTicker()

	if err := s.setupRPC(); err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("failed to start RPC layer: %v", err)
	}

	// Start the RPC listeners
	go s.listen()
	logging.Info("core/server: the RPC server has started and is listening "+
		"at %v", DefaultRPCAddr)

	return s, nil
}

// Shutdown halts the execution of the server.
func (s *Server) Shutdown() {
	s.candidate.endCampaign()

	// Shutdown the RPC listener.
	if s.rpcListener != nil {
		logging.Info("core/server: shutting down RPC server at %v",
			s.rpcListener.Addr())
		s.rpcListener.Close()
	}

	s.shutdown = true
	close(s.shutdownChan)
}

func (s *Server) leaderTicker() {
	ticker := time.NewTicker(
		time.Second * time.Duration(leaderElectionInterval),
	)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Perform the leadership locking and continue if we have
			// confirmed that we are running as the leader.
			s.candidate.leaderElection()
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *Server) scalingTicker() {
	ticker := time.NewTicker(
		time.Second * time.Duration(s.config.ScalingInterval),
	)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.candidate.isLeader() {
				s.runner.Cycle()
			} else {
				logging.Debug("core/server: not running on the known leader, " +
					"no scaling evaluations will be performed")
			}
		case <-s.shutdownChan:
			return
		}
	}
}

// setupRPC is used to setup our endpoints and register the handlers as well
// as setup the RPC listener.
func (s *Server) setupRPC() error {

	s.endpoints.Status = &Status{s}
	s.rpcServer.Register(s.endpoints.Status)

	list, err := net.ListenTCP("tcp", DefaultRPCAddr)
	if err != nil {
		return err
	}
	s.rpcListener = list

	s.rpcAdvertise = s.rpcListener.Addr()

	// Verify that we have a usable advertise address
	addr, ok := s.rpcAdvertise.(*net.TCPAddr)
	if !ok {
		list.Close()
		return fmt.Errorf("RPC advertise address is not a TCP Address: %v", addr)
	}
	if addr.IP.IsUnspecified() {
		list.Close()
		return fmt.Errorf("RPC advertise address is not advertisable: %v", addr)
	}

	return nil
}

func (i *inmemCodec) ReadRequestHeader(req *rpc.Request) error {
	req.ServiceMethod = i.method
	return nil
}

func (i *inmemCodec) ReadRequestBody(args interface{}) error {
	return nil
}

func (i *inmemCodec) WriteResponse(resp *rpc.Response, reply interface{}) error {
	if resp.Error != "" {
		i.err = errors.New(resp.Error)
		return nil
	}
	sourceValue := reflect.Indirect(reflect.Indirect(reflect.ValueOf(reply)))
	dst := reflect.Indirect(reflect.Indirect(reflect.ValueOf(i.reply)))
	dst.Set(sourceValue)
	return nil
}

func (i *inmemCodec) Close() error {
	return nil
}

// RPC is used to make an RPC call.
func (s *Server) RPC(method string, reply interface{}) error {
	codec := &inmemCodec{
		method: method,
		reply:  reply,
	}
	if err := s.rpcServer.ServeRequest(codec); err != nil {
		return err
	}
	return codec.err
}

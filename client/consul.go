package client

import (
	"encoding/json"
	"fmt"
	"time"

	metrics "github.com/armon/go-metrics"
	consul "github.com/hashicorp/consul/api"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// The client object is a wrapper to the Consul client provided by the Consul
// API library.
type consulClient struct {
	consul *consul.Client
	token  string
}

// NewConsulClient is used to construct a new Consul client using the default
// configuration and supporting the ability to specify a Consul API address
// endpoint in the form of address:port.
func NewConsulClient(addr, token string) (structs.ConsulClient, error) {
	config := consul.DefaultConfig()
	config.Address = addr

	c, err := consul.NewClient(config)
	if err != nil {
		return nil, err
	}

	return &consulClient{consul: c, token: token}, nil
}

// AcquireLeadership attempts to acquire a Consul leadership lock using the
// provided session. If the lock is already taken this returns false in a
// show that there is already a leader.
func (c *consulClient) AcquireLeadership(key, session string) bool {
	pair := &consul.KVPair{
		Key:     key,
		Session: session,
	}

	acquired, _, err := c.consul.KV().Acquire(pair, c.writeOptions())
	if err != nil {
		logging.Error("client/consul: an error occurred while attempting to "+
			"acquire the leadership lock at %v: %v", key, err)
		return false
	}

	return acquired
}

// CreateSession creates a Consul session for use in the leadership locking
// process and spawns off the renewal of the session in order to ensure
// leadership can be maintained.
func (c *consulClient) CreateSession(ttl int, renewChan chan struct{}) (string, error) {
	entry := &consul.SessionEntry{
		TTL:      fmt.Sprintf("%vs", ttl),
		Behavior: consul.SessionBehaviorDelete,
	}

	session, _, err := c.consul.Session().Create(entry, c.writeOptions())
	if err != nil {
		return "", err
	}

	go func() {
		err := c.consul.Session().RenewPeriodic(entry.TTL, session,
			c.writeOptions(), renewChan)
		if err != nil {
			logging.Debug("client/consul: stopped renewing session %v: %v",
				session, err)
		}
	}()

	return session, nil
}

// ResignLeadership attempts to remove the leadership lock upon shutdown of
// the daemon. If this is unsuccessful there is not too much we can do
// therefore there is no return.
func (c *consulClient) ResignLeadership(key, session string) {
	pair := &consul.KVPair{
		Key:     key,
		Session: session,
	}

	released, _, err := c.consul.KV().Release(pair, c.writeOptions())
	if err != nil || !released {
		logging.Error("client/consul: an error occurred while attempting to "+
			"release the leadership lock at %v: %v", key, err)
	}
}

// ReadState attempts to read a state tracking object from the Consul
// Key/Value Store, reporting whether persisted data was found. On any
// failure the supplied object is left unmodified and the caller falls back
// to its in-memory state.
func (c *consulClient) ReadState(path string, state interface{}) bool {
	defer metrics.MeasureSince([]string{"consul", "state_read"}, time.Now())

	logging.Debug("client/consul: attempting to load state tracking "+
		"information from Consul at location %v", path)

	pair, _, err := c.consul.KV().Get(path, c.queryOptions())
	if err != nil {
		logging.Error("client/consul: an error occurred while attempting to "+
			"read state information from Consul at location %v: %v", path, err)
		return false
	}

	if pair == nil {
		logging.Debug("client/consul: no state tracking information is "+
			"present in Consul at location %v, falling back to in-memory "+
			"state", path)
		return false
	}

	if err := json.Unmarshal(pair.Value, state); err != nil {
		logging.Error("client/consul: an error occurred while attempting to "+
			"deserialize state retrieved from persistent storage: %v", err)
		return false
	}

	logging.Debug("client/consul: successfully loaded state tracking "+
		"information from Consul at location %v", path)

	return true
}

// PersistState is responsible for persistently storing a state tracking
// object in the Consul Key/Value Store.
func (c *consulClient) PersistState(path string, state interface{}) error {
	defer metrics.MeasureSince([]string{"consul", "state_write"}, time.Now())

	logging.Debug("client/consul: attempting to persistently store state "+
		"in Consul at location %v", path)

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("client/consul: an error occurred when attempting "+
			"to serialize state for persistent storage: %v", err)
	}

	pair := &consul.KVPair{
		Key:   path,
		Value: payload,
	}

	if _, err := c.consul.KV().Put(pair, c.writeOptions()); err != nil {
		return fmt.Errorf("client/consul: an error occurred when attempting "+
			"to write state data to Consul: %v", err)
	}

	logging.Debug("client/consul: successfully stored state in Consul at "+
		"location %v", path)

	return nil
}

func (c *consulClient) queryOptions() *consul.QueryOptions {
	opts := &consul.QueryOptions{}
	if c.token != "" {
		opts.Token = c.token
	}
	return opts
}

func (c *consulClient) writeOptions() *consul.WriteOptions {
	opts := &consul.WriteOptions{}
	if c.token != "" {
		opts.Token = c.token
	}
	return opts
}

package structs

// The ConsulClient interface is used to provide common method signatures for
// interacting with the Consul API.
type ConsulClient interface {
	// AcquireLeadership attempts to acquire a Consul leadership lock using
	// the provided session. If the lock is already taken this returns false
	// in a show that there is already a leader.
	AcquireLeadership(key, session string) bool

	// CreateSession creates a Consul session for use in the leadership
	// locking process and spawns off the renewal of the session in order to
	// ensure leadership can be maintained.
	CreateSession(ttl int, renewChan chan struct{}) (string, error)

	// ResignLeadership attempts to remove the leadership lock upon shutdown
	// of the daemon. If this is unsuccessful there is not too much we can do
	// therefore there is no return.
	ResignLeadership(key, session string)

	// ReadState attempts to read a state tracking object from the Consul
	// Key/Value Store, reporting whether persisted data was found. On any
	// failure the supplied object is left unmodified.
	ReadState(path string, state interface{}) bool

	// PersistState is responsible for persistently storing a state tracking
	// object in the Consul Key/Value Store.
	PersistState(path string, state interface{}) error
}

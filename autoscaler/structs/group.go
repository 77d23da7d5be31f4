package structs

import (
	"sync"
	"time"
)

// Group represents a single scalable node group backed by a cloud
// autoscaling group. The decision core reads its capacity fields and issues
// scale requests through the attached scaling provider; the fields themselves
// are maintained by the scaling provider and the cluster state collector.
type Group struct {
	// Name is the cloud autoscaling group name.
	Name string `json:"name"`

	// Region is the cloud region the group resides in.
	Region string `json:"region"`

	// InstanceType is the instance type launched by the group. Used when
	// looking up per-unit cost reference data.
	InstanceType string `json:"instance_type"`

	// UnitCapacity is the schedulable resource footprint of one fresh
	// instance in the group.
	UnitCapacity Resource `json:"unit_capacity"`

	// ActualCapacity is the number of instances currently in service.
	ActualCapacity int `json:"actual_capacity"`

	// DesiredCapacity is the capacity most recently requested from the cloud
	// provider. ActualCapacity <= DesiredCapacity <= MaxSize is the steady
	// state the decision core preserves.
	DesiredCapacity int `json:"desired_capacity"`

	// MaxSize is the hard ceiling on the group's capacity.
	MaxSize int `json:"max_size"`

	// Priority orders candidate groups during the decision procedure; lower
	// values are considered first.
	Priority int `json:"priority"`

	// Labels are matched against pod node selectors when identifying the
	// groups able to host a given group key.
	Labels map[string]string `json:"labels"`

	// Taints repel pods that do not carry a matching toleration.
	Taints []Taint `json:"taints"`

	// UnschedulableNodes indicates the group currently contains cordoned
	// nodes and needs attention regardless of its nominal ceiling state.
	UnschedulableNodes bool `json:"unschedulable_nodes"`

	// CooldownUntil is the group-local cooldown deadline, set by the scaling
	// provider after a failed or slow scale operation.
	CooldownUntil time.Time `json:"cooldown_until"`

	// Provider is the scaling provider that executes capacity changes for
	// this group.
	Provider ScalingProvider `json:"-"`
}

// TimedOut reports the group-local cooldown signal. This is independent of
// the process-wide timeout tracker.
func (g *Group) TimedOut() bool {
	return time.Now().Before(g.CooldownUntil)
}

// ToleratesTaints reports whether the pod tolerates every taint on the
// group. A group with no taints accepts all pods.
func (g *Group) ToleratesTaints(pod *Pod) bool {
	for _, taint := range g.Taints {
		tolerated := false
		for _, toleration := range pod.Tolerations {
			if toleration.Tolerates(taint) {
				tolerated = true
				break
			}
		}
		if !tolerated {
			return false
		}
	}
	return true
}

// Scale issues an asynchronous capacity change against the group's scaling
// provider and returns a handle that resolves when the provider call
// completes. The handle is only valid for the duration of one decision
// cycle.
func (g *Group) Scale(newCapacity int) *AsyncOperation {
	op := NewAsyncOperation(g, newCapacity)

	go func() {
		op.Finish(g.Provider.Scale(g, newCapacity))
	}()

	return op
}

// AsyncOperation tracks one in-flight scale call. Operations resolve exactly
// once; callbacks registered after resolution run immediately in the caller's
// goroutine.
type AsyncOperation struct {
	// Group is the node group the operation was issued against.
	Group *Group

	// NewCapacity is the desired capacity requested from the provider.
	NewCapacity int

	// UnitsRequested is the number of additional capacity units the request
	// represents.
	UnitsRequested int

	// AssignedPods holds, per provisional capacity unit, the pods the
	// allocator assigned to it. Used when dispatching scale notifications.
	AssignedPods [][]*Pod

	lock      sync.Mutex
	done      bool
	doneChan  chan struct{}
	err       error
	callbacks []func(*AsyncOperation)
}

// NewAsyncOperation returns an unresolved operation handle for the supplied
// group and requested capacity.
func NewAsyncOperation(group *Group, newCapacity int) *AsyncOperation {
	return &AsyncOperation{
		Group:       group,
		NewCapacity: newCapacity,
		doneChan:    make(chan struct{}),
	}
}

// Finish resolves the operation with the outcome of the provider call and
// dispatches any registered callbacks. Subsequent calls are ignored.
func (op *AsyncOperation) Finish(err error) {
	op.lock.Lock()
	if op.done {
		op.lock.Unlock()
		return
	}
	op.done = true
	op.err = err
	callbacks := op.callbacks
	op.callbacks = nil
	op.lock.Unlock()

	// Callbacks run before waiters are released so that a cycle blocked in
	// Wait observes all notification side effects.
	for _, callback := range callbacks {
		callback(op)
	}

	close(op.doneChan)
}

// AddDoneCallback registers a function to run once the operation resolves.
// If the operation has already resolved the callback runs immediately.
func (op *AsyncOperation) AddDoneCallback(callback func(*AsyncOperation)) {
	op.lock.Lock()
	if !op.done {
		op.callbacks = append(op.callbacks, callback)
		op.lock.Unlock()
		return
	}
	op.lock.Unlock()

	callback(op)
}

// Wait blocks until the operation resolves and returns its outcome.
func (op *AsyncOperation) Wait() error {
	<-op.doneChan

	op.lock.Lock()
	defer op.lock.Unlock()
	return op.err
}

// Err returns the operation outcome without blocking. The result is only
// meaningful once the operation has resolved.
func (op *AsyncOperation) Err() error {
	op.lock.Lock()
	defer op.lock.Unlock()
	return op.err
}

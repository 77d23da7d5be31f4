package testutil

import (
	"encoding/json"
	"sync"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/notifier"
)

// ScaleCall records one capacity change requested from a FakeScalingProvider.
type ScaleCall struct {
	GroupName   string
	NewCapacity int
}

// FakeScalingProvider records scale requests and resolves them with a
// configurable outcome.
type FakeScalingProvider struct {
	// Err is returned from every Scale call when set.
	Err error

	lock  sync.Mutex
	calls []ScaleCall
}

// Name returns the name of the scaling provider.
func (f *FakeScalingProvider) Name() string {
	return "fake"
}

// SafetyCheck always passes.
func (f *FakeScalingProvider) SafetyCheck(group *structs.Group) bool {
	return true
}

// Scale records the requested capacity change.
func (f *FakeScalingProvider) Scale(group *structs.Group, newCapacity int) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.calls = append(f.calls, ScaleCall{
		GroupName:   group.Name,
		NewCapacity: newCapacity,
	})
	return f.Err
}

// Refresh is a no-op.
func (f *FakeScalingProvider) Refresh(group *structs.Group) error {
	return nil
}

// Calls returns the recorded scale requests.
func (f *FakeScalingProvider) Calls() []ScaleCall {
	f.lock.Lock()
	defer f.lock.Unlock()

	calls := make([]ScaleCall, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// FakeNotifier records the messages dispatched to it.
type FakeNotifier struct {
	lock          sync.Mutex
	ScaleMessages []notifier.ScaleMessage
	Failures      []notifier.FailureMessage
}

// Name returns the name of the notification endpoint.
func (f *FakeNotifier) Name() string {
	return "fake"
}

// NotifyScale records the scale notification.
func (f *FakeNotifier) NotifyScale(message notifier.ScaleMessage) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.ScaleMessages = append(f.ScaleMessages, message)
}

// SendNotification records the failure notification.
func (f *FakeNotifier) SendNotification(message notifier.FailureMessage) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.Failures = append(f.Failures, message)
}

// FakeConsulClient is an in-memory structs.ConsulClient, storing persisted
// state as JSON keyed by path.
type FakeConsulClient struct {
	// Leader controls the result of leadership acquisition attempts.
	Leader bool

	lock sync.Mutex
	kv   map[string][]byte
}

// AcquireLeadership reports the configured leadership outcome.
func (f *FakeConsulClient) AcquireLeadership(key, session string) bool {
	return f.Leader
}

// CreateSession hands out a static session identifier.
func (f *FakeConsulClient) CreateSession(ttl int, renewChan chan struct{}) (string, error) {
	return "fake-session", nil
}

// ResignLeadership is a no-op.
func (f *FakeConsulClient) ResignLeadership(key, session string) {}

// ReadState decodes previously persisted state for the path, reporting
// whether any was found.
func (f *FakeConsulClient) ReadState(path string, state interface{}) bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	data, ok := f.kv[path]
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, state); err != nil {
		return false
	}
	return true
}

// PersistState stores the JSON encoding of the state object under the path.
func (f *FakeConsulClient) PersistState(path string, state interface{}) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if f.kv == nil {
		f.kv = make(map[string][]byte)
	}
	f.kv[path] = data
	return nil
}

// FakeKubeClient serves a fixed set of pending pods.
type FakeKubeClient struct {
	// Pods is returned from every PendingPods call.
	Pods structs.PendingPods

	// Err is returned from every PendingPods call when set.
	Err error
}

// PendingPods returns the configured pods and error.
func (f *FakeKubeClient) PendingPods() (structs.PendingPods, error) {
	return f.Pods, f.Err
}

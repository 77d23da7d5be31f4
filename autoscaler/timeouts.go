package autoscaler

import (
	"sync"
	"time"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// AutoscalingTimeouts is the process-wide record of node groups cooling down
// after a failed or stalled scale operation. The decision procedure only
// queries the tracker; entries are recorded by the cycle runner when it
// observes scale failures or stalled capacity changes.
type AutoscalingTimeouts struct {
	lock     sync.RWMutex
	cooldown time.Duration
	timeouts map[string]time.Time
}

// NewAutoscalingTimeouts returns a tracker whose entries expire after the
// supplied cooldown period.
func NewAutoscalingTimeouts(cooldown time.Duration) *AutoscalingTimeouts {
	return &AutoscalingTimeouts{
		cooldown: cooldown,
		timeouts: make(map[string]time.Time),
	}
}

// IsTimedOut reports whether the supplied group is currently under a
// process-wide scaling cooldown.
func (t *AutoscalingTimeouts) IsTimedOut(group *structs.Group) bool {
	t.lock.RLock()
	defer t.lock.RUnlock()

	deadline, ok := t.timeouts[group.Name]
	if !ok {
		return false
	}
	return time.Now().Before(deadline)
}

// RecordFailure places the supplied group under cooldown for the configured
// period.
func (t *AutoscalingTimeouts) RecordFailure(group *structs.Group) {
	t.lock.Lock()
	defer t.lock.Unlock()

	deadline := time.Now().Add(t.cooldown)
	t.timeouts[group.Name] = deadline

	logging.Warning("core/timeouts: group %v placed under scaling cooldown "+
		"until %v", group.Name, deadline)
}

// Clear removes any cooldown entry for the supplied group.
func (t *AutoscalingTimeouts) Clear(group *structs.Group) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.timeouts[group.Name]; ok {
		delete(t.timeouts, group.Name)
		logging.Debug("core/timeouts: scaling cooldown cleared for group %v",
			group.Name)
	}
}

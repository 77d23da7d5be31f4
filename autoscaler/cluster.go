package autoscaler

import (
	"sort"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/notifier"
)

// StandardCluster is the cluster facade handed to the scaling policies. It
// carries the per-cycle selector index alongside the process-wide timeout
// tracker and notification fan-out.
type StandardCluster struct {
	overProvision int
	timeouts      *AutoscalingTimeouts
	notifier      notifier.Notifier

	// selectorsByKey resolves a group key back to the node selectors the
	// pods under it carry. Rebuilt from the pending pods at the start of
	// every decision cycle.
	selectorsByKey map[uint64]map[string]string
}

// NewStandardCluster returns a cluster facade.
func NewStandardCluster(overProvision int, timeouts *AutoscalingTimeouts,
	n notifier.Notifier) *StandardCluster {

	return &StandardCluster{
		overProvision:  overProvision,
		timeouts:       timeouts,
		notifier:       n,
		selectorsByKey: make(map[uint64]map[string]string),
	}
}

// UpdateSelectors rebuilds the selector index from this cycle's pending pods.
func (c *StandardCluster) UpdateSelectors(pendingPods structs.PendingPods) {
	c.selectorsByKey = make(map[uint64]map[string]string, len(pendingPods))

	for selectorsHash, pods := range pendingPods {
		if len(pods) > 0 {
			c.selectorsByKey[selectorsHash] = pods[0].NodeSelectors
		}
	}
}

// GroupsForKey returns the groups whose labels satisfy every node selector
// behind the supplied group key. An unknown key matches nothing.
func (c *StandardCluster) GroupsForKey(groups []*structs.Group,
	selectorsHash uint64) []*structs.Group {

	selectors, ok := c.selectorsByKey[selectorsHash]
	if !ok {
		return nil
	}

	var matched []*structs.Group
	for _, group := range groups {
		if labelsSatisfy(group.Labels, selectors) {
			matched = append(matched, group)
		}
	}
	return matched
}

// PrioritizeGroups orders candidate groups by their configured priority,
// lowest first, with the group name as a stable tie breaker.
func (c *StandardCluster) PrioritizeGroups(groups []*structs.Group) []*structs.Group {
	sorted := make([]*structs.Group, len(groups))
	copy(sorted, groups)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// OverProvision returns the number of spare units added to every estimate.
func (c *StandardCluster) OverProvision() int {
	return c.overProvision
}

// AutoscalingTimeouts returns the process-wide timeout tracker.
func (c *StandardCluster) AutoscalingTimeouts() structs.TimeoutTracker {
	return c.timeouts
}

// Notifier returns the notification fan-out.
func (c *StandardCluster) Notifier() notifier.Notifier {
	return c.notifier
}

// labelsSatisfy reports whether the labels carry every selector with a
// matching value.
func labelsSatisfy(labels, selectors map[string]string) bool {
	for key, value := range selectors {
		if labels[key] != value {
			return false
		}
	}
	return true
}

package structs

import (
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/notifier"
)

// TimeoutTracker is the process-wide record of node groups cooling down
// after a failed or stalled scale operation. The decision core only queries
// the tracker; entries are maintained by the cluster state collector.
type TimeoutTracker interface {
	// IsTimedOut reports whether the supplied group is currently under a
	// process-wide scaling cooldown.
	IsTimedOut(*Group) bool
}

// Cluster is the facade through which the decision core reaches the cluster
// it scales. The facade is consumed, never owned: implementations live with
// the agent and the test fakes.
type Cluster interface {
	// PrioritizeGroups orders candidate node groups for the decision
	// procedure, most preferred first.
	PrioritizeGroups([]*Group) []*Group

	// GroupsForKey filters the supplied groups down to those able to host
	// pods carrying the given group key.
	GroupsForKey([]*Group, uint64) []*Group

	// OverProvision is the configured slack, in capacity units, added on top
	// of the computed need for every scale request.
	OverProvision() int

	// AutoscalingTimeouts returns the process-wide scaling cooldown tracker.
	AutoscalingTimeouts() TimeoutTracker

	// Notifier returns the notification backend scale events are dispatched
	// to.
	Notifier() notifier.Notifier
}

// KubeClient exposes the cluster state collection the decision core depends
// on. The concrete implementation translates Kubernetes API objects into the
// core data model at this boundary.
type KubeClient interface {
	// PendingPods returns the currently unschedulable pods grouped by their
	// selectors hash. Order within a key is stable for the cycle.
	PendingPods() (PendingPods, error)
}

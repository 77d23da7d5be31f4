package autoscaler

import (
	metrics "github.com/armon/go-metrics"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/helper"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/notifier"
)

// ScalingPolicy decides, once per cycle, how many additional capacity units
// each node group needs to host the pending pods and issues the resulting
// scale operations. Implementations assume at most one Apply in flight at a
// time; the caller serializes cycles.
type ScalingPolicy interface {
	// Name returns the policy name in a lowercase, human readable format.
	Name() string

	// Apply runs one decision cycle over the supplied pending pods and
	// candidate node groups. Its effects are the issued scale operations and
	// notifications; all partial failures are isolated per group.
	Apply(pendingPods structs.PendingPods, groups []*structs.Group, cluster structs.Cluster)

	// Status returns a point-in-time view of the policy state for the
	// status endpoints.
	Status() structs.PolicyStatus
}

// unitsGate caps the number of capacity units requested for a group after
// the unconstrained need has been computed. The cost policy hooks its budget
// gate in here; the other policies pass nil.
type unitsGate func(group *structs.Group, unitsRequested int) int

// BasicScalingPolicy scales immediately: every decision cycle translates the
// pending pods directly into scale requests.
type BasicScalingPolicy struct{}

// NewBasicScalingPolicy returns the immediate scaling policy.
func NewBasicScalingPolicy() *BasicScalingPolicy {
	return &BasicScalingPolicy{}
}

// Name returns the name of the scaling policy.
func (p *BasicScalingPolicy) Name() string {
	return structs.PolicyBasic
}

// Status returns the point-in-time view of the policy.
func (p *BasicScalingPolicy) Status() structs.PolicyStatus {
	return structs.PolicyStatus{Policy: p.Name()}
}

// Apply runs the decision procedure for every distinct group key present in
// the pending pods and fulfills the resulting operations.
func (p *BasicScalingPolicy) Apply(pendingPods structs.PendingPods,
	groups []*structs.Group, cluster structs.Cluster) {

	var asyncOperations []*structs.AsyncOperation

	for selectorsHash, pods := range pendingPods {
		asyncOperations = append(asyncOperations,
			decideNumInstances(cluster, groups, selectorsHash, pods, nil)...)
	}

	fulfillRequests(cluster, asyncOperations)
}

// decideNumInstances runs the decision procedure for one group key: it
// selects and prioritizes the candidate groups, estimates the capacity units
// needed via first-fit packing and translates the estimate into scale
// requests honoring group ceilings and timeouts. Each group key is processed
// exactly once per cycle; a pod may still be counted against several
// candidate groups within the same cycle, which keeps the estimate
// conservative rather than exact.
func decideNumInstances(cluster structs.Cluster, asgs []*structs.Group,
	selectorsHash uint64, pods []*structs.Pod, gate unitsGate) []*structs.AsyncOperation {

	var asyncOperations []*structs.AsyncOperation

	groups := cluster.PrioritizeGroups(cluster.GroupsForKey(asgs, selectorsHash))

	for _, group := range groups {
		timedOut := cluster.AutoscalingTimeouts().IsTimedOut(group) || group.TimedOut()

		// A group that is cooling down or already at its ceiling is skipped,
		// unless it contains unschedulable nodes and needs attention
		// regardless of its nominal state.
		if (timedOut || group.MaxSize == group.DesiredCapacity) &&
			!group.UnschedulableNodes {
			continue
		}

		bins, assignedPods := packPods(group, pods)

		// The pods may not fit because of resource requests or taints.
		// Don't scale in that case.
		unitsNeeded := len(bins)
		if unitsNeeded == 0 {
			logging.Debug("core/scaling_policy: no pods under key %v fit "+
				"group %v, not scaling", selectorsHash, group.Name)
			continue
		}

		unitsNeeded += cluster.OverProvision()

		var unavailableUnits int
		if timedOut {
			// A timed out group cannot be grown further; only account for
			// the capacity it already has committed. It may have more being
			// launched, but we're being conservative.
			unavailableUnits = helper.MaxInt(0,
				unitsNeeded-(group.DesiredCapacity-group.ActualCapacity))
		} else {
			unavailableUnits = helper.MaxInt(0,
				unitsNeeded-(group.MaxSize-group.ActualCapacity))
		}
		unitsRequested := unitsNeeded - unavailableUnits

		if gate != nil {
			unitsRequested = gate(group, unitsRequested)
		}

		if unitsRequested <= 0 {
			logging.Debug("core/scaling_policy: group %v has no requestable "+
				"units for key %v, not scaling", group.Name, selectorsHash)
			continue
		}

		newCapacity := group.ActualCapacity + unitsRequested

		logging.Info("core/scaling_policy: requesting %v additional units "+
			"for group %v (actual: %v, desired: %v, max: %v, new capacity: %v)",
			unitsRequested, group.Name, group.ActualCapacity,
			group.DesiredCapacity, group.MaxSize, newCapacity)

		asyncOperations = append(asyncOperations, createAsyncOperation(
			cluster, group, assignedPods, newCapacity, unitsRequested))

		metrics.IncrCounter([]string{"scale", group.Name, "requested"}, 1)
	}

	return asyncOperations
}

// createAsyncOperation issues the scale call against the group and registers
// the completion callback that dispatches the scale notification. The
// notification only fires when the provider confirms the capacity change.
func createAsyncOperation(cluster structs.Cluster, group *structs.Group,
	assignedPods [][]*structs.Pod, newCapacity, unitsRequested int) *structs.AsyncOperation {

	asyncOperation := group.Scale(newCapacity)
	asyncOperation.UnitsRequested = unitsRequested
	asyncOperation.AssignedPods = assignedPods

	asyncOperation.AddDoneCallback(func(op *structs.AsyncOperation) {
		if op.Err() != nil {
			return
		}

		cluster.Notifier().NotifyScale(notifier.ScaleMessage{
			GroupName:      op.Group.Name,
			InstanceType:   op.Group.InstanceType,
			UnitsRequested: op.UnitsRequested,
			Pods:           helper.FlattenPods(op.AssignedPods),
		})
	})

	return asyncOperation
}

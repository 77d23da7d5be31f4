package autoscaler

import (
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// packPods estimates the number of fresh capacity units required to host the
// supplied pods on the given node group. Pods are taken in input order and
// placed into the first provisional unit with feasible residual capacity; if
// none fits, a new unit is opened. The result is an upper-bound first-fit
// estimate, not an optimal packing.
//
// Pods that could never fit a fresh unit on their own, or whose tolerations
// do not cover the group's taints, are skipped entirely. Scaling for them
// would create capacity they still could not use.
//
// The returned slices are parallel: bins[i] is the residual capacity of the
// i-th provisional unit and assignedPods[i] the pods placed on it. Zero bins
// means nothing on this group can help the supplied pods.
func packPods(group *structs.Group, pods []*structs.Pod) (bins []structs.Resource, assignedPods [][]*structs.Pod) {

	unitCapacity := group.UnitCapacity

	for _, pod := range pods {
		if !unitCapacity.Subtract(pod.Resources).IsFeasible() {
			logging.Debug("core/binpack: pod %v can never fit a fresh %v unit "+
				"in group %v, leaving pending", pod.ID(), group.InstanceType,
				group.Name)
			continue
		}

		if !group.ToleratesTaints(pod) {
			logging.Debug("core/binpack: pod %v does not tolerate the taints "+
				"of group %v, leaving pending", pod.ID(), group.Name)
			continue
		}

		foundFit := false
		for i, bin := range bins {
			if residual := bin.Subtract(pod.Resources); residual.IsFeasible() {
				bins[i] = residual
				assignedPods[i] = append(assignedPods[i], pod)
				foundFit = true
				break
			}
		}

		if !foundFit {
			bins = append(bins, unitCapacity.Subtract(pod.Resources))
			assignedPods = append(assignedPods, []*structs.Pod{pod})
		}
	}

	return bins, assignedPods
}

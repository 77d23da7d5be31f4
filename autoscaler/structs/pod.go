package structs

import (
	"fmt"

	"github.com/mitchellh/hashstructure"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// Taint marks a node group as repelling workload units that do not carry a
// matching toleration.
type Taint struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Effect string `json:"effect"`
}

// Toleration allows a workload unit to be placed on node groups carrying the
// matching taint. An empty Effect matches taints of any effect; the Exists
// operator matches any value for the key.
type Toleration struct {
	Key      string `json:"key"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
	Effect   string `json:"effect"`
}

// Set of supported toleration operators.
const (
	TolerationOpEqual  = "Equal"
	TolerationOpExists = "Exists"
)

// Tolerates reports whether the toleration matches the supplied taint.
func (t Toleration) Tolerates(taint Taint) bool {
	if t.Effect != "" && t.Effect != taint.Effect {
		return false
	}

	if t.Key != taint.Key {
		return false
	}

	switch t.Operator {
	case TolerationOpExists:
		return true
	case TolerationOpEqual, "":
		return t.Value == taint.Value
	default:
		return false
	}
}

// Pod represents a single unschedulable workload unit as observed by the
// cluster state collector. Pods are immutable once built; the decision core
// only ever reads them.
type Pod struct {
	// Name and Namespace identify the pod within the cluster.
	Name      string `json:"name"`
	Namespace string `json:"namespace"`

	// Resources is the aggregate resource request of the pod.
	Resources Resource `json:"resources"`

	// NodeSelectors are the scheduling constraints the pod places on
	// candidate node groups.
	NodeSelectors map[string]string `json:"node_selectors"`

	// Tolerations is the set of node taints the pod is willing to accept.
	Tolerations []Toleration `json:"tolerations"`

	// SelectorsHash is the group key derived from NodeSelectors. All pods
	// sharing a hash are schedulable on the same set of node groups.
	SelectorsHash uint64 `json:"selectors_hash"`
}

// NewPod builds a pod object and derives its group key from the supplied
// scheduling selectors.
func NewPod(name, namespace string, resources Resource,
	selectors map[string]string, tolerations []Toleration) *Pod {

	hash, err := hashstructure.Hash(selectors, nil)
	if err != nil {
		logging.Error("structs/pod: error hashing selectors for pod %v/%v: %v",
			namespace, name, err)
	}

	return &Pod{
		Name:          name,
		Namespace:     namespace,
		Resources:     resources,
		NodeSelectors: selectors,
		Tolerations:   tolerations,
		SelectorsHash: hash,
	}
}

// ID returns the namespaced pod identifier used in notifications and logs.
func (p *Pod) ID() string {
	return fmt.Sprintf("%s/%s", p.Namespace, p.Name)
}

// PendingPods maps a group key to the ordered list of pods currently
// unschedulable under that key. Order within a key follows observation order
// and is stable across a cycle.
type PendingPods map[uint64][]*Pod

// Count returns the total number of pending pods across all group keys.
func (p PendingPods) Count() (count int) {
	for _, pods := range p {
		count += len(pods)
	}
	return count
}

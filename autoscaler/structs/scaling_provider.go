package structs

import (
	"errors"
	"time"
)

// ErrScaleTimeout is returned by a scaling provider when a capacity change
// was issued but could not be confirmed before the provider's deadline.
var ErrScaleTimeout = errors.New("timeout while waiting for scale operation confirmation")

// TerminationHandler is invoked by a scaling provider or API endpoint for
// every node removal it observes, carrying the instance launch time and type
// for cost accounting.
type TerminationHandler func(creationTime time.Time, instanceType string)

// ScalingProvider provides a standardized interface for implementing
// scaling support across different cloud providers.
type ScalingProvider interface {
	// Name returns the provider name in a lowercase, human readable format.
	Name() string

	// SafetyCheck should implement provider specific checks that are run
	// before a scaling operation is initiated against a node group.
	SafetyCheck(*Group) bool

	// Scale requests the supplied desired capacity for the node group and
	// blocks until the provider confirms or rejects the change. A confirmed
	// but unfinished change past the provider deadline surfaces as
	// ErrScaleTimeout.
	Scale(group *Group, newCapacity int) error

	// Refresh updates the group's actual, desired and maximum capacity from
	// the cloud provider.
	Refresh(*Group) error
}

package notifier

import (
	"fmt"
)

// ScaleMessage is the notifier struct describing a successfully issued scale
// operation and the workload units it was provisioned for.
type ScaleMessage struct {
	AlertUID          string
	ClusterIdentifier string
	GroupName         string
	InstanceType      string
	UnitsRequested    int
	Pods              []string
}

// FailureMessage is the notifier struct that contains all relevant
// information about a failed scale operation to provide to operators and
// developers.
type FailureMessage struct {
	AlertUID          string
	ClusterIdentifier string
	GroupName         string
	Reason            string
}

// Notifier is the interface to the notifier functions. All notifiers are
// expected to implement this set of functions.
type Notifier interface {
	Name() string
	NotifyScale(ScaleMessage)
	SendNotification(FailureMessage)
}

// NewProvider is the factory entrance to the notification backends.
func NewProvider(t string, c map[string]string) (Notifier, error) {

	var n Notifier
	var err error

	switch t {
	case "pagerduty":
		n, err = NewPagerDutyProvider(c)
	case "opsgenie":
		n, err = NewOpsGenieProvider(c)
	default:
		err = fmt.Errorf("the notifications provider %s is not supported", t)
	}
	return n, err
}

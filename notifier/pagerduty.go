package notifier

import (
	"fmt"
	"strings"

	"github.com/PagerDuty/go-pagerduty"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// PagerDutyProvider contains the required configuration to send PagerDuty
// notifications.
type PagerDutyProvider struct {
	config map[string]string
}

// Name returns the name of the notification endpoint in a lowercase, human
// readable format.
func (p *PagerDutyProvider) Name() string {
	return "pagerduty"
}

// NewPagerDutyProvider creates the PagerDuty notification provider.
func NewPagerDutyProvider(c map[string]string) (Notifier, error) {

	p := &PagerDutyProvider{
		config: c,
	}

	return p, nil
}

// NotifyScale will send a scale event to PagerDuty using the Event library
// call to create a new low urgency incident.
func (p *PagerDutyProvider) NotifyScale(message ScaleMessage) {

	// Format the message description.
	d := fmt.Sprintf("%s %s: scaled group %s (%s) by %v units for pods %s",
		message.AlertUID, message.ClusterIdentifier, message.GroupName,
		message.InstanceType, message.UnitsRequested,
		strings.Join(message.Pods, ", "))

	event := pagerduty.Event{
		ServiceKey:  p.config["PagerDutyServiceKey"],
		Type:        "trigger",
		Description: d,
		Details:     message,
	}

	resp, err := pagerduty.CreateEvent(event)
	if err != nil {
		logging.Error("notifier/pagerduty: an error occurred creating the "+
			"PagerDuty event: %v", err)
		return
	}

	logging.Info("notifier/pagerduty: incident %s has been triggered",
		resp.IncidentKey)
}

// SendNotification will send a failure notification to PagerDuty using the
// Event library call to create a new incident.
func (p *PagerDutyProvider) SendNotification(message FailureMessage) {

	// Format the message description.
	d := fmt.Sprintf("%s %s_%s: %s",
		message.AlertUID, message.ClusterIdentifier, message.GroupName,
		message.Reason)

	// Setup the PagerDuty event structure which will then be used to trigger
	// the event call.
	event := pagerduty.Event{
		ServiceKey:  p.config["PagerDutyServiceKey"],
		Type:        "trigger",
		Description: d,
		Details:     message,
	}

	resp, err := pagerduty.CreateEvent(event)
	if err != nil {
		logging.Error("notifier/pagerduty: an error occurred creating the "+
			"PagerDuty event: %v", err)
		return
	}

	logging.Info("notifier/pagerduty: incident %s has been triggered",
		resp.IncidentKey)
}

package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsgenie/opsgenie-go-sdk-v2/alert"
	ogclient "github.com/opsgenie/opsgenie-go-sdk-v2/client"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// OpsGenieProvider contains the required configuration to send OpsGenie
// notifications.
type OpsGenieProvider struct {
	config map[string]string
}

// Name returns the name of the notification endpoint in a lowercase, human
// readable format.
func (og *OpsGenieProvider) Name() string {
	return "opsgenie"
}

// NewOpsGenieProvider creates the OpsGenie notification provider.
func NewOpsGenieProvider(c map[string]string) (Notifier, error) {

	og := &OpsGenieProvider{
		config: c,
	}

	return og, nil
}

// NotifyScale will send a scale event to OpsGenie using the alert library
// call to create a new alert.
func (og *OpsGenieProvider) NotifyScale(message ScaleMessage) {

	// Format the message description.
	d := fmt.Sprintf("%s %s: scaled group %s (%s) by %v units",
		message.AlertUID, message.ClusterIdentifier, message.GroupName,
		message.InstanceType, message.UnitsRequested)

	og.createAlert(message.AlertUID, d, map[string]string{
		"alert_uid":          message.AlertUID,
		"cluster_identifier": message.ClusterIdentifier,
		"group_name":         message.GroupName,
		"instance_type":      message.InstanceType,
		"units_requested":    fmt.Sprintf("%v", message.UnitsRequested),
		"pods":               strings.Join(message.Pods, ", "),
	}, message.GroupName)
}

// SendNotification will send a failure notification to OpsGenie using the
// alert library call to create a new alert.
func (og *OpsGenieProvider) SendNotification(message FailureMessage) {

	// Format the message description.
	d := fmt.Sprintf("%s %s_%s_%s",
		message.AlertUID,
		message.ClusterIdentifier,
		message.Reason,
		message.GroupName)

	og.createAlert(message.AlertUID, d, map[string]string{
		"alert_uid":          message.AlertUID,
		"cluster_identifier": message.ClusterIdentifier,
		"reason":             message.Reason,
		"group_name":         message.GroupName,
	}, message.GroupName)
}

func (og *OpsGenieProvider) createAlert(alias, description string,
	details map[string]string, entity string) {

	alertClient, err := alert.NewClient(&ogclient.Config{
		ApiKey: og.config["OpsGenieAPIKey"],
	})
	if err != nil {
		logging.Error("notifier/opsgenie: an error occurred setting up the "+
			"OpsGenie client: %v", err)
		return
	}

	request := &alert.CreateAlertRequest{
		Message:     "autoscaler notification",
		Alias:       alias,
		Description: description,
		Details:     details,
		Entity:      entity,
		Source:      "autoscaler",
	}

	resp, err := alertClient.Create(context.Background(), request)
	if err != nil {
		logging.Error("notifier/opsgenie: an error occurred creating the "+
			"OpsGenie alert: %v", err)
		return
	}

	logging.Info("notifier/opsgenie: alert %s has been triggered", resp.RequestId)
}

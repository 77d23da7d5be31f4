package command

import (
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultInitName is the default name we use when
	// initializing the example file
	DefaultInitName = "autoscaler.hcl"
)

type InitCommand struct {
	Meta
}

// Help provides the help information for the init command.
func (c *InitCommand) Help() string {
	helpText := `
Usage: kubernetes-ec2-autoscaler init

  Creates an example agent configuration file that can be used as a
  starting point to customize further.
`
	return strings.TrimSpace(helpText)
}

// Synopsis is provides a brief summary of the init command.
func (c *InitCommand) Synopsis() string {
	return "Create an example autoscaler agent configuration"
}

// Run triggers the init command to write the autoscaler.hcl file out to the
// current directory.
func (c *InitCommand) Run(args []string) int {

	// The command should be used with 0 extra flags.
	if len(args) != 0 {
		c.UI.Error(c.Help())
		return 1
	}

	// Check if the file already exists.
	_, err := os.Stat(DefaultInitName)
	if err != nil && !os.IsNotExist(err) {
		c.UI.Error(fmt.Sprintf("Failed to stat '%s': %v", DefaultInitName, err))
		return 1
	}
	if !os.IsNotExist(err) {
		c.UI.Error(fmt.Sprintf("Configuration file '%s' already exists", DefaultInitName))
		return 1
	}

	// Write the example file to the relative local directory where the
	// autoscaler was invoked from.
	err = os.WriteFile(DefaultInitName, []byte(defaultAgentConfig), 0660)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to write '%s': %v", DefaultInitName, err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Example agent configuration written to %s", DefaultInitName))
	return 0
}

var defaultAgentConfig = strings.TrimSpace(`
consul           = "localhost:8500"
consul_key_root  = "autoscaler/config"
aws_region       = "us-east-1"
log_level        = "INFO"
scaling_interval = 10
over_provision   = 0

cooldown_period         = 600
scale_operation_timeout = 600

policy {
  name = "basic"

  # The cost policy additionally requires an hourly budget and the path to
  # the instance cost reference data.
  # name              = "cost"
  # max_cost_per_hour = 25.0
  # cost_data_path    = "/etc/autoscaler/costs.json"

  # The growth policy provisions only after sustained growth in pending
  # pods.
  # name                  = "growth"
  # growth_factor         = 2
  # triggers_to_provision = 3
}

node_group "general-purpose" {
  instance_type = "m5.xlarge"
  cpu           = 4000
  memory_mb     = 16384
  max_pods      = 110
  priority      = 1

  labels {
    role = "general"
  }
}

node_group "gpu-workers" {
  instance_type = "p3.2xlarge"
  cpu           = 8000
  memory_mb     = 62464
  gpu           = 1
  max_pods      = 110
  priority      = 2

  labels {
    role = "gpu"
  }

  taints = ["dedicated=gpu:NoSchedule"]
}

telemetry {
  statsd_address = "localhost:8125"
}

notification {
  cluster_identifier  = "kube-prod"
  cluster_scaling_uid = "Kube1"

  # pagerduty_service_key = "..."
  # opsgenie_api_key      = "..."
}
`) + "\n"

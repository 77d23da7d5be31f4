package base

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
)

func writeConfigFile(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "config.hcl")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigParse_LoadConfigFile(t *testing.T) {

	configFile := writeConfigFile(t, `
    consul                  = "consul.com:8500"
    consul_key_root         = "autoscaler/config"
    kubeconfig              = "/etc/autoscaler/kubeconfig"
    log_level               = "info"
    scaling_interval        = 1
    aws_region              = "us-east-1"
    over_provision          = 2
    cooldown_period         = 300
    scale_operation_timeout = 900

    policy {
      name              = "cost"
      max_cost_per_hour = 25.5
      cost_data_path    = "/etc/autoscaler/costs.json"
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
      statsd_address = "10.0.0.10:8125"
    }

    notification {
      pagerduty_service_key = "thisisafakekey"
      cluster_identifier    = "kube-prod"
      cluster_scaling_uid   = "Kube1"
    }

  `)

	c, err := LoadConfig(configFile)
	if err != nil {
		t.Fatal(err)
	}

	expected := &structs.Config{
		Consul:                "consul.com:8500",
		ConsulKeyRoot:         "autoscaler/config",
		Kubeconfig:            "/etc/autoscaler/kubeconfig",
		LogLevel:              "info",
		ScalingInterval:       1,
		Region:                "us-east-1",
		OverProvision:         2,
		CooldownPeriod:        300,
		ScaleOperationTimeout: 900,

		Policy: &structs.PolicyConfig{
			Name:           structs.PolicyCost,
			MaxCostPerHour: 25.5,
			CostDataPath:   "/etc/autoscaler/costs.json",
		},

		NodeGroups: []*structs.NodeGroupConfig{
			{
				Name:         "general-purpose",
				InstanceType: "m5.xlarge",
				CPUMillis:    4000,
				MemoryMB:     16384,
				MaxPods:      110,
				Priority:     1,
				Labels:       map[string]string{"role": "general"},
			},
			{
				Name:         "gpu-workers",
				InstanceType: "p3.2xlarge",
				CPUMillis:    8000,
				MemoryMB:     62464,
				GPU:          1,
				MaxPods:      110,
				Priority:     2,
				Labels:       map[string]string{"role": "gpu"},
				Taints:       []string{"dedicated=gpu:NoSchedule"},
			},
		},

		Telemetry: &structs.Telemetry{
			StatsdAddress: "10.0.0.10:8125",
		},

		Notification: &structs.Notification{
			PagerDutyServiceKey: "thisisafakekey",
			ClusterIdentifier:   "kube-prod",
			ClusterScalingUID:   "Kube1",
		},
	}
	if !reflect.DeepEqual(c, expected) {
		t.Fatalf("expected \n%#v\n\n, got \n\n%#v\n\n", expected, c)
	}
}

func TestConfigParse_InvalidKey(t *testing.T) {
	configFile := writeConfigFile(t, `
    consul       = "consul.com:8500"
    nomad_server = "http://nomad.com:4646"
  `)

	if _, err := LoadConfig(configFile); err == nil {
		t.Fatal("expected an error for an unknown configuration key")
	}
}

func TestConfigParse_DuplicateNodeGroup(t *testing.T) {
	configFile := writeConfigFile(t, `
    node_group "workers" {
      instance_type = "m5.large"
      cpu           = 2000
      memory_mb     = 8192
    }

    node_group "workers" {
      instance_type = "m5.large"
      cpu           = 2000
      memory_mb     = 8192
    }
  `)

	if _, err := LoadConfig(configFile); err == nil {
		t.Fatal("expected an error for a duplicated node_group name")
	}
}

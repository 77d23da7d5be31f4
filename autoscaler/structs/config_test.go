package structs

import (
	"reflect"
	"testing"
)

func TestStructs_Merge(t *testing.T) {
	c := &Config{
		Consul:          "localhost:8500",
		ConsulKeyRoot:   "autoscaler/config",
		LogLevel:        "INFO",
		ScalingInterval: 10,
		Policy: &PolicyConfig{
			Name: PolicyBasic,
		},
		Telemetry:    &Telemetry{},
		Notification: &Notification{},
	}

	partialConfig := &Config{
		Consul:          "consul.rocks.systems",
		ConsulToken:     "afb3bc3a-6acd-11e7-b70c-784f43a63381",
		LogLevel:        "ERROR",
		ScalingInterval: 60,
		Telemetry: &Telemetry{
			StatsdAddress: "8.8.8.8:8125",
		},
		Notification: &Notification{
			ClusterIdentifier:   "kube-rocks",
			PagerDutyServiceKey: "onlyopsoncall",
		},
	}

	fullConfig := &Config{
		Consul:                "consul.rocks.systems",
		ConsulKeyRoot:         "autoscaler/prod",
		ConsulToken:           "afb3bc3a-6acd-11e7-b70c-784f43a63381",
		Kubeconfig:            "/etc/autoscaler/kubeconfig",
		LogLevel:              "ERROR",
		ScalingInterval:       60,
		Region:                "eu-west-1",
		OverProvision:         2,
		ScalingDisable:        true,
		CooldownPeriod:        900,
		ScaleOperationTimeout: 1200,
		Policy: &PolicyConfig{
			Name:           PolicyCost,
			MaxCostPerHour: 42,
			CostDataPath:   "/etc/autoscaler/costs.json",
		},
		Telemetry: &Telemetry{
			StatsdAddress: "8.8.8.8:8125",
		},
		Notification: &Notification{
			ClusterIdentifier:   "kube-rocks",
			PagerDutyServiceKey: "onlyopsoncall",
		},
	}

	partialExpected := &Config{
		Consul:          "consul.rocks.systems",
		ConsulKeyRoot:   "autoscaler/config",
		ConsulToken:     "afb3bc3a-6acd-11e7-b70c-784f43a63381",
		LogLevel:        "ERROR",
		ScalingInterval: 60,
		Policy: &PolicyConfig{
			Name: PolicyBasic,
		},
		Telemetry: &Telemetry{
			StatsdAddress: "8.8.8.8:8125",
		},
		Notification: &Notification{
			ClusterIdentifier:   "kube-rocks",
			PagerDutyServiceKey: "onlyopsoncall",
		},
	}

	partialResult := c.Merge(partialConfig)
	if !reflect.DeepEqual(partialResult, partialExpected) {
		t.Fatalf("expected \n%#v\n\n, got \n\n%#v\n\n", partialExpected, partialResult)
	}

	fullResult := partialResult.Merge(fullConfig)
	if !reflect.DeepEqual(fullResult, fullConfig) {
		t.Fatalf("expected \n%#v\n\n, got \n\n%#v\n\n", fullConfig, fullResult)
	}
}

package structs

import (
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/notifier"
)

// Config is the main configuration struct used to configure the autoscaler
// daemon.
type Config struct {
	// Consul is the location of the Consul instance or cluster endpoint to
	// query (may be an IP address or FQDN) with port.
	Consul string `mapstructure:"consul"`

	// ConsulKeyRoot is the Consul Key/Value Store location where the daemon
	// stores and fetches critical information from.
	ConsulKeyRoot string `mapstructure:"consul_key_root"`

	// ConsulToken is the Consul ACL token used to access KeyValues from a
	// secure Consul installation.
	ConsulToken string `mapstructure:"consul_token"`

	// Kubeconfig is the path to the kubeconfig file used to reach the
	// Kubernetes API. When empty the in-cluster configuration is used.
	Kubeconfig string `mapstructure:"kubeconfig"`

	// LogLevel is the level at which the application should log from.
	LogLevel string `mapstructure:"log_level"`

	// ScalingInterval is the duration in seconds between decision cycles.
	ScalingInterval int `mapstructure:"scaling_interval"`

	// Region represents the AWS region the cluster resides in.
	Region string `mapstructure:"aws_region"`

	// BindAddress is the address the HTTP API listens on.
	BindAddress string `mapstructure:"bind_address"`

	// HTTPPort is the port the HTTP API listens on.
	HTTPPort string `mapstructure:"http_port"`

	// OverProvision is the slack in capacity units added to every computed
	// scaling need, creating headroom for bursts.
	OverProvision int `mapstructure:"over_provision"`

	// ScalingDisable indicates scaling evaluations should run without
	// initiating scale operations.
	ScalingDisable bool `mapstructure:"scaling_disable"`

	// CooldownPeriod is the number of seconds a node group remains in the
	// process-wide timeout tracker after a failed or stalled scale.
	CooldownPeriod int `mapstructure:"cooldown_period"`

	// ScaleOperationTimeout is the number of seconds the scaling provider
	// waits for a capacity change to be confirmed before reporting a
	// timeout.
	ScaleOperationTimeout int `mapstructure:"scale_operation_timeout"`

	// Policy is the configuration block selecting and tuning the scaling
	// policy.
	Policy *PolicyConfig `mapstructure:"policy"`

	// NodeGroups holds the configured scalable node groups.
	NodeGroups []*NodeGroupConfig `mapstructure:"-"`

	// Telemetry is the configuration struct that controls the telemetry
	// settings.
	Telemetry *Telemetry `mapstructure:"telemetry"`

	// Notification is the control struct for notifications.
	Notification *Notification `mapstructure:"notification"`

	// ConsulClient provides a client to interact with the Consul API.
	ConsulClient ConsulClient `mapstructure:"-" json:"-"`

	// KubeClient provides the cluster state collector.
	KubeClient KubeClient `mapstructure:"-" json:"-"`
}

// Set of supported scaling policy names.
const (
	PolicyBasic  = "basic"
	PolicyCost   = "cost"
	PolicyGrowth = "growth"
)

// PolicyConfig selects the scaling policy variant and carries its tuning
// parameters.
type PolicyConfig struct {
	// Name selects the policy variant: basic, cost or growth.
	Name string `mapstructure:"name"`

	// MaxCostPerHour is the hourly budget the cost policy gates scale
	// requests against.
	MaxCostPerHour float64 `mapstructure:"max_cost_per_hour"`

	// CostDataPath is the path to the region-keyed cost reference data.
	CostDataPath string `mapstructure:"cost_data_path"`

	// GrowthFactor is the pending-pod growth ratio a cycle must exceed to
	// count as a trigger for the growth policy.
	GrowthFactor float64 `mapstructure:"growth_factor"`

	// TriggersToProvision is the number of consecutive qualifying growth
	// cycles required before the growth policy provisions capacity.
	TriggersToProvision int `mapstructure:"triggers_to_provision"`
}

// NodeGroupConfig describes one scalable node group in the configuration
// file.
type NodeGroupConfig struct {
	// Name is the cloud autoscaling group name. Populated from the HCL block
	// label.
	Name string `mapstructure:"-"`

	// InstanceType is the instance type launched by the group.
	InstanceType string `mapstructure:"instance_type"`

	// CPUMillis, MemoryMB, GPU and MaxPods describe the schedulable capacity
	// of one fresh instance in the group.
	CPUMillis int64 `mapstructure:"cpu"`
	MemoryMB  int64 `mapstructure:"memory_mb"`
	GPU       int64 `mapstructure:"gpu"`
	MaxPods   int64 `mapstructure:"max_pods"`

	// Priority orders candidate groups during the decision procedure; lower
	// values are considered first.
	Priority int `mapstructure:"priority"`

	// Labels are matched against pod node selectors.
	Labels map[string]string `mapstructure:"labels"`

	// Taints lists the group taints in key=value:effect form.
	Taints []string `mapstructure:"taints"`
}

// Telemetry is the struct that controls the telemetry configuration. If a
// value is present then telemetry is enabled. Currently statsd is only
// supported for sending telemetry.
type Telemetry struct {
	// StatsdAddress specifies the address of a statsd server to forward
	// metrics to and should include the port.
	StatsdAddress string `mapstructure:"statsd_address"`
}

// Notification is the control struct for notifications.
type Notification struct {
	// ClusterScalingUID is the UID to associate to the cluster scaling
	// alerts.
	ClusterScalingUID string `mapstructure:"cluster_scaling_uid"`

	// ClusterIdentifier is a friendly name which is used when sending
	// notifications for easy human identification.
	ClusterIdentifier string `mapstructure:"cluster_identifier"`

	// PagerDutyServiceKey is the PD integration key for the Events API v1.
	PagerDutyServiceKey string `mapstructure:"pagerduty_service_key"`

	// OpsGenieAPIKey is the OpsGenie API integration key.
	OpsGenieAPIKey string `mapstructure:"opsgenie_api_key"`

	// Notifiers is where our initialized notification backends are stored so
	// they can be used on the fly when required.
	Notifiers []notifier.Notifier `mapstructure:"-" json:"-"`
}

// Merge merges two configurations.
func (c *Config) Merge(b *Config) *Config {
	config := *c

	if b.Consul != "" {
		config.Consul = b.Consul
	}

	if b.ConsulKeyRoot != "" {
		config.ConsulKeyRoot = b.ConsulKeyRoot
	}

	if b.ConsulToken != "" {
		config.ConsulToken = b.ConsulToken
	}

	if b.Kubeconfig != "" {
		config.Kubeconfig = b.Kubeconfig
	}

	if b.LogLevel != "" {
		config.LogLevel = b.LogLevel
	}

	if b.ScalingInterval > 0 {
		config.ScalingInterval = b.ScalingInterval
	}

	if b.Region != "" {
		config.Region = b.Region
	}

	if b.BindAddress != "" {
		config.BindAddress = b.BindAddress
	}

	if b.HTTPPort != "" {
		config.HTTPPort = b.HTTPPort
	}

	if b.OverProvision > 0 {
		config.OverProvision = b.OverProvision
	}

	if b.ScalingDisable {
		config.ScalingDisable = b.ScalingDisable
	}

	if b.CooldownPeriod > 0 {
		config.CooldownPeriod = b.CooldownPeriod
	}

	if b.ScaleOperationTimeout > 0 {
		config.ScaleOperationTimeout = b.ScaleOperationTimeout
	}

	if len(b.NodeGroups) > 0 {
		config.NodeGroups = b.NodeGroups
	}

	// Apply the Policy config
	if config.Policy == nil && b.Policy != nil {
		policy := *b.Policy
		config.Policy = &policy
	} else if b.Policy != nil {
		config.Policy = config.Policy.Merge(b.Policy)
	}

	// Apply the Telemetry config
	if config.Telemetry == nil && b.Telemetry != nil {
		telemetry := *b.Telemetry
		config.Telemetry = &telemetry
	} else if b.Telemetry != nil {
		config.Telemetry = config.Telemetry.Merge(b.Telemetry)
	}

	// Apply the Notification config
	if config.Notification == nil && b.Notification != nil {
		notification := *b.Notification
		config.Notification = &notification
	} else if b.Notification != nil {
		config.Notification = config.Notification.Merge(b.Notification)
	}

	return &config
}

// Merge is used to merge two PolicyConfig configurations together.
func (p *PolicyConfig) Merge(b *PolicyConfig) *PolicyConfig {
	config := *p

	if b.Name != "" {
		config.Name = b.Name
	}

	if b.MaxCostPerHour != 0 {
		config.MaxCostPerHour = b.MaxCostPerHour
	}

	if b.CostDataPath != "" {
		config.CostDataPath = b.CostDataPath
	}

	if b.GrowthFactor != 0 {
		config.GrowthFactor = b.GrowthFactor
	}

	if b.TriggersToProvision != 0 {
		config.TriggersToProvision = b.TriggersToProvision
	}

	return &config
}

// Merge is used to merge two Telemetry configurations together.
func (t *Telemetry) Merge(b *Telemetry) *Telemetry {
	config := *t

	if b.StatsdAddress != "" {
		config.StatsdAddress = b.StatsdAddress
	}

	return &config
}

// Merge is used to merge two Notification configurations together.
func (n *Notification) Merge(b *Notification) *Notification {
	config := *n

	if b.ClusterScalingUID != "" {
		config.ClusterScalingUID = b.ClusterScalingUID
	}

	if b.ClusterIdentifier != "" {
		config.ClusterIdentifier = b.ClusterIdentifier
	}

	if b.PagerDutyServiceKey != "" {
		config.PagerDutyServiceKey = b.PagerDutyServiceKey
	}

	if b.OpsGenieAPIKey != "" {
		config.OpsGenieAPIKey = b.OpsGenieAPIKey
	}

	return &config
}

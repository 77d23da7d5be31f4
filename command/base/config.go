package base

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/client"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/notifier"
)

// Default local addresses and ports for the daemon APIs.
const (
	DefaultBindAddr    = "127.0.0.1"
	DefaultRPCPort     = 1314
	DefaultHTTPPort    = "1313"
	LocalConsulAddress = "localhost:8500"
)

var (
	// DefaultRPCAddr is the default bind address and port for the RPC
	// listener.
	DefaultRPCAddr = &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: DefaultRPCPort}
)

// DefaultConfig returns a default configuration struct with sane defaults.
func DefaultConfig() *structs.Config {

	return &structs.Config{
		BindAddress:           DefaultBindAddr,
		Consul:                LocalConsulAddress,
		ConsulKeyRoot:         "autoscaler/config",
		LogLevel:              "INFO",
		ScalingInterval:       10,
		HTTPPort:              DefaultHTTPPort,
		CooldownPeriod:        600,
		ScaleOperationTimeout: 600,

		Policy: &structs.PolicyConfig{
			Name:                structs.PolicyBasic,
			GrowthFactor:        2,
			TriggersToProvision: 3,
		},

		Telemetry:    &structs.Telemetry{},
		Notification: &structs.Notification{},
	}
}

// DevConfig returns a configuration struct with sane defaults for
// development and testing purposes.
func DevConfig() *structs.Config {
	config := DefaultConfig()
	config.LogLevel = "DEBUG"
	config.ScalingDisable = true
	config.CooldownPeriod = 0
	config.ScaleOperationTimeout = 30

	return config
}

// InitializeClients builds the Consul and Kubernetes clients along with the
// configured notification backends and attaches them to the configuration.
func InitializeClients(config *structs.Config) error {
	consulClient, err := client.NewConsulClient(config.Consul, config.ConsulToken)
	if err != nil {
		return fmt.Errorf("unable to initialize the Consul client: %v", err)
	}
	config.ConsulClient = consulClient

	kubeClient, err := client.NewKubeClient(config.Kubeconfig)
	if err != nil {
		return fmt.Errorf("unable to initialize the Kubernetes client: %v", err)
	}
	config.KubeClient = kubeClient

	return initializeNotifiers(config)
}

// InitializeConsulClient builds only the Consul client, used by the CLI
// commands that do not touch the cluster.
func InitializeConsulClient(config *structs.Config) error {
	consulClient, err := client.NewConsulClient(config.Consul, config.ConsulToken)
	if err != nil {
		return fmt.Errorf("unable to initialize the Consul client: %v", err)
	}
	config.ConsulClient = consulClient

	return nil
}

func initializeNotifiers(config *structs.Config) error {
	if config.Notification.PagerDutyServiceKey != "" {
		pd, err := notifier.NewProvider("pagerduty", map[string]string{
			"PagerDutyServiceKey": config.Notification.PagerDutyServiceKey,
		})
		if err != nil {
			return err
		}
		config.Notification.Notifiers = append(config.Notification.Notifiers, pd)
	}

	if config.Notification.OpsGenieAPIKey != "" {
		og, err := notifier.NewProvider("opsgenie", map[string]string{
			"OpsGenieAPIKey": config.Notification.OpsGenieAPIKey,
		})
		if err != nil {
			return err
		}
		config.Notification.Notifiers = append(config.Notification.Notifiers, og)
	}

	return nil
}

// LoadConfig loads the configuration at the given path whether the specified
// path is an individual file or a directory of numerous configuration files.
func LoadConfig(path string) (*structs.Config, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if fi.IsDir() {
		return LoadConfigDir(path)
	}

	cleaned := filepath.Clean(path)
	config, err := ParseConfigFile(cleaned)
	if err != nil {
		return nil, fmt.Errorf("Error loading %s: %s", cleaned, err)
	}

	return config, nil
}

// LoadConfigDir loads all the configurations in the given directory in
// lexicographic order.
func LoadConfigDir(dir string) (*structs.Config, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf(
			"configuration path must be a directory: %s", dir)
	}

	var files []string
	err = nil
	for err != io.EOF {
		var fis []os.FileInfo
		fis, err = f.Readdir(128)
		if err != nil && err != io.EOF {
			return nil, err
		}

		for _, fi := range fis {

			// We do not wish to navigate directories.
			if fi.IsDir() {
				continue
			}

			// Only HCL, and therefore json files, can be parsed and so we
			// ignore all other file extensions.
			name := fi.Name()
			skip := true
			if strings.HasSuffix(name, ".hcl") {
				skip = false
			} else if strings.HasSuffix(name, ".json") {
				skip = false
			}
			if skip {
				continue
			}

			path := filepath.Join(dir, name)
			files = append(files, path)
		}
	}

	// If there are no files, there is no need to continue and therefore we
	// exit quickly.
	if len(files) == 0 {
		return &structs.Config{}, nil
	}

	sort.Strings(files)

	var result *structs.Config

	for _, f := range files {
		config, err := ParseConfigFile(f)
		if err != nil {
			return nil, fmt.Errorf("Error loading %s: %s", f, err)
		}

		if result == nil {
			result = config
		} else {
			result = result.Merge(config)
		}
	}

	return result, nil
}

package agent

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	metrics "github.com/armon/go-metrics"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/cloud"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/command"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/command/base"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/version"
)

// Command is the agent command structure used to track passed args as well
// as the CLI meta.
type Command struct {
	command.Meta
	args []string

	server     *autoscaler.Server
	httpServer *HTTPServer

	// terminationHandler feeds observed node terminations back into the
	// active scaling policy when that policy accounts for spend.
	terminationHandler structs.TerminationHandler
}

// Run triggers a run of the autoscaler agent by setting up and parsing the
// configuration and then initiating the daemon processes.
func (c *Command) Run(args []string) int {

	c.args = args
	conf := c.parseFlags()
	if conf == nil {
		return 1
	}

	// Set the logging level for the logger.
	logging.SetLevel(conf.LogLevel)

	// Initialize telemetry if this was configured by the user.
	if conf.Telemetry.StatsdAddress != "" {
		sink, statsErr := metrics.NewStatsdSink(conf.Telemetry.StatsdAddress)
		if statsErr != nil {
			c.UI.Error(fmt.Sprintf("unable to setup telemetry correctly: %v", statsErr))
			return 1
		}
		metrics.NewGlobal(metrics.DefaultConfig("autoscaler"), sink)
	}

	logging.Info("command/agent: running version %v", version.Get())
	logging.Info("command/agent: starting autoscaler agent...")
	if err := c.setupAgent(conf); err != nil {
		c.UI.Error(fmt.Sprintf("unable to start the agent: %v", err))
		return 1
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)

	for {
		select {
		case s := <-signalCh:
			switch s {
			case syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				c.shutdownAgent()
				return 0

			case syscall.SIGHUP:
				c.shutdownAgent()

				// Reload the configuration in order to make proper use of
				// SIGHUP.
				conf := c.parseFlags()
				if conf == nil {
					return 1
				}
				logging.SetLevel(conf.LogLevel)

				if err := c.setupAgent(conf); err != nil {
					c.UI.Error(fmt.Sprintf("unable to restart the agent: %v", err))
					return 1
				}
			}
		}
	}
}

// setupAgent builds the daemon processes from the supplied configuration:
// the API clients, the scaling policy and provider, the leader elected
// server and the HTTP API.
func (c *Command) setupAgent(conf *structs.Config) error {

	if err := base.InitializeClients(conf); err != nil {
		return err
	}

	policy, err := autoscaler.NewScalingPolicy(conf)
	if err != nil {
		return err
	}

	// The cost policy tracks instance lifetimes, so observed terminations
	// are routed back into its accounting.
	c.terminationHandler = nil
	if cost, ok := policy.(*autoscaler.CostBasedScalingPolicy); ok {
		c.terminationHandler = cost.NodeTerminated
	}

	provider, err := cloud.NewScalingProvider("aws", conf, c.terminationHandler)
	if err != nil {
		return err
	}

	runner, err := autoscaler.NewRunner(conf, policy, provider)
	if err != nil {
		return err
	}

	server, err := autoscaler.NewServer(conf, runner)
	if err != nil {
		return err
	}
	c.server = server

	httpServer, err := NewHTTPServer(c, conf)
	if err != nil {
		c.server.Shutdown()
		return err
	}
	c.httpServer = httpServer

	return nil
}

func (c *Command) shutdownAgent() {
	c.httpServer.Shutdown()
	c.server.Shutdown()
}

// RPC hands an in-process RPC call off to the daemon server.
func (c *Command) RPC(method string, reply interface{}) error {
	return c.server.RPC(method, reply)
}

func (c *Command) parseFlags() *structs.Config {

	var configPath string

	// An empty new config is setup here to allow us to fill this with any
	// passed cli flags for later merging.
	cliConfig := &structs.Config{
		Policy:    &structs.PolicyConfig{},
		Telemetry: &structs.Telemetry{},
	}

	flags := c.Meta.FlagSet("agent", command.FlagSetClient)
	flags.Usage = func() { c.UI.Error(c.Help()) }

	flags.StringVar(&configPath, "config", "", "")

	// Top level configuration flags
	flags.StringVar(&cliConfig.Consul, "consul", "", "")
	flags.StringVar(&cliConfig.ConsulToken, "consul-token", "", "")
	flags.StringVar(&cliConfig.Kubeconfig, "kubeconfig", "", "")
	flags.StringVar(&cliConfig.LogLevel, "log-level", "", "")
	flags.IntVar(&cliConfig.ScalingInterval, "scaling-interval", 0, "")
	flags.StringVar(&cliConfig.Region, "aws-region", "", "")
	flags.IntVar(&cliConfig.OverProvision, "over-provision", 0, "")
	flags.BoolVar(&cliConfig.ScalingDisable, "scaling-disable", false, "")

	// Policy configuration flags
	flags.StringVar(&cliConfig.Policy.Name, "policy", "", "")
	flags.Float64Var(&cliConfig.Policy.MaxCostPerHour, "max-cost-per-hour", 0, "")
	flags.StringVar(&cliConfig.Policy.CostDataPath, "cost-data-path", "", "")

	// Telemetry configuration flags
	flags.StringVar(&cliConfig.Telemetry.StatsdAddress, "statsd-address", "", "")

	if err := flags.Parse(c.args); err != nil {
		return nil
	}

	// Load the default configuration which will be the basis for merging
	// with the supplied configuration file(s)
	config := base.DefaultConfig()

	if configPath != "" {
		current, err := base.LoadConfig(configPath)
		if err != nil {
			c.UI.Error(fmt.Sprintf("Error loading configuration from %s: %s", configPath, err))
			return nil
		}

		config = config.Merge(current)
	}

	config = config.Merge(cliConfig)
	return config
}

// Help provides the help information for the agent command.
func (c *Command) Help() string {
	helpText := `
  Usage: kubernetes-ec2-autoscaler agent [options]

    Starts the autoscaler agent and runs until an interrupt is received.
    The agent's configuration primarily comes from the config files used.
    If no config file is passed, a default config will be used.

  General Options:

    -config=<path>
      The path to either a single config file or a directory of config
      files to use for configuring the agent. Configuration files are
      processed in lexicographic order.

    -consul=<address:port>
      This is the address of the Consul agent. By default, this is
      localhost:8500, which is the default bind and port for a local
      Consul agent. It is not recommended that you communicate directly
      with a Consul server, and instead communicate with the local
      Consul agent.

    -consul-token=<token>
      The Consul ACL token to use when communicating with an ACL
      protected Consul cluster.

    -kubeconfig=<path>
      The path to the kubeconfig file used to reach the Kubernetes API.
      When empty, the in-cluster service account configuration is used.

    -log-level=<level>
      Specify the verbosity level of the agent's logs. The default is
      INFO.

    -scaling-interval=<num>
      The time period in seconds between scaling evaluation runs. The
      default is 10.

    -aws-region=<region>
      The AWS region in which the cluster is running.

    -over-provision=<num>
      The number of spare capacity units added to every computed scaling
      need, creating headroom for bursts. The default is 0.

    -scaling-disable
      Indicates the daemon should evaluate scaling without initiating
      scale operations. The actions that would have been taken are
      reported in the logs but skipped.

    -policy=<name>
      The scaling policy to run: basic, cost or growth. The default is
      basic.

    -max-cost-per-hour=<num>
      The hourly budget the cost policy gates scale requests against.

    -cost-data-path=<path>
      The path to the region-keyed instance cost reference data used by
      the cost policy.

    -statsd-address=<address:port>
      Specifies the address of a statsd server to forward metrics to and
      should include the port.
`
	return strings.TrimSpace(helpText)
}

// Synopsis is provides a brief summary of the agent command.
func (c *Command) Synopsis() string {
	return "Runs the autoscaler agent"
}

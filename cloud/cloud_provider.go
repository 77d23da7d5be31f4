package cloud

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/cloud/aws"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// BuiltinScalingProviders tracks the available scaling providers.
var BuiltinScalingProviders = map[string]ScalingProviderFactory{
	"aws": aws.NewAwsScalingProvider,
}

// ScalingProviderFactory is a factory method type for instantiating a new
// instance of a scaling provider.
type ScalingProviderFactory func(config *structs.Config,
	handler structs.TerminationHandler) (structs.ScalingProvider, error)

// NewScalingProvider is the entry point method for setting up the scaling
// provider node groups are managed through. The termination handler receives
// every node removal the provider observes and may be nil.
func NewScalingProvider(providerName string, config *structs.Config,
	handler structs.TerminationHandler) (structs.ScalingProvider, error) {

	providerFactory, ok := BuiltinScalingProviders[providerName]
	if !ok {
		providers := reflect.ValueOf(BuiltinScalingProviders).MapKeys()
		availableProviders := make([]string, len(providers))

		for i := 0; i < len(providers); i++ {
			availableProviders[i] = providers[i].String()
		}

		return nil, fmt.Errorf("unknown scaling provider %v, must be one of: %v",
			providerName, strings.Join(availableProviders, ","))
	}

	scalingProvider, err := providerFactory(config, handler)
	if err != nil {
		return nil, fmt.Errorf("an error occurred while setting up scaling "+
			"provider %v: %v", providerName, err)
	}

	logging.Debug("cloud/scaling_provider: initialized scaling provider %v "+
		"for region %v", providerName, config.Region)

	return scalingProvider, nil
}
